package encoding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"reframe/internal/services"
)

var commandContext = exec.CommandContext

// Fixed encode parameters asserted by the pipeline. The crop and scale
// already account for rotation, so output rotation metadata is cleared.
const (
	videoCodec   = "libx265"
	audioCodec   = "aac"
	audioBitrate = "128k"

	// Grace period granted to ffmpeg after a cancellation signal
	// before the process is killed outright.
	cancelGrace = 10 * time.Second
)

// Request describes one encode invocation.
type Request struct {
	Input     string
	Output    string
	Filter    string
	CRF       int
	Preset    string
	Overwrite bool
}

// Client defines encode behaviour so the batch driver can be tested
// against a fake.
type Client interface {
	Encode(ctx context.Context, req Request, progress func(Event)) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

var _ Client = (*CLI)(nil)

// Encode launches ffmpeg and streams its progress output to the
// callback until the process exits. A non-zero exit is an error; the
// caller decides whether a partial output must be removed.
func (c *CLI) Encode(ctx context.Context, req Request, progress func(Event)) error {
	if strings.TrimSpace(req.Input) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(req.Output) == "" {
		return errors.New("output path required")
	}

	cmd := commandContext(ctx, c.binary, buildArgs(req)...)
	cmd.Cancel = func() error {
		// Let ffmpeg flush its trailer instead of dying mid-write.
		return cmd.Process.Signal(syscall.SIGINT)
	}
	cmd.WaitDelay = cancelGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "encode", "start ffmpeg", "confirm the ffmpeg binary path", err)
	}

	// A truncated progress stream is only a display problem; the exit
	// status decides success.
	_ = parseProgress(stdout, progress)

	if err := cmd.Wait(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			detail = tailLines(detail, 5)
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return services.Wrap(services.ErrExternalTool, "encode", "ffmpeg", "encoder exited abnormally", err)
	}
	return nil
}

// Command renders the invocation for logging.
func (c *CLI) Command(req Request) string {
	return c.binary + " " + strings.Join(buildArgs(req), " ")
}

func buildArgs(req Request) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-nostats",
		"-progress", "pipe:1",
	}
	if req.Overwrite {
		args = append(args, "-y")
	} else {
		args = append(args, "-n")
	}
	args = append(args, "-i", req.Input)
	if strings.TrimSpace(req.Filter) != "" {
		args = append(args, "-vf", req.Filter)
	}
	args = append(args,
		"-c:v", videoCodec,
		"-crf", strconv.Itoa(req.CRF),
		"-preset", req.Preset,
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
		"-movflags", "+faststart",
		"-metadata:s:v", "rotate=0",
		req.Output,
	)
	return args
}

func tailLines(text string, n int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
