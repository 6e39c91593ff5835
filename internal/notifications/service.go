package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reframe/internal/config"
)

const userAgent = "Reframe-Go/0.1.0"

// Service defines the notification surface exposed to the batch
// driver. All methods are best-effort: a delivery failure is logged by
// the caller and never affects batch outcome.
type Service interface {
	NotifyBatchStarted(ctx context.Context, count int) error
	NotifyFileCompleted(ctx context.Context, file, ratio string) error
	NotifyBatchCompleted(ctx context.Context, processed, attempted int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when
// configured. Disabled notifications or a missing topic yield a noop
// implementation rather than an error.
func NewService(cfg *config.Config) Service {
	if cfg == nil || !cfg.Notifications.Enabled {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyBatchStarted(ctx context.Context, count int) error {
	noun := "files"
	if count == 1 {
		noun = "file"
	}
	data := payload{
		title:   "Reframe - Batch Started",
		message: fmt.Sprintf("Started transcoding %d %s", count, noun),
		tags:    []string{"reframe", "batch", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFileCompleted(ctx context.Context, file, ratio string) error {
	file = strings.TrimSpace(file)
	message := fmt.Sprintf("Encoded: %s", file)
	if ratio = strings.TrimSpace(ratio); ratio != "" {
		message = fmt.Sprintf("%s (compression %s)", message, ratio)
	}
	data := payload{
		title:   "Reframe - File Complete",
		message: message,
		tags:    []string{"reframe", "encode", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, processed, attempted int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if processed == attempted {
		title = "Reframe - Batch Complete"
		message = fmt.Sprintf("Processed %d of %d files in %s", processed, attempted, durationText)
	} else {
		title = "Reframe - Batch Complete (with failures)"
		message = fmt.Sprintf("Processed %d of %d files in %s; the rest failed or were skipped", processed, attempted, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"reframe", "batch", "completed"},
	}
	if processed < attempted {
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Reframe - Error",
		message:  builder.String(),
		tags:     []string{"reframe", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Reframe - Test",
		message:  "Notification system test",
		tags:     []string{"reframe", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyBatchStarted(context.Context, int) error                       { return nil }
func (noopService) NotifyFileCompleted(context.Context, string, string) error           { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
