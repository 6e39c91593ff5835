package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"reframe/internal/encoding"
	"reframe/internal/logging"
)

const (
	barWidth       = 30
	speedUnknown   = "--.-x"
	sampleBucket   = 5.0
	renderThrottle = 100 * time.Millisecond
)

// Tracker turns an encoder's event stream into a single-line terminal
// bar, or into sampled log records when stdout is not a terminal. It is
// purely observational: it never blocks or influences the encode.
type Tracker struct {
	label    string
	duration time.Duration
	writer   io.Writer
	logger   *slog.Logger
	sampler  *logging.ProgressSampler

	bar      *progressbar.ProgressBar
	elapsed  time.Duration
	speed    float64
	finished bool
}

// Options configures a Tracker. Zero values fall back to stdout
// rendering with a no-op logger.
type Options struct {
	// Label prefixes the bar, usually the file name being encoded.
	Label string
	// Duration is the media duration of the file. Zero or negative
	// means unknown; the bar then fills against a one-second stand-in
	// so the arithmetic stays defined.
	Duration time.Duration
	// Writer receives bar redraws. Defaults to os.Stdout.
	Writer io.Writer
	// Interactive selects in-place bar rendering. When false the
	// tracker emits sampled log records instead.
	Interactive bool
	// Logger receives sampled progress records on non-interactive
	// runs.
	Logger *slog.Logger
}

// Interactive reports whether the writer is a terminal capable of
// in-place redraws.
func Interactive(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewTracker builds a tracker for one file's encode.
func NewTracker(opts Options) *Tracker {
	t := &Tracker{
		label:    opts.Label,
		duration: opts.Duration,
		writer:   opts.Writer,
		logger:   opts.Logger,
		sampler:  logging.NewProgressSampler(sampleBucket),
	}
	if t.writer == nil {
		t.writer = os.Stdout
	}
	if t.logger == nil {
		t.logger = logging.NewNop()
	}
	if opts.Interactive {
		t.bar = progressbar.NewOptions64(t.totalUnits(),
			progressbar.OptionSetWriter(t.writer),
			progressbar.OptionSetDescription(t.label),
			progressbar.OptionSetWidth(barWidth),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionThrottle(renderThrottle),
		)
	}
	return t
}

// Observe consumes one encoder event. Safe to pass directly as the
// encode progress callback.
func (t *Tracker) Observe(event encoding.Event) {
	if t == nil || t.finished {
		return
	}
	if event.Speed > 0 {
		t.speed = event.Speed
	}
	if event.OutTime >= 0 {
		t.advance(event.OutTime)
	}
	if event.Type == encoding.EventEnd {
		t.finish()
	}
}

// Elapsed reports the clamped, monotonic media time encoded so far.
func (t *Tracker) Elapsed() time.Duration {
	return t.elapsed
}

// Percent reports completion in the range [0, 100]. With an unknown
// duration the elapsed time runs against a one-second stand-in, so the
// ratio is capped rather than left to overflow past full.
func (t *Tracker) Percent() float64 {
	percent := 100 * float64(t.elapsed.Milliseconds()) / float64(t.totalUnits())
	if percent > 100 {
		percent = 100
	}
	return percent
}

func (t *Tracker) advance(outTime time.Duration) {
	// Encoders can overshoot the probed duration near end of stream;
	// never let the bar run past full or move backwards.
	if t.duration > 0 && outTime > t.duration {
		outTime = t.duration
	}
	if outTime <= t.elapsed {
		return
	}
	t.elapsed = outTime

	if t.bar != nil {
		t.bar.Describe(t.label + " " + formatSpeed(t.speed))
		_ = t.bar.Set64(t.elapsed.Milliseconds())
		return
	}
	if t.sampler.ShouldLog(t.Percent(), "encode") {
		t.logger.Info("encoding progress",
			logging.String(logging.FieldProgressStage, "encode"),
			logging.Float64(logging.FieldProgressPercent, t.Percent()),
			logging.String(logging.FieldProgressSpeed, formatSpeed(t.speed)),
			logging.Duration("elapsed", t.elapsed),
		)
	}
}

func (t *Tracker) finish() {
	t.finished = true
	if t.duration > 0 {
		t.elapsed = t.duration
	}
	if t.bar != nil {
		_ = t.bar.Set64(t.totalUnits())
		_ = t.bar.Finish()
		fmt.Fprintf(t.writer, " %s\n", FormatClock(t.duration))
		return
	}
	t.logger.Info("encoding complete",
		logging.String(logging.FieldProgressStage, "encode"),
		logging.Float64(logging.FieldProgressPercent, 100),
		logging.Duration("total", t.duration),
	)
}

func (t *Tracker) totalUnits() int64 {
	if t.duration <= 0 {
		return time.Second.Milliseconds()
	}
	return t.duration.Milliseconds()
}

// FormatClock renders a duration as H:MM:SS, dropping the hour field
// for short media.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func formatSpeed(speed float64) string {
	if speed <= 0 {
		return speedUnknown
	}
	return fmt.Sprintf("%4.1fx", speed)
}
