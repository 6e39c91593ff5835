package batch

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reframe/internal/encoding"
	"reframe/internal/fileutil"
	"reframe/internal/geometry"
	"reframe/internal/logging"
	"reframe/internal/media/ffprobe"
	"reframe/internal/notifications"
	"reframe/internal/services"
)

// RunConfig is the immutable per-run configuration. Validated once at
// startup; the driver never mutates it.
type RunConfig struct {
	Aspect    geometry.Aspect
	Scale     int
	ScaleMode geometry.ScaleMode
	CRF       int
	Preset    string
	OutputDir string
	Overwrite bool
	DryRun    bool
}

// Prober resolves a video descriptor for one input path.
type Prober func(ctx context.Context, path string) (ffprobe.Video, error)

// TrackerFactory builds the per-file progress callback. A nil factory
// (or a nil callback) disables progress display without affecting the
// encode.
type TrackerFactory func(label string, duration time.Duration) func(encoding.Event)

// Driver processes inputs strictly in order, one at a time. A file's
// failure never aborts the batch; only configuration problems do.
type Driver struct {
	cfg      RunConfig
	probe    Prober
	encoder  encoding.Client
	notifier notifications.Service
	logger   *slog.Logger
	trackers TrackerFactory
	state    *State
	runID    string
}

// Option configures optional driver collaborators.
type Option func(*Driver)

// WithLogger attaches a structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithNotifier attaches a notification sink. Defaults to a no-op sink.
func WithNotifier(notifier notifications.Service) Option {
	return func(d *Driver) {
		if notifier != nil {
			d.notifier = notifier
		}
	}
}

// WithTrackerFactory attaches per-file progress rendering.
func WithTrackerFactory(factory TrackerFactory) Option {
	return func(d *Driver) {
		d.trackers = factory
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(d *Driver) {
		if strings.TrimSpace(id) != "" {
			d.runID = id
		}
	}
}

// NewDriver wires a batch driver around the probe and encode
// collaborators.
func NewDriver(cfg RunConfig, probe Prober, encoder encoding.Client, opts ...Option) *Driver {
	d := &Driver{
		cfg:      cfg,
		probe:    probe,
		encoder:  encoder,
		notifier: notifications.NewService(nil),
		logger:   logging.NewNop(),
		state:    &State{},
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RunID returns the identifier stamped on this run's logs and history.
func (d *Driver) RunID() string { return d.runID }

// State exposes the run's counters and current-output marker for the
// interrupt handler and status reporting.
func (d *Driver) State() *State { return d.state }

// Run processes every input in order and returns the batch summary.
// The returned error is non-nil only for configuration failures and
// interruption; per-file failures are carried in the summary.
func (d *Driver) Run(ctx context.Context, inputs []string) (Summary, error) {
	summary := Summary{RunID: d.runID, Started: time.Now()}

	if len(inputs) == 0 {
		return summary, services.Wrap(services.ErrValidation, "batch", "run", "pass at least one input file", nil)
	}
	if err := fileutil.EnsureDir(d.cfg.OutputDir); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "batch", "prepare output directory", "check the output directory path and permissions", err)
	}

	ctx = services.WithRunID(ctx, d.runID)
	if err := d.notifier.NotifyBatchStarted(ctx, len(inputs)); err != nil {
		d.logger.Warn("batch start notification failed", logging.Error(err))
	}

	interrupted := false
	for _, input := range inputs {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		result := d.processFile(ctx, input)
		summary.Results = append(summary.Results, result)
		d.reportFile(ctx, result)
		if result.Err != nil && ctx.Err() != nil {
			interrupted = true
			break
		}
	}

	summary.Attempted, summary.Processed = d.state.Counts()
	summary.Finished = time.Now()

	// Deliver the completion notification even when the run context
	// was canceled mid-batch.
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := d.notifier.NotifyBatchCompleted(notifyCtx, summary.Processed, summary.Attempted, summary.Finished.Sub(summary.Started)); err != nil {
		d.logger.Warn("batch completion notification failed", logging.Error(err))
	}

	if interrupted {
		return summary, services.Wrap(services.ErrInterrupted, "batch", "run", "", ctx.Err())
	}
	return summary, nil
}

func (d *Driver) processFile(ctx context.Context, input string) Result {
	d.state.fileAttempted()
	result := Result{Input: input}
	started := time.Now()
	defer func() {
		result.Elapsed = time.Since(started)
	}()

	ctx = services.WithFile(ctx, filepath.Base(input))
	logger := logging.WithContext(ctx, d.logger)

	video, err := d.probe(services.WithStage(ctx, "probe"), input)
	if err != nil {
		result.Outcome = OutcomeProbeFailed
		result.Err = err
		return result
	}
	result.Source = video
	result.InputBytes = video.SizeBytes

	orientation := geometry.Classify(video.EffectiveWidth(), video.EffectiveHeight())
	result.Plan = geometry.Compute(
		video.EffectiveWidth(), video.EffectiveHeight(),
		d.cfg.Aspect, d.cfg.Scale, d.cfg.ScaleMode, orientation,
	)
	result.Output = d.OutputPath(input)

	logger.Debug("geometry computed",
		logging.String("orientation", string(orientation)),
		logging.String("plan", result.Plan.Summary()),
		logging.String("destination", result.Output),
	)

	if d.cfg.DryRun {
		result.Outcome = OutcomeDryRun
		d.state.fileProcessed()
		return result
	}

	if fileutil.Exists(result.Output) && !d.cfg.Overwrite {
		result.Outcome = OutcomeSkipped
		return result
	}

	d.state.setCurrentOutput(result.Output)

	req := encoding.Request{
		Input:     input,
		Output:    result.Output,
		Filter:    result.Plan.Filter(video.EffectiveWidth(), video.EffectiveHeight()),
		CRF:       d.cfg.CRF,
		Preset:    d.cfg.Preset,
		Overwrite: d.cfg.Overwrite,
	}
	encodeCtx := services.WithStage(ctx, "encode")
	if err := d.encoder.Encode(encodeCtx, req, d.newTracker(input, video)); err != nil {
		result.Outcome = OutcomeEncodeFailed
		result.Err = err
		if ctx.Err() != nil {
			// Interrupted mid-encode: the marker stays set so the
			// caller can remove the truncated output during shutdown.
			return result
		}
		// A half-written output must not masquerade as a result.
		if removeErr := fileutil.RemoveIfExists(result.Output); removeErr != nil {
			logging.WithContext(encodeCtx, d.logger).Warn("partial output removal failed", logging.Error(removeErr))
		}
		d.state.clearCurrentOutput()
		return result
	}

	d.state.clearCurrentOutput()
	d.state.fileProcessed()
	result.Outcome = OutcomeProcessed
	if size, ok := fileutil.SizeBytes(result.Output); ok {
		result.OutputBytes = size
	}
	return result
}

func (d *Driver) newTracker(input string, video ffprobe.Video) func(encoding.Event) {
	if d.trackers == nil {
		return nil
	}
	return d.trackers(filepath.Base(input), time.Duration(video.DurationSeconds)*time.Second)
}

// OutputPath derives the destination for one input: same base name,
// mp4 extension, inside the configured output directory.
func (d *Driver) OutputPath(input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(d.cfg.OutputDir, stem+".mp4")
}

func (d *Driver) reportFile(ctx context.Context, result Result) {
	ctx = services.WithFile(ctx, filepath.Base(result.Input))
	logger := logging.WithContext(ctx, d.logger)
	switch result.Outcome {
	case OutcomeProcessed:
		logger.Info("file processed",
			logging.String("destination", result.Output),
			logging.String("compression", result.CompressionRatio()),
			logging.Duration("elapsed", result.Elapsed),
		)
		if err := d.notifier.NotifyFileCompleted(ctx, filepath.Base(result.Input), result.CompressionRatio()); err != nil {
			logger.Warn("completion notification failed", logging.Error(err))
		}
	case OutcomeDryRun:
		logger.Info("dry run",
			logging.String("plan", result.Plan.Summary()),
			logging.String("destination", result.Output),
		)
	case OutcomeSkipped:
		logging.WarnWithContext(logger, "destination exists, skipping", "output_exists",
			logging.String(logging.FieldErrorHint, "use --overwrite to replace"),
			logging.String("destination", result.Output),
		)
	case OutcomeProbeFailed:
		logging.ErrorWithContext(logger, "probe failed", "probe_failed", logging.Error(result.Err))
	case OutcomeEncodeFailed:
		logging.ErrorWithContext(logger, "encode failed", "encode_failed", logging.Error(result.Err))
		if err := d.notifier.NotifyError(ctx, result.Err, "encode"); err != nil {
			logger.Warn("error notification failed", logging.Error(err))
		}
	}
}
