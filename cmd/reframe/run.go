package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"reframe/internal/batch"
	"reframe/internal/config"
	"reframe/internal/encoding"
	"reframe/internal/fileutil"
	"reframe/internal/geometry"
	"reframe/internal/history"
	"reframe/internal/logging"
	"reframe/internal/media/ffprobe"
	"reframe/internal/notifications"
	"reframe/internal/preflight"
	"reframe/internal/progress"
	"reframe/internal/services"
)

// logTargetDefault is the sentinel for a bare --log flag: write to the
// configured log directory.
const logTargetDefault = "auto"

func runBatch(cmd *cobra.Command, opts *rootOptions, inputs []string) error {
	cfg, _, _, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, cmd, opts); err != nil {
		return err
	}

	runCfg, err := buildRunConfig(cfg, opts.dryRun)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg, opts.logTarget)
	if err != nil {
		return err
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "startup", "prepare directories", "check the configured paths", err)
	}

	// One writer per output directory; concurrent runs would race on
	// output files and the interrupt cleanup marker.
	lock := flock.New(filepath.Join(cfg.Paths.OutputDir, ".reframe.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output directory lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another reframe run is writing to %s", cfg.Paths.OutputDir)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if results := preflight.RunAll(cfg); preflight.Failed(results) {
		for _, result := range results {
			if !result.Passed {
				logger.Error("preflight check failed",
					logging.String("check", result.Name),
					logging.String("detail", result.Detail),
				)
			}
		}
		return services.Wrap(services.ErrConfiguration, "startup", "preflight", "resolve the failed checks above", nil)
	}

	notifier := buildNotifier(cfg, opts)
	store := openHistory(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	ffmpegBinary := cfg.Encoding.FFmpegBinary
	ffprobeBinary := cfg.Encoding.FFprobeBinary
	prober := func(ctx context.Context, path string) (ffprobe.Video, error) {
		return ffprobe.Probe(ctx, ffprobeBinary, path)
	}

	interactive := progress.Interactive(os.Stdout)
	trackerFactory := func(label string, duration time.Duration) func(encoding.Event) {
		tracker := progress.NewTracker(progress.Options{
			Label:       label,
			Duration:    duration,
			Interactive: interactive,
			Logger:      logger,
		})
		return tracker.Observe
	}

	driver := batch.NewDriver(runCfg, prober, encoding.NewCLI(encoding.WithBinary(ffmpegBinary)),
		batch.WithLogger(logging.NewComponentLogger(logger, "batch")),
		batch.WithNotifier(notifier),
		batch.WithTrackerFactory(trackerFactory),
	)

	logger = logger.With(logging.String(logging.FieldRunID, driver.RunID()))
	logger.Info("batch starting",
		logging.Int("files", len(inputs)),
		logging.String("output_dir", runCfg.OutputDir),
		logging.Bool("dry_run", runCfg.DryRun),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// One-shot interrupt: first signal cancels the run (the in-flight
	// ffmpeg gets SIGINT plus a grace period); a second signal falls
	// through to default process termination.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; !ok {
			return
		}
		signal.Stop(sigCh)
		logger.Warn("interrupt received, finishing up")
		cancel()
	}()

	summary, runErr := driver.Run(ctx, inputs)

	if store != nil {
		recordCtx, recordCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := store.RecordRun(recordCtx, summary); err != nil {
			logger.Warn("history recording failed", logging.Error(err))
		}
		recordCancel()
	}

	renderSummary(cmd.OutOrStdout(), summary)

	if runErr != nil {
		if errors.Is(runErr, services.ErrInterrupted) {
			if current := driver.State().CurrentOutput(); current != "" {
				_ = fileutil.RemoveIfExists(current)
			}
			return &exitError{code: 130, message: "interrupted"}
		}
		return runErr
	}
	if summary.ExitCode() != 0 {
		return &exitError{code: 1, message: "no files were processed"}
	}
	return nil
}

// applyOverrides layers explicitly set flags over the loaded
// configuration, then re-validates.
func applyOverrides(cfg *config.Config, cmd *cobra.Command, opts *rootOptions) error {
	flags := cmd.Flags()
	// Flag values get the same trim/lowercase treatment normalize()
	// applies to the config file, so casing never decides validity.
	if flags.Changed("aspect") {
		cfg.Encoding.Aspect = strings.ToLower(strings.TrimSpace(opts.aspect))
	}
	if flags.Changed("scale") {
		cfg.Encoding.Scale = opts.scale
	}
	if flags.Changed("scale-mode") {
		cfg.Encoding.ScaleMode = strings.ToLower(strings.TrimSpace(opts.scaleMode))
	}
	if flags.Changed("crf") {
		cfg.Encoding.CRF = opts.crf
	}
	if flags.Changed("preset") {
		cfg.Encoding.Preset = strings.ToLower(strings.TrimSpace(opts.preset))
	}
	if flags.Changed("output-dir") {
		expanded, err := config.ExpandPath(opts.outputDir)
		if err != nil {
			return err
		}
		cfg.Paths.OutputDir = expanded
	}
	if flags.Changed("overwrite") {
		cfg.Encoding.Overwrite = opts.overwrite
	}
	if opts.notify {
		cfg.Notifications.Enabled = true
	}
	if opts.noNotify {
		cfg.Notifications.Enabled = false
	}
	return cfg.Validate()
}

func buildRunConfig(cfg *config.Config, dryRun bool) (batch.RunConfig, error) {
	aspect, err := geometry.ParseAspect(cfg.Encoding.Aspect)
	if err != nil {
		return batch.RunConfig{}, services.Wrap(services.ErrConfiguration, "startup", "parse aspect", "", err)
	}
	mode, err := geometry.ParseScaleMode(cfg.Encoding.ScaleMode)
	if err != nil {
		return batch.RunConfig{}, services.Wrap(services.ErrConfiguration, "startup", "parse scale mode", "", err)
	}
	return batch.RunConfig{
		Aspect:    aspect,
		Scale:     cfg.Encoding.Scale,
		ScaleMode: mode,
		CRF:       cfg.Encoding.CRF,
		Preset:    cfg.Encoding.Preset,
		OutputDir: cfg.Paths.OutputDir,
		Overwrite: cfg.Encoding.Overwrite,
		DryRun:    dryRun,
	}, nil
}

func buildLogger(cfg *config.Config, logTarget string) (*slog.Logger, error) {
	opts := logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	switch strings.TrimSpace(logTarget) {
	case "":
	case logTargetDefault:
		opts.FilePath = cfg.LogFilePath()
	default:
		expanded, err := config.ExpandPath(logTarget)
		if err != nil {
			return nil, err
		}
		opts.FilePath = expanded
	}
	return logging.New(opts)
}

func buildNotifier(cfg *config.Config, opts *rootOptions) notifications.Service {
	if opts.dryRun {
		// A dry run produces nothing worth pushing.
		return notifications.NewService(nil)
	}
	return notifications.NewService(cfg)
}

func openHistory(cfg *config.Config, logger *slog.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("history database unavailable", logging.Error(err))
		return nil
	}
	return store
}

func renderSummary(w io.Writer, summary batch.Summary) {
	printer := message.NewPrinter(language.English)

	headers := []string{"File", "Outcome", "Output", "Size In", "Size Out", "Ratio", "Time"}
	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		rows = append(rows, []string{
			filepath.Base(result.Input),
			string(result.Outcome),
			outputCell(result),
			sizeCell(printer, result.InputBytes),
			sizeCell(printer, result.OutputBytes),
			result.CompressionRatio(),
			result.Elapsed.Round(time.Second).String(),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}

	fmt.Fprintln(w, renderTable(headers, rows, aligns))
	elapsed := summary.Finished.Sub(summary.Started).Round(time.Second)
	fmt.Fprintf(w, "Processed %d out of %d files in %s\n", summary.Processed, summary.Attempted, elapsed)
}

func outputCell(result batch.Result) string {
	if result.Output == "" {
		return "-"
	}
	return filepath.Base(result.Output)
}

func sizeCell(printer *message.Printer, bytes int64) string {
	if bytes <= 0 {
		return "-"
	}
	return printer.Sprintf("%d", bytes)
}
