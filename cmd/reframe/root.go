package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string

	aspect    string
	scale     int
	scaleMode string
	crf       int
	preset    string
	outputDir string
	overwrite bool
	dryRun    bool
	notify    bool
	noNotify  bool
	logTarget string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "reframe [flags] FILE...",
		Short: "Batch video transcoder with aspect-aware crop and scale",
		Long: `Reframe probes each input video, computes a center-crop and scale to
reach the target aspect ratio and size, and re-encodes it with ffmpeg.
Files are processed in order; one file's failure never stops the batch.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runBatch(cmd, opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")

	flags := rootCmd.Flags()
	flags.StringVar(&opts.aspect, "aspect", "", `Target aspect ratio, "W:H" or "source" (default from config)`)
	flags.IntVar(&opts.scale, "scale", 0, "Target size in pixels on the scaled axis (default from config)")
	flags.StringVar(&opts.scaleMode, "scale-mode", "", "Axis pinned to the scale value: auto, width, height, long, short")
	flags.IntVar(&opts.crf, "crf", -1, "Encoder quality, 0 (best) to 51 (default from config)")
	flags.StringVar(&opts.preset, "preset", "", "Encoder speed preset, ultrafast through placebo")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory for encoded files (default from config)")
	flags.BoolVar(&opts.overwrite, "overwrite", false, "Replace existing output files")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Report the computed geometry without encoding")
	flags.BoolVar(&opts.notify, "notify", false, "Force notifications on")
	flags.BoolVar(&opts.noNotify, "no-notify", false, "Force notifications off")
	flags.StringVar(&opts.logTarget, "log", "", "Also write logs to a file (optional path)")
	flags.Lookup("log").NoOptDefVal = logTargetDefault
	rootCmd.MarkFlagsMutuallyExclusive("notify", "no-notify")

	rootCmd.AddCommand(newConfigCommand(opts))
	rootCmd.AddCommand(newHistoryCommand(opts))

	return rootCmd
}
