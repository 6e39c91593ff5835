package batch

import (
	"fmt"
	"time"

	"reframe/internal/geometry"
	"reframe/internal/media/ffprobe"
)

// Outcome classifies how a file's lifecycle ended.
type Outcome string

const (
	OutcomeProcessed    Outcome = "processed"
	OutcomeDryRun       Outcome = "dry-run"
	OutcomeProbeFailed  Outcome = "probe-failed"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeEncodeFailed Outcome = "encode-failed"
)

// Result records one file's outcome for the summary, the history
// store, and exit-code accounting.
type Result struct {
	Input   string
	Output  string
	Outcome Outcome
	Source  ffprobe.Video
	Plan    geometry.Plan
	// InputBytes and OutputBytes are 0 when the size could not be
	// determined; the ratio then renders as "N/A".
	InputBytes  int64
	OutputBytes int64
	Elapsed     time.Duration
	Err         error
}

// Processed reports whether the file counts toward the batch's
// processed total. Dry runs count: the requested work (computing and
// reporting the plan) completed.
func (r Result) Processed() bool {
	return r.Outcome == OutcomeProcessed || r.Outcome == OutcomeDryRun
}

// CompressionRatio renders input-to-output size as e.g. "2.31x", or
// "N/A" when either size is unknown or zero.
func (r Result) CompressionRatio() string {
	if r.InputBytes <= 0 || r.OutputBytes <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2fx", float64(r.InputBytes)/float64(r.OutputBytes))
}

// Summary aggregates a whole run.
type Summary struct {
	RunID     string
	Attempted int
	Processed int
	Results   []Result
	Started   time.Time
	Finished  time.Time
}

// ExitCode maps the batch outcome to the process exit status: success
// when at least one file was processed, failure otherwise. The
// interrupt path uses its own status and never reaches this.
func (s Summary) ExitCode() int {
	if s.Processed > 0 {
		return 0
	}
	return 1
}
