// Package batch drives the per-file transcoding pipeline: probe,
// classify, compute geometry, encode, report. Files are processed
// strictly sequentially and a single file's failure never aborts the
// run; the summary and exit code account for the mix of outcomes.
package batch
