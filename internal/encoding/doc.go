// Package encoding invokes ffmpeg and decodes its progress stream.
//
// The Client interface isolates the batch driver from the invocation
// mechanism so tests can substitute a fake encoder. The CLI
// implementation shells out to ffmpeg with the crop/scale filter
// computed upstream, fixed audio re-encode parameters, and a
// streaming-friendly container layout, reading `-progress pipe:1`
// key=value batches into Events.
package encoding
