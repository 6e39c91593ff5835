// Package geometry computes the crop and scale plan for a single video.
//
// All functions are pure transforms over validated inputs. The package
// does not touch the filesystem or invoke external tools; callers feed
// it probed dimensions and receive a Plan that downstream encoding
// turns into an ffmpeg filter chain.
//
// Key types:
//   - Aspect: target aspect ratio, either inherited from the source or
//     an explicit W:H pair
//   - Orientation: horizontal/vertical/square classification of the
//     rotation-corrected frame
//   - Plan: centered crop rectangle plus output dimensions, all even
//
// Primary entry points:
//   - Classify: orientation from effective dimensions
//   - EffectiveDimensions: rotation-corrected width/height
//   - Compute: crop/scale plan from source dimensions and run options
package geometry
