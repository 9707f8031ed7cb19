// Package capture provides the video source capability: a stream of raw BGR
// frames at whatever native resolution the source delivers. Normalization to
// the catalog's reference size happens downstream.
package capture

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrSourceClosed means the source is gone for good (device unplugged,
// window destroyed). Fatal to the monitoring loop; never retried internally.
var ErrSourceClosed = errors.New("capture source closed")

// ErrNoFrame means this read produced nothing but the source is still alive.
// The loop skips the iteration and tries again.
var ErrNoFrame = errors.New("no frame available")

// Source yields frames from a live video source. ReadFrame returns a BGR Mat
// owned by the caller.
type Source interface {
	ReadFrame() (gocv.Mat, error)
	Close() error
}
