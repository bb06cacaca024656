package reader

import (
	"context"

	"github.com/norasector/fdxb/pkg/fdxb"
)

// Output handles decoder events for one capture.
type Output interface {
	// Start should run in a loop, returning nil once the receive channel is
	// closed, ctx.Err() when ctx is done, or any error of its own.
	Start(ctx context.Context) error
	// Receive returns the channel events are delivered on. The reader closes it
	// when the capture ends.
	Receive() chan<- *fdxb.Event
}
