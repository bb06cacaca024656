package source

import (
	"context"
)

// Source produces the sample positions at which the data line changes level.
type Source interface {
	// Start sends edges in increasing order and closes edges when the capture ends.
	Start(ctx context.Context, edges chan<- int64) error
	Stop() error
	// SampleRate returns the rate the capture was taken at, 0 if the format does not carry one.
	SampleRate() int
	Name() string
}
