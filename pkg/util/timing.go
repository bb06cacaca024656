package util

import "time"

// TimeOperationMicroseconds runs op and returns how long it took alongside its error.
func TimeOperationMicroseconds(op func() error) (int64, error) {
	start := time.Now()
	err := op()
	return time.Since(start).Microseconds(), err
}
