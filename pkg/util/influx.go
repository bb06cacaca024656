package util

import (
	"sync"

	"github.com/influxdata/influxdb-client-go/api/write"
)

// NopWriteAPI discards everything. It stands in when no InfluxDB is configured.
type NopWriteAPI struct{}

func (NopWriteAPI) WriteRecord(line string)       {}
func (NopWriteAPI) WritePoint(point *write.Point) {}
func (NopWriteAPI) Flush()                        {}
func (NopWriteAPI) Close()                        {}
func (NopWriteAPI) Errors() <-chan error          { return nil }

// RecordingWriteAPI keeps every point written to it.
type RecordingWriteAPI struct {
	NopWriteAPI
	mu     sync.Mutex
	points []*write.Point
}

func (r *RecordingWriteAPI) WritePoint(point *write.Point) {
	r.mu.Lock()
	r.points = append(r.points, point)
	r.mu.Unlock()
}

// Points returns the points written so far with the given measurement name.
func (r *RecordingWriteAPI) Points(name string) []*write.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ret []*write.Point
	for _, p := range r.points {
		if p.Name() == name {
			ret = append(ret, p)
		}
	}
	return ret
}
