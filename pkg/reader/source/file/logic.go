package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// LogicSource reads a raw logic dump, one byte per sample with the data line
// on bit channel, and reports the samples where that bit changes.
type LogicSource struct {
	name     string
	reader   io.ReadCloser
	readSize int
	channel  uint
}

func NewLogicSource(file string, readSize int, channel uint) (*LogicSource, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	return NewLogicReader(filepath.Base(file), f, readSize, channel), nil
}

// NewLogicReader reads samples from r instead of a named file.
func NewLogicReader(name string, r io.ReadCloser, readSize int, channel uint) *LogicSource {
	return &LogicSource{
		name:     name,
		reader:   r,
		readSize: readSize,
		channel:  channel,
	}
}

func (l *LogicSource) Start(ctx context.Context, edges chan<- int64) error {
	defer close(edges)

	buf := make([]byte, l.readSize)
	var sampleNum int64
	var level byte
	first := true

	for {
		n, err := l.reader.Read(buf)
		for _, sample := range buf[:n] {
			bit := (sample >> l.channel) & 1
			if first {
				level = bit
				first = false
			} else if bit != level {
				level = bit
				select {
				case <-ctx.Done():
					return ctx.Err()
				case edges <- sampleNum:
				}
			}
			sampleNum++
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// Stop closes the reader underneath a cancelled capture
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

func (l *LogicSource) Stop() error {
	return l.reader.Close()
}

func (l *LogicSource) SampleRate() int {
	return 0
}

func (l *LogicSource) Name() string {
	return l.name
}
