package file

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EdgeSource reads a text file with one edge sample index per line.
// Blank lines and lines starting with # are skipped. A "# samplerate: N"
// comment before the first edge sets the sample rate.
type EdgeSource struct {
	name       string
	reader     io.ReadCloser
	scanner    *bufio.Scanner
	sampleRate int
	pending    []int64
}

func NewEdgeSource(file string) (*EdgeSource, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	return NewEdgeReader(filepath.Base(file), f)
}

// NewEdgeReader reads edges from r. The header comments are consumed here so
// the sample rate is known before Start.
func NewEdgeReader(name string, r io.ReadCloser) (*EdgeSource, error) {
	e := &EdgeSource{
		name:    name,
		reader:  r,
		scanner: bufio.NewScanner(r),
	}
	if err := e.readHeader(); err != nil {
		r.Close()
		return nil, err
	}
	return e, nil
}

func (e *EdgeSource) readHeader() error {
	for e.scanner.Scan() {
		line := strings.TrimSpace(e.scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			v, err := parseEdge(line)
			if err != nil {
				return err
			}
			e.pending = append(e.pending, v)
			return nil
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "#")), ":")
		if ok && strings.TrimSpace(key) == "samplerate" {
			rate, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return fmt.Errorf("bad samplerate comment %q: %w", line, err)
			}
			e.sampleRate = rate
		}
	}
	return e.scanner.Err()
}

func parseEdge(line string) (int64, error) {
	v, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad edge %q: %w", line, err)
	}
	return v, nil
}

func (e *EdgeSource) Start(ctx context.Context, edges chan<- int64) error {
	defer close(edges)

	last := int64(-1)
	send := func(v int64) error {
		if v <= last {
			return fmt.Errorf("edge %d does not follow %d", v, last)
		}
		last = v
		select {
		case <-ctx.Done():
			return ctx.Err()
		case edges <- v:
		}
		return nil
	}

	for _, v := range e.pending {
		if err := send(v); err != nil {
			return err
		}
	}
	e.pending = nil

	for e.scanner.Scan() {
		line := strings.TrimSpace(e.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := parseEdge(line)
		if err != nil {
			return err
		}
		if err := send(v); err != nil {
			return err
		}
	}
	if err := e.scanner.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return ctx.Err()
}

func (e *EdgeSource) Stop() error {
	return e.reader.Close()
}

func (e *EdgeSource) SampleRate() int {
	return e.sampleRate
}

func (e *EdgeSource) Name() string {
	return e.name
}

// WriteEdges writes edges in the format EdgeSource reads.
func WriteEdges(w io.Writer, sampleRate int, edges []int64) error {
	bw := bufio.NewWriter(w)
	if sampleRate > 0 {
		if _, err := fmt.Fprintf(bw, "# samplerate: %d\n", sampleRate); err != nil {
			return err
		}
	}
	for _, e := range edges {
		if _, err := fmt.Fprintf(bw, "%d\n", e); err != nil {
			return err
		}
	}
	return bw.Flush()
}
