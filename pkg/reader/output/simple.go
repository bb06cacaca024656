package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/norasector/fdxb/pkg/fdxb"
)

const (
	eventBufferLength = 64
	flushInterval     = 250 * time.Millisecond
)

// SimpleOutput writes events as text or JSON lines.
type SimpleOutput struct {
	dest      io.Writer
	recvChan  chan *fdxb.Event
	json      bool
	rowFilter map[string]struct{}
}

// NewSimpleOutput writes to dest. Annotations are limited to rows when any are
// given; telegrams are always written.
func NewSimpleOutput(dest io.Writer, asJSON bool, rows []string) *SimpleOutput {
	ret := &SimpleOutput{
		dest:      dest,
		recvChan:  make(chan *fdxb.Event, eventBufferLength),
		json:      asJSON,
		rowFilter: make(map[string]struct{}),
	}

	for _, row := range rows {
		ret.rowFilter[row] = struct{}{}
	}

	return ret
}

func (s *SimpleOutput) Receive() chan<- *fdxb.Event {
	return s.recvChan
}

func (s *SimpleOutput) wanted(ev *fdxb.Event) bool {
	if ev.Annotation == nil || len(s.rowFilter) == 0 {
		return true
	}
	_, ok := s.rowFilter[ev.Annotation.Class.Row()]
	return ok
}

func (s *SimpleOutput) format(b *bytes.Buffer, ev *fdxb.Event) error {
	if s.json {
		line, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		b.Write(line)
		b.WriteByte('\n')
		return nil
	}

	switch {
	case ev.Annotation != nil:
		a := ev.Annotation
		fmt.Fprintf(b, "%d-%d %s: %s\n", a.Start, a.End, a.Class.ID(), a.Text())
	case ev.Telegram != nil:
		tg := ev.Telegram
		fmt.Fprintf(b, "%d-%d telegram: tag=%s crc=%s valid=%t data_block=%t animal=%t\n",
			tg.Start, tg.End, tg.TagID, fdxb.HexString(tg.Checksum), tg.ChecksumValid, tg.DataBlock, tg.AnimalApplication)
	}
	return nil
}

// Start writes until the receive channel is closed or ctx is done.
// Lines are batched and flushed when the stream goes quiet.
func (s *SimpleOutput) Start(ctx context.Context) error {
	var b bytes.Buffer
	pending := 0

	flush := func() error {
		if pending == 0 {
			return nil
		}
		_, err := b.WriteTo(s.dest)
		b.Reset()
		pending = 0
		return err
	}

	for {
		select {
		case <-ctx.Done():
			if err := flush(); err != nil {
				return err
			}
			return ctx.Err()

		case <-time.After(flushInterval):
			if err := flush(); err != nil {
				return err
			}

		case ev, ok := <-s.recvChan:
			if !ok {
				return flush()
			}
			if !s.wanted(ev) {
				continue
			}
			if err := s.format(&b, ev); err != nil {
				return err
			}
			pending++
			if pending == eventBufferLength {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
}
