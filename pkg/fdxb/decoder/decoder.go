// Package decoder drives the FDX-B pipeline from edge positions to annotations.
package decoder

import (
	"context"
	"errors"

	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/norasector/fdxb/pkg/fdxb/demod"
	"github.com/norasector/fdxb/pkg/fdxb/frame"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrNoSampleRate = errors.New("cannot decode without samplerate")

type State int

const (
	StateSearching State = iota
	StateFramed
)

func (s State) String() string {
	if s == StateFramed {
		return "framed"
	}
	return "searching"
}

// Decoder owns the state of one capture. It is not safe for concurrent use;
// give every capture its own Decoder.
type Decoder struct {
	sampleRate int
	demod      *demod.Demodulator
	assembler  *frame.Assembler
	out        outputProxy
	onPulse    func(width float64)
	logger     zerolog.Logger
}

type Option func(d *Decoder)

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// WithPulseHook calls fn with the width in microseconds of every pulse between
// two edges, including pulses that do not complete a bit.
func WithPulseHook(fn func(width float64)) Option {
	return func(d *Decoder) {
		d.onPulse = fn
	}
}

// outputProxy lets the assembler keep one Output while callers pass their own per call.
type outputProxy struct {
	target fdxb.Output
}

func (p *outputProxy) Annotate(a fdxb.Annotation) {
	if p.target != nil {
		p.target.Annotate(a)
	}
}

func (p *outputProxy) Complete(t fdxb.Telegram) {
	if p.target != nil {
		p.target.Complete(t)
	}
}

// New validates the sample rate and returns a decoder searching for a header.
func New(sampleRate int, opts ...Option) (*Decoder, error) {
	if sampleRate <= 0 {
		return nil, ErrNoSampleRate
	}

	d := &Decoder{
		sampleRate: sampleRate,
		demod:      demod.NewDemodulator(sampleRate),
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.assembler = frame.NewAssembler(&d.out, d.logger)

	return d, nil
}

func (d *Decoder) SampleRate() int {
	return d.sampleRate
}

func (d *Decoder) State() State {
	if d.assembler.Framed() {
		return StateFramed
	}
	return StateSearching
}

// Buffered returns the number of bits held for the current telegram or header window.
func (d *Decoder) Buffered() int {
	return d.assembler.Len()
}

// Edge processes one edge and writes whatever it produces to out.
// It reports whether a bit was demodulated.
func (d *Decoder) Edge(sample int64, out fdxb.Output) bool {
	bit, ok := d.demod.Edge(sample)
	if d.onPulse != nil {
		if width, valid := d.demod.Width(); valid {
			d.onPulse(width)
		}
	}
	if !ok {
		return false
	}

	d.out.target = out
	defer func() { d.out.target = nil }()

	d.out.Annotate(fdxb.Annotation{
		Start: bit.Start,
		End:   bit.End,
		Class: fdxb.ClassBit,
		Texts: []string{string(bit.Char())},
	})
	d.assembler.Receive(bit)
	return true
}

// Decode runs a finished list of edges through the decoder.
func (d *Decoder) Decode(edges []int64, out fdxb.Output) {
	for _, e := range edges {
		d.Edge(e, out)
	}
}

// Run consumes edges until the channel is closed or ctx is done. A telegram
// still open when the edges run out is dropped.
func (d *Decoder) Run(ctx context.Context, edges <-chan int64, out fdxb.Output) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-edges:
			if !ok {
				if d.State() == StateFramed {
					d.logger.Debug().Int("bits", d.Buffered()).Msg("edges ended inside a telegram")
				}
				return nil
			}
			d.Edge(e, out)
		}
	}
}

// Reset returns the decoder to its start state.
func (d *Decoder) Reset() {
	d.demod.Reset()
	d.assembler.Reset()
}
