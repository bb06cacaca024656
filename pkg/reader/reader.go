// Package reader runs a capture from an edge source through the decoder to outputs.
package reader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/norasector/fdxb/pkg/fdxb/decoder"
	"github.com/norasector/fdxb/pkg/fdxb/demod"
	"github.com/norasector/fdxb/pkg/reader/source"
	"github.com/norasector/fdxb/pkg/util"
	"github.com/norasector/fdxb/pkg/viz"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	edgeBufferLength = 4096
	pulseHistory     = 512
)

type Options struct {
	// SampleRate overrides the rate reported by the source.
	SampleRate int
	Outputs    []Output
}

type Reader struct {
	source    source.Source
	opts      Options
	dec       *decoder.Decoder
	writeAPI  api.WriteAPI
	vizServer *viz.Server
	pulses    *viz.PulsePlotter
	metrics   *Metrics
	logger    zerolog.Logger
	mu        sync.Mutex
	cancel    context.CancelFunc
	edges     atomic.Int64
}

type ReaderOption func(r *Reader) error

func WithInfluxDB(writeAPI api.WriteAPI) ReaderOption {
	return func(r *Reader) error {
		r.writeAPI = writeAPI
		return nil
	}
}

// WithStatusServer plots pulse widths on srv and runs it for the life of the
// reader. Start then only returns once ctx is done.
func WithStatusServer(srv *viz.Server) ReaderOption {
	return func(r *Reader) error {
		r.vizServer = srv
		return nil
	}
}

func WithMetrics(m *Metrics) ReaderOption {
	return func(r *Reader) error {
		r.metrics = m
		return nil
	}
}

func WithLogger(logger zerolog.Logger) ReaderOption {
	return func(r *Reader) error {
		r.logger = logger
		return nil
	}
}

func NewReader(src source.Source, options Options, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		source:   src,
		opts:     options,
		writeAPI: util.NopWriteAPI{}, // overwritten with option
		logger:   log.Logger,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.metrics == nil {
		r.metrics = NewMetrics()
	}

	rate := options.SampleRate
	if rate == 0 {
		rate = src.SampleRate()
	}

	decOpts := []decoder.Option{decoder.WithLogger(r.logger)}
	if r.vizServer != nil {
		r.pulses = viz.NewPulsePlotter("pulses", pulseHistory, demod.ModulationWidth)
		decOpts = append(decOpts, decoder.WithPulseHook(r.pulses.Append))
	}

	dec, err := decoder.New(rate, decOpts...)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name(), err)
	}
	r.dec = dec

	if r.pulses != nil {
		r.vizServer.Register(r.pulses)
	}

	return r, nil
}

func (r *Reader) Metrics() *Metrics {
	return r.metrics
}

func (r *Reader) started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Stop cancels a running capture and closes the source.
func (r *Reader) Stop() error {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Unlock()
	return r.source.Stop()
}

func (r *Reader) Start(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	raw := make(chan int64, edgeBufferLength)
	edges := make(chan int64, edgeBufferLength)

	eg.Go(func() error {
		return r.source.Start(ctx, raw)
	})

	eg.Go(func() error {
		return r.countEdges(ctx, raw, edges)
	})

	if r.vizServer != nil {
		eg.Go(func() error {
			return r.vizServer.Run(ctx)
		})
	}

	for _, output := range r.opts.Outputs {
		thisOutput := output
		eg.Go(func() error {
			return thisOutput.Start(ctx)
		})
	}

	eg.Go(func() error {
		return r.decode(ctx, edges)
	})

	r.logger.Info().
		Str("decoder", fdxb.Metadata.ID).
		Str("source", r.source.Name()).
		Int("sample_rate", r.dec.SampleRate()).
		Msg("Starting")

	return eg.Wait()
}

func (r *Reader) countEdges(ctx context.Context, in <-chan int64, out chan<- int64) error {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-in:
			if !ok {
				return nil
			}
			r.edges.Add(1)
			r.metrics.Edges.Inc()
			select {
			case out <- e:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (r *Reader) decode(ctx context.Context, edges <-chan int64) error {
	c := &capture{
		ctx:      ctx,
		source:   r.source.Name(),
		outputs:  r.opts.Outputs,
		metrics:  r.metrics,
		writeAPI: r.writeAPI,
		logger:   r.logger,
	}

	defer func() {
		for _, out := range r.opts.Outputs {
			close(out.Receive())
		}
	}()

	start := time.Now()
	duration, err := util.TimeOperationMicroseconds(func() error {
		return r.dec.Run(ctx, edges, c)
	})

	r.writeAPI.WritePoint(influxdb2.NewPoint("fdxb.capture.processed",
		map[string]string{
			"source": c.source,
		},
		map[string]interface{}{
			"edges":     r.edges.Load(),
			"bits":      c.bits,
			"telegrams": c.telegrams,
			"invalid":   c.invalid,
			"duration":  duration,
		}, start))

	r.logger.Info().
		Int("telegrams", c.telegrams).
		Int("invalid", c.invalid).
		Int64("duration_us", duration).
		Msg("capture decoded")

	return err
}
