package reader

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/norasector/fdxb/pkg/fdxb"
	"github.com/rs/zerolog"
)

// capture fans decoder output out to every Output and keeps the books.
type capture struct {
	ctx      context.Context
	source   string
	outputs  []Output
	metrics  *Metrics
	writeAPI api.WriteAPI
	logger   zerolog.Logger

	bits      int
	telegrams int
	invalid   int
}

func (c *capture) send(ev *fdxb.Event) {
	for _, out := range c.outputs {
		select {
		case out.Receive() <- ev:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *capture) Annotate(a fdxb.Annotation) {
	switch a.Class {
	case fdxb.ClassBit:
		c.bits++
		c.metrics.Bits.Inc()
	case fdxb.ClassHeader:
		c.metrics.Headers.Inc()
	case fdxb.ClassInvalidChecksum:
		c.metrics.ChecksumFailures.Inc()
	}

	c.send(&fdxb.Event{Source: c.source, Annotation: &a})
}

func (c *capture) Complete(t fdxb.Telegram) {
	c.telegrams++
	c.metrics.Telegrams.Inc()
	if !t.ChecksumValid {
		c.invalid++
	}

	c.logger.Info().
		Str("tag_id", t.TagID).
		Bool("valid", t.ChecksumValid).
		Int64("start", t.Start).
		Msg("telegram")

	valid := "false"
	if t.ChecksumValid {
		valid = "true"
	}
	c.writeAPI.WritePoint(influxdb2.NewPoint("fdxb.telegram",
		map[string]string{
			"source": c.source,
			"valid":  valid,
		},
		map[string]interface{}{
			"tag_id":     t.TagID,
			"country":    int64(t.CountryCode),
			"national":   int64(t.NationalCode),
			"extra_data": t.DataBlock,
		}, time.Now()))

	c.send(&fdxb.Event{Source: c.source, Telegram: &t})
}
