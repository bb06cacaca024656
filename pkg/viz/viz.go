// Package viz serves capture status: pulse-width plots, metrics and the live event stream.
package viz

import (
	"bytes"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// ImageContainer is a rendered PNG.
type ImageContainer struct {
	name string
	data []byte
}

func (i *ImageContainer) Name() string { return i.name }
func (i *ImageContainer) Data() []byte { return i.data }

// Producer is something the server can draw and describe.
type Producer interface {
	Name() string
	GetImage() (*ImageContainer, error)
	Summary() string
}

func plotWithDefaults(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.BackgroundColor = color.Black
	p.Title.TextStyle.Color = color.White
	p.Legend.TextStyle.Color = color.White
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Color = color.White
		ax.Label.TextStyle.Color = color.White
		ax.Tick.Color = color.White
		ax.Tick.Label.Color = color.White
	}
	return p
}

func render(name string, p *plot.Plot) (*ImageContainer, error) {
	w, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return &ImageContainer{name: name, data: buf.Bytes()}, nil
}
