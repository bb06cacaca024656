package viz

import (
	"fmt"
	"image/color"
	"sync"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
)

// PulsePlotter keeps the most recent pulse widths and plots them against the
// demodulation threshold.
type PulsePlotter struct {
	name      string
	size      int
	threshold float64
	mu        sync.Mutex
	widths    []float64
	total     int
}

// NewPulsePlotter keeps up to size widths, in microseconds.
func NewPulsePlotter(name string, size int, threshold float64) *PulsePlotter {
	return &PulsePlotter{
		name:      name,
		size:      size,
		threshold: threshold,
		widths:    make([]float64, 0, size),
	}
}

func (p *PulsePlotter) Name() string {
	return p.name
}

// Append records one pulse width.
func (p *PulsePlotter) Append(width float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total++
	p.widths = append(p.widths, width)
	if len(p.widths) > p.size {
		p.widths = p.widths[len(p.widths)-p.size:]
	}
}

// Stats returns the mean and standard deviation of the retained widths on
// each side of the threshold.
func (p *PulsePlotter) Stats() (shortMean, shortStd, longMean, longStd float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var short, long []float64
	for _, w := range p.widths {
		if w > p.threshold {
			long = append(long, w)
		} else {
			short = append(short, w)
		}
	}
	shortMean, shortStd = meanStdDev(short)
	longMean, longStd = meanStdDev(long)
	return
}

func meanStdDev(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

// Count returns the number of widths appended so far, including those that
// have left the window.
func (p *PulsePlotter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

func (p *PulsePlotter) Summary() string {
	shortMean, shortStd, longMean, longStd := p.Stats()
	return fmt.Sprintf("%d pulses; short %.1fus (sd %.1f); long %.1fus (sd %.1f); threshold %.0fus",
		p.Count(), shortMean, shortStd, longMean, longStd, p.threshold)
}

// GetImage returns nil until at least one width has been recorded.
func (p *PulsePlotter) GetImage() (*ImageContainer, error) {
	p.mu.Lock()
	if len(p.widths) == 0 {
		p.mu.Unlock()
		return nil, nil
	}
	pts := make(plotter.XYs, len(p.widths))
	for i, w := range p.widths {
		pts[i] = plotter.XY{X: float64(i), Y: w}
	}
	p.mu.Unlock()

	pl := plotWithDefaults(p.name)
	pl.X.Label.Text = "pulse"
	pl.Y.Label.Text = "width (us)"
	pl.Y.Min = 0

	pl.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	scatter.GlyphStyle.Color = color.RGBA{G: 200, B: 255, A: 255}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}

	line, err := plotter.NewLine(plotter.XYs{
		{X: 0, Y: p.threshold},
		{X: float64(len(pts) - 1), Y: p.threshold},
	})
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{R: 255, A: 255}

	pl.Add(scatter, line)
	pl.Legend.Add("width", scatter)
	pl.Legend.Add("threshold", line)

	return render(p.name, pl)
}
