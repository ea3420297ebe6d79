// Package profile renders CPU execution profiles as bar charts.
package profile

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/thelolagemann/sm83/internal/cpu"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	// Width and Height are the size of the unscaled chart in pixels.
	Width  = 640
	Height = 480
	// DefaultTop is the number of opcodes charted by default.
	DefaultTop = 16
)

// ErrEmpty is returned when the profile has recorded nothing.
var ErrEmpty = errors.New("profile: nothing executed")

// Options controls how a profile is drawn.
type Options struct {
	// Top is the number of opcodes to chart, most executed first.
	Top int
	// Ticks charts ticks spent instead of execution counts.
	Ticks bool
	// Scale enlarges the chart by an integer factor.
	Scale int
}

// Plot builds the bar chart for p.
func Plot(p *cpu.Profile, opts Options) (*plot.Plot, error) {
	if opts.Top <= 0 {
		opts.Top = DefaultTop
	}
	entries := p.Top(opts.Top)
	if len(entries) == 0 {
		return nil, ErrEmpty
	}

	values := make(plotter.Values, len(entries))
	names := make([]string, len(entries))
	for i, e := range entries {
		values[i] = float64(e.Executions)
		if opts.Ticks {
			values[i] = float64(e.Ticks)
		}
		names[i] = fmt.Sprintf("%02X", e.Opcode)
	}

	chart := plot.New()
	chart.Title.Text = fmt.Sprintf("Top %d of %d instructions", len(entries), p.Total())
	chart.Y.Label.Text = "executions"
	if opts.Ticks {
		chart.Y.Label.Text = "ticks"
	}
	chart.X.Label.Text = "opcode"

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.LineStyle.Width = vg.Length(0)
	chart.Add(bars)
	chart.NominalX(names...)

	return chart, nil
}

// Render draws p and writes it to w as a PNG.
func Render(p *cpu.Profile, w io.Writer, opts Options) error {
	chart, err := Plot(p, opts)
	if err != nil {
		return err
	}

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	c := vgimg.NewWith(vgimg.UseImage(img))
	chart.Draw(draw.New(c))

	var out image.Image = c.Image()
	if opts.Scale > 1 {
		scaled := image.NewRGBA(image.Rect(0, 0, Width*opts.Scale, Height*opts.Scale))
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), out, out.Bounds(), xdraw.Src, nil)
		out = scaled
	}

	return png.Encode(w, out)
}
