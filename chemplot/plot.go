/*
 * plot.go, part of vorotraj.
 *
 * Copyright 2026 The vorotraj authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package chemplot plots per-frame quantities obtained along a trajectory.
package chemplot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

//Series is one named set of points, usually a quantity (Y) against the frame number (X).
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func xys(xs, ys []float64) (plotter.XYs, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("chemplot: %d x values but %d y values", len(xs), len(ys))
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("chemplot: no data to plot")
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts, nil
}

//SeriesPlot plots ys against xs, as a line with a mark at each point, and saves
//it to filename. The format is taken from the file extension (png, svg, pdf...).
func SeriesPlot(xs, ys []float64, title, ylabel, filename string) error {
	return MultiSeriesPlot([]Series{{X: xs, Y: ys}}, title, ylabel, filename)
}

//MultiSeriesPlot plots several series in the same axes, each in its own
//color, with a legend if the series have names.
func MultiSeriesPlot(data []Series, title, ylabel, filename string) error {
	if len(data) == 0 {
		return fmt.Errorf("chemplot: no data to plot")
	}
	p := basicPlot(title, "Frame", ylabel)
	for key, s := range data {
		pts, err := xys(s.X, s.Y)
		if err != nil {
			return fmt.Errorf("%w (series %d)", err, key)
		}
		l, sc, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		r, g, b := colors(key, len(data))
		c := color.RGBA{R: r, G: g, B: b, A: 255}
		l.Color = c
		sc.Color = c
		sc.Shape = shape(key)
		p.Add(l, sc)
		if s.Name != "" {
			p.Legend.Add(s.Name, l, sc)
		}
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}

func shape(key int) draw.GlyphDrawer {
	switch key % 4 {
	case 0:
		return draw.CircleGlyph{}
	case 1:
		return draw.SquareGlyph{}
	case 2:
		return draw.PyramidGlyph{}
	default:
		return draw.CrossGlyph{}
	}
}

//takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func hsv2RGB(h, s, v float64) (uint8, uint8, uint8) {
	if s == 0.0 {
		c := uint8(255 * v)
		return c, c, c
	}
	h = math.Mod(h, 360) / 60
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return uint8(255 * r), uint8(255 * g), uint8(255 * b)
}

//colors returns well separated colors for key = 0..steps-1, going from red
//to violet and skipping the yellows, which don't show well on white.
func colors(key, steps int) (r, g, b uint8) {
	if steps < 1 {
		steps = 1
	}
	h := float64(key) * 260.0 / float64(steps)
	if h >= 35 {
		h += 40
	}
	return hsv2RGB(h, 1, 0.9)
}
