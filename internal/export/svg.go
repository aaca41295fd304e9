package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/chargefield/internal/charge"
	"github.com/san-kum/chargefield/internal/equipotential"
	"github.com/san-kum/chargefield/internal/field"
)

type SVGOptions struct {
	Width, Height int
	// Saturation is the potential magnitude drawn at full color.
	Saturation float64
	Background string
	LineColor  string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:      800,
		Height:     800,
		Saturation: 20,
		Background: "#0a0a0a",
		LineColor:  "#00ff88",
	}
}

var (
	neutral  = colorful.Color{R: 1, G: 1, B: 1}
	positive = colorful.Color{R: 0.9, G: 0.1, B: 0.1}
	negative = colorful.Color{R: 0.1, G: 0.2, B: 0.9}
)

// PotentialColor clamps v to [-saturation, saturation] and blends from white
// toward red for positive and blue for negative potential.
func PotentialColor(v, saturation float64) colorful.Color {
	if saturation <= 0 {
		return neutral
	}
	t := math.Max(-1, math.Min(1, v/saturation))
	if t >= 0 {
		return neutral.BlendLab(positive, t).Clamped()
	}
	return neutral.BlendLab(negative, -t).Clamped()
}

type projection struct {
	b    field.Bounds
	w, h float64
}

func (p projection) to(v r2.Vec) (float64, float64) {
	x := (v.X - p.b.Min.X) / p.b.Width() * p.w
	y := (p.b.Max.Y - v.Y) / p.b.Height() * p.h
	return x, y
}

// LinesToSVG draws an optional potential heat map, the traced lines and the
// charges. grid may be nil.
func LinesToSVG(b field.Bounds, lines []equipotential.Line, charges []charge.Charge, grid *field.Grid, opts SVGOptions) string {
	proj := projection{b: b, w: float64(opts.Width), h: float64(opts.Height)}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background))

	if grid != nil {
		writeHeatMap(&sb, proj, grid, opts)
	}

	sb.WriteString(fmt.Sprintf(`<g fill="none" stroke="%s" stroke-width="1.5">
`, opts.LineColor))
	for _, l := range lines {
		if l.Degenerate() {
			x, y := proj.to(l.Seed)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="2"/>
`, x, y))
			continue
		}
		sb.WriteString(`<polyline points="`)
		for i, p := range l.Points {
			x, y := proj.to(p)
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		}
		sb.WriteString(fmt.Sprintf(`"><title>%.3f V</title></polyline>
`, l.Potential))
	}
	sb.WriteString("</g>\n")

	for _, c := range charges {
		x, y := proj.to(c.Position)
		fill := positive.Hex()
		if c.Q < 0 {
			fill = negative.Hex()
		} else if c.Q == 0 {
			fill = neutral.Hex()
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="6" fill="%s" stroke="#ffffff"/>
`, x, y, fill))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func writeHeatMap(sb *strings.Builder, proj projection, grid *field.Grid, opts SVGOptions) {
	cw := proj.w / float64(max(grid.Cols()-1, 1))
	ch := proj.h / float64(max(grid.Rows()-1, 1))

	sb.WriteString(`<g stroke="none">
`)
	for i := 0; i < grid.Len(); i++ {
		x, y := proj.to(grid.Point(i))
		color := PotentialColor(grid.Potential(i), opts.Saturation)
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, x-cw/2, y-ch/2, cw, ch, color.Hex()))
	}
	sb.WriteString("</g>\n")
}
