package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/fluidsim/internal/viz"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	background = "#0a0a0a"
	fluidColor = "#00a8cc"
)

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// ParticlesToSVG draws one circle per particle in a domainW x domainH box,
// scaled to pixelWidth pixels across with y pointing up.
func ParticlesToSVG(ps []r2.Vec, domainW, domainH, radius float64, pixelWidth int) string {
	if domainW <= 0 || domainH <= 0 || pixelWidth <= 0 {
		return ""
	}
	scale := float64(pixelWidth) / domainW
	width, height := float64(pixelWidth), domainH*scale

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<rect width="%.0f" height="%.0f" fill="none" stroke="#444466" stroke-width="2"/>
<g fill="%s">
`, width, height, fluidColor)

	r := max(radius*scale, 0.5)
	for _, p := range ps {
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, p.X*scale, height-p.Y*scale, r)
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	var sb strings.Builder
	header(&sb, float64(canvas.Width)*scale*2, float64(canvas.Height)*scale*4)
	fmt.Fprintf(&sb, "<g fill=%q>\n", fluidColor)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots values against their index as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}
	lo -= rng * 0.1
	rng *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	n := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / n * float64(width)
		y := float64(height) - (v-lo)/rng*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
