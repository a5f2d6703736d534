// Package export renders run data as standalone SVG images.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/mdsim/internal/md"
)

const background = "#0a0a0a"

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// SeriesSVG draws values against their index as a single path. Non-finite
// values break the line. Fewer than two points give an empty string.
func SeriesSVG(values []float64, width, height int, stroke string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return ""
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	header(&sb, width, height)
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)

	pen := "M"
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			pen = "M"
			continue
		}
		x := float64(i) / float64(len(values)-1) * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if pen == "L" {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s%.1f,%.1f", pen, x, y)
		pen = "L"
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// PositionsSVG draws particles projected on the x-y plane, one circle each.
// A periodic box is drawn as the frame of the image and positions are
// wrapped into it; otherwise the view fits the particles.
func PositionsSVG(positions []md.Vec3, box [3]md.Vec3, size int, fill string) string {
	if len(positions) == 0 {
		return ""
	}

	periodic := box[0].X > 0 && box[1].Y > 0
	var minX, minY, span float64
	if periodic {
		span = math.Max(box[0].X, box[1].Y)
	} else {
		minX, minY = math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range positions {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		span = math.Max(maxX-minX, maxY-minY)
		if !(span > 0) {
			span = 1
		}
		minX -= span * 0.1
		minY -= span * 0.1
		span *= 1.2
	}

	scale := float64(size) / span
	radius := math.Max(1.5, float64(size)/float64(8*int(math.Ceil(math.Cbrt(float64(len(positions))))+8)))

	var sb strings.Builder
	header(&sb, size, size)
	if periodic {
		fmt.Fprintf(&sb, `<rect x="0" y="0" width="%.1f" height="%.1f" fill="none" stroke="#666666"/>
`, box[0].X*scale, box[1].Y*scale)
	}

	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", fill)
	for _, p := range positions {
		x, y := p.X-minX, p.Y-minY
		if periodic {
			x -= box[0].X * math.Floor(x/box[0].X)
			y -= box[1].Y * math.Floor(y/box[1].Y)
		}
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", x*scale, float64(size)-y*scale, radius)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
