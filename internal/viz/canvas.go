package viz

import (
	"math"
	"strings"

	"github.com/san-kum/mdsim/internal/md"
)

const brailleBlank = 0x2800

// Braille cell dot bits, indexed [row][column]:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of Braille characters. Each character holds 2x4 dots, so
// the drawable area is (Width*2) x (Height*4) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set turns on the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Count returns the number of dots that are on.
func (c *Canvas) Count() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := r - brailleBlank; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// DrawParticles projects positions onto the x-y plane. With a periodic box
// the view is the wrapped unit cell with its outline; otherwise it is scaled
// to the bounding rectangle of the particles.
func (c *Canvas) DrawParticles(positions []md.Vec3, box [3]md.Vec3) {
	c.Clear()
	if len(positions) == 0 {
		return
	}
	w, h := float64(c.Width*2-1), float64(c.Height*4-1)

	periodic := box[0].X > 0 && box[1].Y > 0
	var minX, minY, spanX, spanY float64
	if periodic {
		spanX, spanY = box[0].X, box[1].Y
		c.DrawLine(0, 0, int(w), 0)
		c.DrawLine(0, int(h), int(w), int(h))
		c.DrawLine(0, 0, 0, int(h))
		c.DrawLine(int(w), 0, int(w), int(h))
	} else {
		minX, minY = math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, p := range positions {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		spanX, spanY = maxX-minX, maxY-minY
		// keep the aspect ratio and leave a margin
		span := math.Max(spanX, spanY) * 1.1
		if !(span > 0) || math.IsInf(span, 0) {
			span = 1
		}
		minX -= (span - spanX) / 2
		minY -= (span - spanY) / 2
		spanX, spanY = span, span
	}

	for _, p := range positions {
		x, y := p.X-minX, p.Y-minY
		if periodic {
			x -= spanX * math.Floor(x/spanX)
			y -= spanY * math.Floor(y/spanY)
		}
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		px := int(x / spanX * w)
		py := int(h - y/spanY*h)
		c.Set(px, py)
		c.Set(px+1, py)
		c.Set(px, py+1)
		c.Set(px+1, py+1)
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
