package analysis

import (
	"strings"

	"github.com/san-kum/rigidsync/internal/storage"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds height (X) against vertical velocity (Y) for one body.
type PhasePortrait struct {
	Body   string
	Points []Point
}

func HeightPortrait(tr *storage.Trace, body string) *PhasePortrait {
	samples := tr.ForBody(body)
	if len(samples) == 0 {
		return nil
	}
	p := &PhasePortrait{Body: body, Points: make([]Point, len(samples))}
	for i, s := range samples {
		p.Points[i] = Point{X: float64(s.Position.Y()), Y: float64(s.Velocity.Y())}
	}
	return p
}

// PhasePortraitToASCII plots the portrait on a width x height character grid
// with axes drawn where they cross the visible range.
func PhasePortraitToASCII(portrait *PhasePortrait, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	lo, hi := bounds(portrait.Points)
	g := newGrid(width, height)
	col := func(x float64) int { return int((x - lo.X) / (hi.X - lo.X) * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-lo.Y)/(hi.Y-lo.Y)*float64(height-1)) }

	if lo.X <= 0 && hi.X >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			g.set(r, c, '│')
		}
	}
	if lo.Y <= 0 && hi.Y >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			g.set(r, c, '─')
		}
	}
	for _, p := range portrait.Points {
		g.cells[clampInt(row(p.Y), 0, height-1)][clampInt(col(p.X), 0, width-1)] = '•'
	}
	return g.String()
}

// bounds returns the padded extent of pts. Flat ranges widen to one unit.
func bounds(pts []Point) (Point, Point) {
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		lo.X, hi.X = min(lo.X, p.X), max(hi.X, p.X)
		lo.Y, hi.Y = min(lo.Y, p.Y), max(hi.Y, p.Y)
	}
	pad := func(a, b float64) (float64, float64) {
		r := b - a
		if r == 0 {
			r = 1
		}
		return a - r*0.1, b + r*0.1
	}
	lo.X, hi.X = pad(lo.X, hi.X)
	lo.Y, hi.Y = pad(lo.Y, hi.Y)
	return lo, hi
}

type grid struct {
	cells [][]rune
}

func newGrid(width, height int) *grid {
	g := &grid{cells: make([][]rune, height)}
	for i := range g.cells {
		g.cells[i] = []rune(strings.Repeat(" ", width))
	}
	return g
}

// set writes r only over blank cells inside the grid.
func (g *grid) set(row, col int, r rune) {
	if row < 0 || row >= len(g.cells) || col < 0 || col >= len(g.cells[row]) {
		return
	}
	if g.cells[row][col] == ' ' {
		g.cells[row][col] = r
	}
}

func (g *grid) String() string {
	var sb strings.Builder
	for _, row := range g.cells {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
