package fluid

import (
	"fmt"
	"math"

	"github.com/san-kum/fluidsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// CellCoord addresses a grid cell by column and row.
type CellCoord struct {
	X, Y int
}

// Grid buckets particle indices into square cells of side cellSize.
//
// Occupied coordinates are clamped to [1, dim-2] on both axes, so the 3x3
// stencil around any occupied cell stays in bounds. Particles that drift
// past the interior are merged into the nearest valid border cell.
type Grid struct {
	cols, rows int
	cellSize   float64
	cells      [][]int
}

// NewGrid sizes a grid over a width x height domain.
func NewGrid(width, height, cellSize float64) (*Grid, error) {
	if !(cellSize > 0) {
		return nil, fmt.Errorf("cell size must be positive, got %g: %w", cellSize, dynamo.ErrParameterBounds)
	}
	cols, rows := int(width/cellSize), int(height/cellSize)
	if cols < 3 || rows < 3 {
		return nil, fmt.Errorf("grid %dx%d: %w", cols, rows, dynamo.ErrGridTooSmall)
	}

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, DefaultMaxNeighbors)
	}
	return &Grid{cols: cols, rows: rows, cellSize: cellSize, cells: cells}, nil
}

func (g *Grid) Cols() int { return g.cols }
func (g *Grid) Rows() int { return g.rows }

// CellOf returns the clamped cell holding pos.
func (g *Grid) CellOf(pos r2.Vec) CellCoord {
	return CellCoord{
		X: clampIndex(pos.X/g.cellSize, g.cols),
		Y: clampIndex(pos.Y/g.cellSize, g.rows),
	}
}

func clampIndex(v float64, dim int) int {
	f := math.Floor(v)
	// compare as floats so huge or NaN coordinates cannot overflow the int
	if !(f >= 1) {
		return 1
	}
	if f > float64(dim-2) {
		return dim - 2
	}
	return int(f)
}

// Rebuild clears every cell and reinserts all particles, recording each
// particle's cell on the particle itself.
func (g *Grid) Rebuild(ps []Particle) {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	for i := range ps {
		c := g.CellOf(ps[i].Pos)
		idx := c.X + c.Y*g.cols
		g.cells[idx] = append(g.cells[idx], i)
		ps[i].Cell = c
	}
}

// Cell returns the indices stored in cell c.
func (g *Grid) Cell(c CellCoord) []int {
	return g.cells[c.X+c.Y*g.cols]
}

// Neighbors returns the 3x3 block of cell lists centred on c, column by
// column. c must be a clamped coordinate as produced by CellOf.
func (g *Grid) Neighbors(c CellCoord) [9][]int {
	var out [9][]int
	k := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			out[k] = g.cells[c.X+dx+(c.Y+dy)*g.cols]
			k++
		}
	}
	return out
}
