package types

import "github.com/pkg/errors"

// Default window geometry, in pixels.
const (
	DefaultWidth     = 640
	DefaultHeight    = 480
	DefaultBlockSize = 20
)

// Point is a pixel coordinate on the grid. Grid-aligned points are multiples
// of the block size.
type Point struct {
	X, Y int
}

// Grid maps a window size and a block size to a discrete coordinate space.
type Grid struct {
	Width     int
	Height    int
	BlockSize int
}

// DefaultGrid returns the 640x480 window with 20 pixel blocks.
func DefaultGrid() Grid {
	return Grid{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		BlockSize: DefaultBlockSize,
	}
}

// Validate reports whether the grid can hold at least one block.
func (g Grid) Validate() error {
	if g.BlockSize <= 0 {
		return errors.Errorf("block size must be positive, got %d", g.BlockSize)
	}
	if g.Width < g.BlockSize || g.Height < g.BlockSize {
		return errors.Errorf("grid %dx%d is smaller than one block of %d", g.Width, g.Height, g.BlockSize)
	}
	return nil
}

// Columns is the number of grid-aligned x positions a block can occupy.
func (g Grid) Columns() int {
	return (g.Width-g.BlockSize)/g.BlockSize + 1
}

// Rows is the number of grid-aligned y positions a block can occupy.
func (g Grid) Rows() int {
	return (g.Height-g.BlockSize)/g.BlockSize + 1
}

// Cells is the total number of grid-aligned cells.
func (g Grid) Cells() int {
	return g.Columns() * g.Rows()
}

// Center is where a fresh snake puts its head.
func (g Grid) Center() Point {
	return Point{X: g.Width / 2, Y: g.Height / 2}
}

// InBounds reports whether a block placed at p lies fully inside the window.
// The upper bound is the last full block, not the window edge.
func (g Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X <= g.Width-g.BlockSize &&
		p.Y >= 0 && p.Y <= g.Height-g.BlockSize
}

// CellIndex returns the row-major index of the cell containing p.
func (g Grid) CellIndex(p Point) int {
	return (p.Y/g.BlockSize)*g.Columns() + p.X/g.BlockSize
}

// PointAt is the inverse of CellIndex for grid-aligned points.
func (g Grid) PointAt(index int) Point {
	cols := g.Columns()
	return Point{
		X: (index % cols) * g.BlockSize,
		Y: (index / cols) * g.BlockSize,
	}
}

// Move returns p shifted one block in direction d.
func (g Grid) Move(p Point, d Direction) Point {
	v := d.ToPoint()
	return Point{X: p.X + v.X*g.BlockSize, Y: p.Y + v.Y*g.BlockSize}
}
