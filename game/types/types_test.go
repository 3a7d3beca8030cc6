package types

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGridGeometry(t *testing.T) {
	g := DefaultGrid()
	require.NoError(t, g.Validate())

	assert.Equal(t, 32, g.Columns())
	assert.Equal(t, 24, g.Rows())
	assert.Equal(t, 768, g.Cells())
	assert.Equal(t, Point{X: 320, Y: 240}, g.Center())
}

func TestGridValidate(t *testing.T) {
	assert.Error(t, Grid{Width: 640, Height: 480, BlockSize: 0}.Validate())
	assert.Error(t, Grid{Width: 10, Height: 480, BlockSize: 20}.Validate())
	assert.NoError(t, Grid{Width: 20, Height: 20, BlockSize: 20}.Validate())
}

func TestInBounds(t *testing.T) {
	g := DefaultGrid()
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{0, 0}, true},
		{Point{620, 460}, true},
		{Point{621, 0}, false},
		{Point{640, 0}, false},
		{Point{0, 461}, false},
		{Point{-1, 0}, false},
		{Point{0, -20}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.InBounds(tt.p), "point %v", tt.p)
	}
}

func TestCellIndexRoundTrip(t *testing.T) {
	g := DefaultGrid()
	for i := 0; i < g.Cells(); i += 37 {
		p := g.PointAt(i)
		assert.True(t, g.InBounds(p))
		assert.Equal(t, i, g.CellIndex(p))
	}
	assert.Equal(t, Point{X: 620, Y: 460}, g.PointAt(g.Cells()-1))
}

func TestTurns(t *testing.T) {
	order := []Direction{Right, Down, Left, Up}
	for i, d := range order {
		assert.Equal(t, d, d.Apply(Straight))
		assert.Equal(t, order[(i+1)%4], d.Apply(TurnRight), "right of %s", d)
		assert.Equal(t, order[(i+3)%4], d.Apply(TurnLeft), "left of %s", d)
		assert.Equal(t, d, d.TurnRight().TurnLeft())
	}
}

func TestMove(t *testing.T) {
	g := DefaultGrid()
	p := Point{X: 100, Y: 100}
	assert.Equal(t, Point{X: 120, Y: 100}, g.Move(p, Right))
	assert.Equal(t, Point{X: 80, Y: 100}, g.Move(p, Left))
	assert.Equal(t, Point{X: 100, Y: 80}, g.Move(p, Up))
	assert.Equal(t, Point{X: 100, Y: 120}, g.Move(p, Down))
}

func TestActionOneHot(t *testing.T) {
	for _, a := range []Action{Straight, TurnRight, TurnLeft} {
		got, err := ActionFromOneHot(a.OneHot())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	assert.Equal(t, []float64{0, 1, 0}, TurnRight.OneHot())
}

func TestActionFromOneHotRejectsMalformed(t *testing.T) {
	bad := [][]float64{
		{0, 0, 0},
		{1, 1, 0},
		{1, 1, 1},
		{0.5, 0, 0},
		{1, 0},
		nil,
	}
	for _, v := range bad {
		_, err := ActionFromOneHot(v)
		assert.True(t, errors.Is(err, ErrInvalidAction), "vector %v", v)
	}
}
