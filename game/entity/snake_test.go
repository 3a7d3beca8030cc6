package entity

import (
	"testing"

	"snake-ai/game/types"

	"github.com/stretchr/testify/assert"
)

func TestNewSnakeLayout(t *testing.T) {
	s := NewSnake(types.Point{X: 320, Y: 240}, 20)
	assert.Equal(t, []types.Point{{X: 320, Y: 240}, {X: 300, Y: 240}, {X: 280, Y: 240}}, s.Body)
	assert.Equal(t, types.Point{X: 320, Y: 240}, s.GetHead())
	assert.Equal(t, InitialLength, s.Len())
}

func TestMoveThenRemoveTail(t *testing.T) {
	s := NewSnake(types.Point{X: 40, Y: 0}, 20)

	s.Move(types.Point{X: 60, Y: 0})
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, types.Point{X: 60, Y: 0}, s.GetHead())
	assert.Equal(t, types.Point{X: 0, Y: 0}, s.Body[3])

	s.RemoveTail()
	assert.Equal(t, []types.Point{{X: 60, Y: 0}, {X: 40, Y: 0}, {X: 20, Y: 0}}, s.Body)
}

func TestPointsIsACopy(t *testing.T) {
	s := NewSnake(types.Point{X: 40, Y: 0}, 20)
	pts := s.Points()
	pts[0] = types.Point{X: -1, Y: -1}
	assert.Equal(t, types.Point{X: 40, Y: 0}, s.GetHead())
	assert.True(t, s.Contains(types.Point{X: 0, Y: 0}))
	assert.False(t, s.Contains(types.Point{X: -1, Y: -1}))
}
