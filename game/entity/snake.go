package entity

import "snake-ai/game/types"

// InitialLength is the number of segments a snake starts with.
const InitialLength = 3

// Snake is an ordered body with the head at index 0.
type Snake struct {
	Body []types.Point
}

// NewSnake lays out a horizontal snake of InitialLength segments with its
// head at head and the body trailing to the left.
func NewSnake(head types.Point, blockSize int) *Snake {
	body := make([]types.Point, InitialLength)
	for i := range body {
		body[i] = types.Point{X: head.X - i*blockSize, Y: head.Y}
	}
	return &Snake{Body: body}
}

func (s *Snake) GetHead() types.Point {
	return s.Body[0]
}

func (s *Snake) Len() int {
	return len(s.Body)
}

// Move inserts newHead at the front. The snake is one segment longer until
// RemoveTail is called.
func (s *Snake) Move(newHead types.Point) {
	s.Body = append(s.Body, types.Point{})
	copy(s.Body[1:], s.Body)
	s.Body[0] = newHead
}

func (s *Snake) RemoveTail() {
	if len(s.Body) > 0 {
		s.Body = s.Body[:len(s.Body)-1]
	}
}

// Contains reports whether p is any segment, head included.
func (s *Snake) Contains(p types.Point) bool {
	for _, b := range s.Body {
		if b == p {
			return true
		}
	}
	return false
}

// Points returns a copy of the body.
func (s *Snake) Points() []types.Point {
	out := make([]types.Point, len(s.Body))
	copy(out, s.Body)
	return out
}
