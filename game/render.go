package game

import "snake-ai/game/types"

// Snapshot is a read-only copy of the game for drawing.
type Snapshot struct {
	Grid      types.Grid
	Snake     []types.Point
	Food      types.Point
	Score     int
	Direction types.Direction
	Frame     int
}

// RenderSink consumes a snapshot after every non-terminal step. Sinks may
// block to throttle the frame rate; they must not touch the game.
type RenderSink interface {
	Render(s Snapshot)
}

// RenderFunc adapts a plain function to RenderSink.
type RenderFunc func(s Snapshot)

func (f RenderFunc) Render(s Snapshot) {
	f(s)
}
