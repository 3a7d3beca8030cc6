package game

import "snake-ai/game/types"

// StateSize is the length of the vector returned by StateVector.
const StateSize = 11

// StateVector encodes the game for the agent. Every feature is 0 or 1:
//
//	0-2  danger straight, right, left (one block ahead after that move)
//	3-6  heading left, right, up, down
//	7-10 food left, right, up, down of the head
func (g *Game) StateVector() []float64 {
	head := g.snake.GetHead()
	dir := g.direction

	danger := func(a types.Action) bool {
		return g.IsCollision(g.grid.Move(head, dir.Apply(a)))
	}

	return []float64{
		boolToFloat(danger(types.Straight)),
		boolToFloat(danger(types.TurnRight)),
		boolToFloat(danger(types.TurnLeft)),

		boolToFloat(dir == types.Left),
		boolToFloat(dir == types.Right),
		boolToFloat(dir == types.Up),
		boolToFloat(dir == types.Down),

		boolToFloat(g.food.X < head.X),
		boolToFloat(g.food.X > head.X),
		boolToFloat(g.food.Y < head.Y),
		boolToFloat(g.food.Y > head.Y),
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
