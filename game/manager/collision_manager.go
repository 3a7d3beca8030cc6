package manager

import "snake-ai/game/types"

type CollisionManager struct {
	grid types.Grid
}

func NewCollisionManager(grid types.Grid) *CollisionManager {
	return &CollisionManager{
		grid: grid,
	}
}

// IsCollision reports whether pos hits a wall or any segment of snake after
// the first one. Index 0 is skipped whatever pos is, so asking about the
// current head never reports the head hitting itself.
func (cm *CollisionManager) IsCollision(pos types.Point, snake []types.Point) bool {
	if cm.isWallCollision(pos) {
		return true
	}
	return cm.isSelfCollision(pos, snake)
}

// isWallCollision uses a one-block margin on the far edges: a block at
// Width-BlockSize still fits, anything beyond does not.
func (cm *CollisionManager) isWallCollision(pos types.Point) bool {
	return pos.X > cm.grid.Width-cm.grid.BlockSize || pos.X < 0 ||
		pos.Y > cm.grid.Height-cm.grid.BlockSize || pos.Y < 0
}

func (cm *CollisionManager) isSelfCollision(pos types.Point, snake []types.Point) bool {
	if len(snake) < 2 {
		return false
	}
	for _, part := range snake[1:] {
		if pos == part {
			return true
		}
	}
	return false
}

// IsFoodCollision checks if a position collides with food
func (cm *CollisionManager) IsFoodCollision(pos types.Point, food types.Point) bool {
	return pos == food
}
