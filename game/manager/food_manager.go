package manager

import (
	"snake-ai/game/entity"
	"snake-ai/game/types"

	"github.com/kamstrup/intmap"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// DefaultMaxAttempts bounds the random draws before falling back to a scan.
const DefaultMaxAttempts = 1000

// ErrNoFreeCell is returned when the snake covers every cell.
var ErrNoFreeCell = errors.New("no free cell for food")

type FoodManager struct {
	grid        types.Grid
	rng         *rand.Rand
	maxAttempts int
}

// NewFoodManager places food with a generator seeded from seed.
func NewFoodManager(grid types.Grid, seed uint64) *FoodManager {
	return &FoodManager{
		grid:        grid,
		rng:         rand.New(rand.NewSource(seed)),
		maxAttempts: DefaultMaxAttempts,
	}
}

// SetMaxAttempts changes the retry bound. Zero skips random draws entirely.
func (fm *FoodManager) SetMaxAttempts(n int) {
	if n < 0 {
		n = 0
	}
	fm.maxAttempts = n
}

// PlaceFood draws uniformly random grid-aligned cells until one misses the
// snake. After maxAttempts misses it returns the first free cell in
// row-major order.
func (fm *FoodManager) PlaceFood(snake *entity.Snake) (types.Point, error) {
	cols, rows := fm.grid.Columns(), fm.grid.Rows()
	for attempts := 0; attempts < fm.maxAttempts; attempts++ {
		food := types.Point{
			X: fm.rng.Intn(cols) * fm.grid.BlockSize,
			Y: fm.rng.Intn(rows) * fm.grid.BlockSize,
		}
		if !snake.Contains(food) {
			return food, nil
		}
	}
	return fm.firstFreeCell(snake)
}

func (fm *FoodManager) firstFreeCell(snake *entity.Snake) (types.Point, error) {
	occupied := intmap.NewSet[int](snake.Len())
	for _, p := range snake.Body {
		if fm.grid.InBounds(p) && p.X%fm.grid.BlockSize == 0 && p.Y%fm.grid.BlockSize == 0 {
			occupied.Add(fm.grid.CellIndex(p))
		}
	}
	for i := 0; i < fm.grid.Cells(); i++ {
		if !occupied.Has(i) {
			return fm.grid.PointAt(i), nil
		}
	}
	return types.Point{}, ErrNoFreeCell
}
