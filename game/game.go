package game

import (
	"snake-ai/game/entity"
	"snake-ai/game/manager"
	"snake-ai/game/types"

	"github.com/pkg/errors"
)

// Rewards handed back by Step.
const (
	RewardFood  = 10
	RewardDeath = -10
)

// FrameBudgetPerSegment bounds an episode: once the frame counter exceeds
// this many frames per snake segment the episode times out.
const FrameBudgetPerSegment = 100

// ErrGameOver is returned by Step once the episode has ended and Reset has
// not been called.
var ErrGameOver = errors.New("game over: call Reset")

// StepResult is what the trainer sees after each step.
type StepResult struct {
	Reward int
	Done   bool
	Score  int
}

// Game is the snake environment. It is not safe for concurrent use; a single
// driving loop owns it.
type Game struct {
	grid           types.Grid
	snake          *entity.Snake
	direction      types.Direction
	food           types.Point
	score          int
	frameIteration int
	over           bool

	collisionMgr *manager.CollisionManager
	foodMgr      *manager.FoodManager
	sink         RenderSink
}

// Option configures a Game.
type Option func(*Game)

// WithRenderSink draws every non-terminal step to sink.
func WithRenderSink(sink RenderSink) Option {
	return func(g *Game) {
		g.sink = sink
	}
}

// WithFoodManager replaces the default food placer, which is seeded with 1.
func WithFoodManager(fm *manager.FoodManager) Option {
	return func(g *Game) {
		g.foodMgr = fm
	}
}

// NewGame builds an environment over grid and resets it.
func NewGame(grid types.Grid, opts ...Option) (*Game, error) {
	if err := grid.Validate(); err != nil {
		return nil, errors.Wrap(err, "new game")
	}
	if grid.Cells() <= entity.InitialLength {
		return nil, errors.Errorf("new game: grid of %d cells leaves no room for food", grid.Cells())
	}
	g := &Game{
		grid:         grid,
		collisionMgr: manager.NewCollisionManager(grid),
		foodMgr:      manager.NewFoodManager(grid, 1),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.Reset()
	return g, nil
}

// Reset starts a new episode: a three segment snake heading right with its
// head in the middle of the window, score and frame counter at zero.
func (g *Game) Reset() {
	g.direction = types.Right
	g.snake = entity.NewSnake(g.grid.Center(), g.grid.BlockSize)
	g.score = 0
	g.over = false
	// A fresh snake covers at most InitialLength cells, and NewGame
	// guarantees more than that, so this only fails on a broken placer.
	if !g.placeFood() {
		g.over = true
	}
	g.frameIteration = 0
}

func (g *Game) placeFood() bool {
	food, err := g.foodMgr.PlaceFood(g.snake)
	if err != nil {
		return false
	}
	g.food = food
	return true
}

// StepVector is Step for the trainer's [straight, right, left] encoding.
func (g *Game) StepVector(action []float64) (StepResult, error) {
	a, err := types.ActionFromOneHot(action)
	if err != nil {
		return StepResult{}, err
	}
	return g.Step(a)
}

// Step advances the game by one frame.
//
// On death or timeout the snake keeps the head that was just inserted and
// its tail is not trimmed; the food stays where it was.
func (g *Game) Step(action types.Action) (StepResult, error) {
	if !action.Valid() {
		return StepResult{}, errors.Wrapf(types.ErrInvalidAction, "action %d", int(action))
	}
	if g.over {
		return StepResult{Done: true, Score: g.score}, ErrGameOver
	}

	g.frameIteration++

	g.direction = g.direction.Apply(action)
	newHead := g.grid.Move(g.snake.GetHead(), g.direction)
	g.snake.Move(newHead)

	if g.IsCollision(newHead) || g.frameIteration > FrameBudgetPerSegment*g.snake.Len() {
		g.over = true
		return StepResult{Reward: RewardDeath, Done: true, Score: g.score}, nil
	}

	reward := 0
	if g.collisionMgr.IsFoodCollision(newHead, g.food) {
		g.score++
		reward = RewardFood
		if !g.placeFood() {
			// Nowhere left to put food: the snake filled the board.
			g.over = true
			return StepResult{Reward: reward, Done: true, Score: g.score}, nil
		}
	} else {
		g.snake.RemoveTail()
	}

	if g.sink != nil {
		g.sink.Render(g.Snapshot())
	}
	return StepResult{Reward: reward, Score: g.score}, nil
}

// IsCollision checks p against the walls and the body behind the head.
func (g *Game) IsCollision(p types.Point) bool {
	return g.collisionMgr.IsCollision(p, g.snake.Body)
}

func (g *Game) Grid() types.Grid {
	return g.grid
}

func (g *Game) Head() types.Point {
	return g.snake.GetHead()
}

func (g *Game) Direction() types.Direction {
	return g.direction
}

func (g *Game) Food() types.Point {
	return g.food
}

func (g *Game) Score() int {
	return g.score
}

func (g *Game) FrameIteration() int {
	return g.frameIteration
}

// Over reports whether the episode is terminal.
func (g *Game) Over() bool {
	return g.over
}

// Snapshot copies the state a renderer needs.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Grid:      g.grid,
		Snake:     g.snake.Points(),
		Food:      g.food,
		Score:     g.score,
		Direction: g.direction,
		Frame:     g.frameIteration,
	}
}
