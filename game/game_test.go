package game

import (
	"testing"

	"snake-ai/game/manager"
	"snake-ai/game/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, opts ...Option) *Game {
	t.Helper()
	g, err := NewGame(types.DefaultGrid(), opts...)
	require.NoError(t, err)
	// Park the food in a corner the tests never reach unless they want to.
	g.food = types.Point{X: 0, Y: 0}
	return g
}

func step(t *testing.T, g *Game, a types.Action) StepResult {
	t.Helper()
	res, err := g.Step(a)
	require.NoError(t, err)
	return res
}

func TestResetLayout(t *testing.T) {
	g := newTestGame(t)

	snap := g.Snapshot()
	assert.Equal(t, []types.Point{{X: 320, Y: 240}, {X: 300, Y: 240}, {X: 280, Y: 240}}, snap.Snake)
	assert.Equal(t, types.Right, g.Direction())
	assert.Equal(t, types.Point{X: 320, Y: 240}, g.Head())
	assert.Zero(t, g.Score())
	assert.Zero(t, g.FrameIteration())
	assert.False(t, g.Over())
}

func TestResetFoodNeverOnSnake(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		g, err := NewGame(types.DefaultGrid(), WithFoodManager(manager.NewFoodManager(types.DefaultGrid(), seed)))
		require.NoError(t, err)
		assert.NotContains(t, g.Snapshot().Snake, g.Food())
	}
}

func TestNewGameRejectsBadGrid(t *testing.T) {
	_, err := NewGame(types.Grid{Width: 10, Height: 10, BlockSize: 20})
	assert.Error(t, err)
}

func TestNewGameNeedsRoomForFood(t *testing.T) {
	_, err := NewGame(types.Grid{Width: 60, Height: 20, BlockSize: 20})
	assert.Error(t, err)

	grid := types.Grid{Width: 80, Height: 20, BlockSize: 20}
	for seed := uint64(0); seed < 20; seed++ {
		g, err := NewGame(grid, WithFoodManager(manager.NewFoodManager(grid, seed)))
		require.NoError(t, err)
		assert.False(t, g.Over())
		assert.True(t, grid.InBounds(g.Food()))
		assert.NotContains(t, g.Snapshot().Snake, g.Food())
	}
}

func TestStepStraight(t *testing.T) {
	g := newTestGame(t)

	res := step(t, g, types.Straight)
	assert.Equal(t, StepResult{Reward: 0, Done: false, Score: 0}, res)
	assert.Equal(t, []types.Point{{X: 340, Y: 240}, {X: 320, Y: 240}, {X: 300, Y: 240}}, g.Snapshot().Snake)
	assert.Equal(t, 1, g.FrameIteration())
}

func TestStepTurns(t *testing.T) {
	tests := []struct {
		action types.Action
		dir    types.Direction
		head   types.Point
	}{
		{types.Straight, types.Right, types.Point{X: 340, Y: 240}},
		{types.TurnRight, types.Down, types.Point{X: 320, Y: 260}},
		{types.TurnLeft, types.Up, types.Point{X: 320, Y: 220}},
	}
	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			g := newTestGame(t)
			step(t, g, tt.action)
			assert.Equal(t, tt.dir, g.Direction())
			assert.Equal(t, tt.head, g.Head())
		})
	}
}

func TestStepVector(t *testing.T) {
	g := newTestGame(t)

	_, err := g.StepVector([]float64{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, types.Down, g.Direction())

	_, err = g.StepVector([]float64{1, 1, 0})
	assert.True(t, errors.Is(err, types.ErrInvalidAction))
	_, err = g.StepVector([]float64{0, 0, 0})
	assert.True(t, errors.Is(err, types.ErrInvalidAction))
	assert.Equal(t, 1, g.FrameIteration(), "rejected actions must not advance the game")
}

func TestStepRejectsUnknownAction(t *testing.T) {
	g := newTestGame(t)
	_, err := g.Step(types.Action(7))
	assert.True(t, errors.Is(err, types.ErrInvalidAction))
	assert.Zero(t, g.FrameIteration())
}

func TestEatGrowsSnake(t *testing.T) {
	g := newTestGame(t)
	g.food = types.Point{X: 340, Y: 240}

	res := step(t, g, types.Straight)
	assert.Equal(t, StepResult{Reward: RewardFood, Done: false, Score: 1}, res)

	snap := g.Snapshot()
	assert.Len(t, snap.Snake, 4)
	assert.Equal(t, types.Point{X: 280, Y: 240}, snap.Snake[3])
	assert.NotContains(t, snap.Snake, g.Food())
}

func TestWallDeath(t *testing.T) {
	g := newTestGame(t)

	// 320 -> 620 takes 15 steps, all safe.
	for i := 0; i < 15; i++ {
		res := step(t, g, types.Straight)
		require.False(t, res.Done, "step %d", i)
	}
	assert.Equal(t, types.Point{X: 620, Y: 240}, g.Head())

	res := step(t, g, types.Straight)
	assert.Equal(t, StepResult{Reward: RewardDeath, Done: true, Score: 0}, res)
	assert.True(t, g.Over())

	// The fatal head stays and the tail is not popped.
	snap := g.Snapshot()
	assert.Len(t, snap.Snake, 4)
	assert.Equal(t, types.Point{X: 640, Y: 240}, snap.Snake[0])
	assert.Equal(t, types.Point{X: 0, Y: 0}, g.Food())
}

func TestSelfCollision(t *testing.T) {
	g := newTestGame(t)
	g.snake.Body = []types.Point{
		{X: 100, Y: 100}, {X: 80, Y: 100}, {X: 80, Y: 120}, {X: 100, Y: 120}, {X: 120, Y: 120},
	}

	res := step(t, g, types.TurnRight)
	assert.True(t, res.Done)
	assert.Equal(t, RewardDeath, res.Reward)
	assert.Len(t, g.Snapshot().Snake, 6)
}

func TestTimeout(t *testing.T) {
	g := newTestGame(t)

	// Turning right every step loops the snake around a 2x2 square forever.
	// The budget is checked after the head is inserted, so with three
	// segments it is 100*4 frames.
	for i := 1; i <= 400; i++ {
		res := step(t, g, types.TurnRight)
		require.False(t, res.Done, "frame %d", i)
	}
	res := step(t, g, types.TurnRight)
	assert.Equal(t, StepResult{Reward: RewardDeath, Done: true, Score: 0}, res)
	assert.Equal(t, 401, g.FrameIteration())
}

func TestTerminalIsAbsorbing(t *testing.T) {
	g := newTestGame(t)
	g.snake.Body[0] = types.Point{X: 620, Y: 240}
	g.snake.Body[1] = types.Point{X: 600, Y: 240}
	g.snake.Body[2] = types.Point{X: 580, Y: 240}

	res := step(t, g, types.Straight)
	require.True(t, res.Done)
	before := g.Snapshot()

	res, err := g.Step(types.Straight)
	assert.True(t, errors.Is(err, ErrGameOver))
	assert.True(t, res.Done)
	assert.Equal(t, before, g.Snapshot())

	g.Reset()
	assert.False(t, g.Over())
	res = step(t, g, types.TurnLeft)
	assert.False(t, res.Done)
}

func TestBoardFilledEndsEpisode(t *testing.T) {
	g, err := NewGame(types.Grid{Width: 80, Height: 40, BlockSize: 20})
	require.NoError(t, err)

	g.snake.Body = []types.Point{
		{X: 40, Y: 0}, {X: 20, Y: 0}, {X: 0, Y: 0},
		{X: 0, Y: 20}, {X: 20, Y: 20}, {X: 40, Y: 20}, {X: 60, Y: 20},
	}
	g.food = types.Point{X: 60, Y: 0}

	res := step(t, g, types.Straight)
	assert.Equal(t, StepResult{Reward: RewardFood, Done: true, Score: 1}, res)
	assert.True(t, g.Over())
}

func TestRenderSinkOnlyOnLiveSteps(t *testing.T) {
	var frames []Snapshot
	g := newTestGame(t, WithRenderSink(RenderFunc(func(s Snapshot) {
		frames = append(frames, s)
	})))
	g.food = types.Point{X: 0, Y: 0}

	for {
		res := step(t, g, types.Straight)
		if res.Done {
			break
		}
	}
	assert.Len(t, frames, 15)
	assert.Equal(t, types.Point{X: 620, Y: 240}, frames[len(frames)-1].Snake[0])
	assert.Equal(t, 15, frames[len(frames)-1].Frame)
}

func TestStateVector(t *testing.T) {
	g := newTestGame(t)

	assert.Equal(t, []float64{
		0, 0, 0,
		0, 1, 0, 0,
		1, 0, 1, 0,
	}, g.StateVector())

	g.snake.Body = []types.Point{{X: 620, Y: 460}, {X: 600, Y: 460}, {X: 580, Y: 460}}
	g.food = types.Point{X: 620, Y: 460}
	v := g.StateVector()
	assert.Len(t, v, StateSize)
	assert.Equal(t, []float64{1, 1, 0}, v[:3], "wall ahead and below")
	assert.Equal(t, []float64{0, 0, 0, 0}, v[7:])
}
