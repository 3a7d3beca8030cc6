package ui

import (
	"fmt"

	"snake-ai/game"
	"snake-ai/game/types"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	snakeOuter = rl.NewColor(0, 0, 255, 255)
	snakeInner = rl.NewColor(0, 100, 255, 255)
)

// Window draws snapshots in a raylib window sized to the grid. It must be
// created and used from the main OS thread.
type Window struct {
	cancel func()
	closed bool
}

// NewWindow opens the window. speed is the target frame rate, 0 means
// unthrottled. cancel is called once the user closes the window.
func NewWindow(grid types.Grid, speed int, cancel func()) *Window {
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(grid.Width), int32(grid.Height), "Snake AI - Q-Learning")
	if speed > 0 {
		rl.SetTargetFPS(int32(speed))
	}
	return &Window{cancel: cancel}
}

func (w *Window) Render(s game.Snapshot) {
	if w.closed {
		return
	}
	if rl.WindowShouldClose() {
		w.closed = true
		if w.cancel != nil {
			w.cancel()
		}
		return
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	block := int32(s.Grid.BlockSize)
	inset := block / 5
	for _, p := range s.Snake {
		rl.DrawRectangle(int32(p.X), int32(p.Y), block, block, snakeOuter)
		rl.DrawRectangle(int32(p.X)+inset, int32(p.Y)+inset, block-2*inset, block-2*inset, snakeInner)
	}
	rl.DrawRectangle(int32(s.Food.X), int32(s.Food.Y), block, block, rl.Red)

	rl.DrawText(fmt.Sprintf("Score: %d", s.Score), 4, 4, 20, rl.White)
	rl.EndDrawing()
}

func (w *Window) Close() {
	rl.CloseWindow()
}
