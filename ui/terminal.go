package ui

import (
	"fmt"
	"sync"
	"time"

	"snake-ai/game"
	"snake-ai/game/types"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	headStyle   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0, 100, 255))
	bodyStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	foodStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	textStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// Terminal draws snapshots in a terminal. Every board cell is two characters
// wide so the board keeps its proportions.
type Terminal struct {
	screen tcell.Screen
	ticker *time.Ticker
	cancel func()
	once   sync.Once
}

// NewTerminal opens the terminal screen. speed is the frame rate, 0 means
// unthrottled. cancel is called when the user presses Esc, q or Ctrl-C.
func NewTerminal(speed int, cancel func()) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "create screen")
	}
	return newTerminal(screen, speed, cancel)
}

func newTerminal(screen tcell.Screen, speed int, cancel func()) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "init screen")
	}
	screen.HideCursor()
	screen.Clear()

	t := &Terminal{screen: screen, cancel: cancel}
	if speed > 0 {
		t.ticker = time.NewTicker(time.Second / time.Duration(speed))
	}
	go t.pollEvents()
	return t, nil
}

// pollEvents exits once the screen is finalized.
func (t *Terminal) pollEvents() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
				if t.cancel != nil {
					t.cancel()
				}
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *Terminal) Render(s game.Snapshot) {
	t.screen.Clear()
	cols, rows := s.Grid.Columns(), s.Grid.Rows()

	// Border
	for x := 0; x <= 2*cols+1; x++ {
		t.screen.SetContent(x, 0, '─', nil, borderStyle)
		t.screen.SetContent(x, rows+1, '─', nil, borderStyle)
	}
	for y := 0; y <= rows+1; y++ {
		t.screen.SetContent(0, y, '│', nil, borderStyle)
		t.screen.SetContent(2*cols+1, y, '│', nil, borderStyle)
	}
	t.screen.SetContent(0, 0, '┌', nil, borderStyle)
	t.screen.SetContent(2*cols+1, 0, '┐', nil, borderStyle)
	t.screen.SetContent(0, rows+1, '└', nil, borderStyle)
	t.screen.SetContent(2*cols+1, rows+1, '┘', nil, borderStyle)

	t.drawCell(s.Grid, s.Food, '●', foodStyle)
	for i, p := range s.Snake {
		style := bodyStyle
		if i == 0 {
			style = headStyle
		}
		t.drawCell(s.Grid, p, '█', style)
	}

	t.drawText(0, rows+2, fmt.Sprintf("Score: %d  Frame: %d", s.Score, s.Frame))
	t.screen.Show()

	if t.ticker != nil {
		<-t.ticker.C
	}
}

func (t *Terminal) drawCell(grid types.Grid, p types.Point, r rune, style tcell.Style) {
	if !grid.InBounds(p) {
		return
	}
	x := 1 + 2*(p.X/grid.BlockSize)
	y := 1 + p.Y/grid.BlockSize
	t.screen.SetContent(x, y, r, nil, style)
	t.screen.SetContent(x+1, y, r, nil, style)
}

func (t *Terminal) drawText(x, y int, text string) {
	for i, r := range text {
		t.screen.SetContent(x+i, y, r, nil, textStyle)
	}
}

// Close restores the terminal. It is safe to call more than once.
func (t *Terminal) Close() {
	t.once.Do(func() {
		if t.ticker != nil {
			t.ticker.Stop()
		}
		t.screen.Fini()
	})
}
