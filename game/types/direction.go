package types

import "github.com/pkg/errors"

// Direction is an absolute heading on the grid.
type Direction int

const (
	Right Direction = iota + 1
	Left
	Up
	Down
)

// clockwise is the turn order. Turning walks this set by index, so the
// numeric values of the constants above carry no meaning.
var clockwise = [4]Direction{Right, Down, Left, Up}

func (d Direction) String() string {
	switch d {
	case Right:
		return "right"
	case Left:
		return "left"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// ToPoint converts a Direction into a unit displacement. Y grows downwards.
func (d Direction) ToPoint() Point {
	switch d {
	case Right:
		return Point{X: 1, Y: 0}
	case Left:
		return Point{X: -1, Y: 0}
	case Up:
		return Point{X: 0, Y: -1}
	case Down:
		return Point{X: 0, Y: 1}
	default:
		return Point{}
	}
}

func (d Direction) index() int {
	for i, c := range clockwise {
		if c == d {
			return i
		}
	}
	return -1
}

// TurnRight returns the next direction clockwise.
func (d Direction) TurnRight() Direction {
	i := d.index()
	if i < 0 {
		return d
	}
	return clockwise[(i+1)%len(clockwise)]
}

// TurnLeft returns the next direction counter-clockwise.
func (d Direction) TurnLeft() Direction {
	i := d.index()
	if i < 0 {
		return d
	}
	return clockwise[(i+len(clockwise)-1)%len(clockwise)]
}

// Apply returns the heading that results from taking a relative action.
func (d Direction) Apply(a Action) Direction {
	switch a {
	case TurnRight:
		return d.TurnRight()
	case TurnLeft:
		return d.TurnLeft()
	default:
		return d
	}
}

// Action is a move relative to the current heading.
type Action int

const (
	Straight Action = iota
	TurnRight
	TurnLeft
)

// NumActions is the length of the one-hot action vector.
const NumActions = 3

// ErrInvalidAction is returned for actions outside {Straight, TurnRight, TurnLeft}
// and for vectors that are not one-hot.
var ErrInvalidAction = errors.New("invalid action")

func (a Action) String() string {
	switch a {
	case Straight:
		return "straight"
	case TurnRight:
		return "right"
	case TurnLeft:
		return "left"
	default:
		return "invalid"
	}
}

// Valid reports whether a is one of the three relative moves.
func (a Action) Valid() bool {
	return a >= Straight && a <= TurnLeft
}

// OneHot encodes a as [straight, right, left].
func (a Action) OneHot() []float64 {
	v := make([]float64, NumActions)
	if a.Valid() {
		v[a] = 1
	}
	return v
}

// ActionFromOneHot decodes a [straight, right, left] vector. Exactly one
// component must be 1 and the others 0.
func ActionFromOneHot(v []float64) (Action, error) {
	if len(v) != NumActions {
		return 0, errors.Wrapf(ErrInvalidAction, "want %d components, got %d", NumActions, len(v))
	}
	idx := -1
	for i, x := range v {
		switch x {
		case 0:
		case 1:
			if idx >= 0 {
				return 0, errors.Wrapf(ErrInvalidAction, "more than one component set in %v", v)
			}
			idx = i
		default:
			return 0, errors.Wrapf(ErrInvalidAction, "component %d is %v", i, x)
		}
	}
	if idx < 0 {
		return 0, errors.Wrapf(ErrInvalidAction, "no component set in %v", v)
	}
	return Action(idx), nil
}
