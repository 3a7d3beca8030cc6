package qlearning

import "gonum.org/v1/gonum/floats"

// Transition is one step of experience. Action is the one-hot vector that
// was played.
type Transition struct {
	State     []float64
	Action    []float64
	Reward    float64
	NextState []float64
	Done      bool
}

// Targets builds the regression targets for a batch. pred and nextQ hold
// the Q values of the batch's states and next states, row-major with
// OutputActions columns. The target equals pred except at the played action,
// which becomes reward for terminal steps and reward + gamma*max(Q(next))
// otherwise.
func Targets(pred, nextQ []float64, batch []Transition, gamma float64) []float64 {
	target := make([]float64, len(pred))
	copy(target, pred)

	for i, t := range batch {
		qNew := t.Reward
		if !t.Done {
			row := nextQ[i*OutputActions : (i+1)*OutputActions]
			qNew = t.Reward + gamma*floats.Max(row)
		}
		target[i*OutputActions+floats.MaxIdx(t.Action)] = qNew
	}
	return target
}

// MeanSquaredError averages the squared difference over every element.
func MeanSquaredError(pred, target []float64) float64 {
	if len(pred) == 0 {
		return 0
	}
	diff := make([]float64, len(pred))
	floats.SubTo(diff, pred, target)
	return floats.Dot(diff, diff) / float64(len(diff))
}
