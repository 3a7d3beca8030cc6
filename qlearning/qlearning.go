package qlearning

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Estimator approximates Q(state, .) for the three relative actions.
type Estimator interface {
	// Predict returns OutputActions Q values for state.
	Predict(state []float64) ([]float64, error)
	// TrainStep fits the batch towards its Bellman targets and returns the
	// loss measured before the update.
	TrainStep(batch []Transition) (float64, error)
	Save(filename string) error
	Load(filename string) error
}

// QTable maps an encoded state to its Q values.
type QTable map[string][]float64

// TableTrainer is a tabular Estimator for binary feature vectors.
type TableTrainer struct {
	QTable       QTable
	LearningRate float64
	Gamma        float64
}

func NewTableTrainer(learningRate, gamma float64) *TableTrainer {
	return &TableTrainer{
		QTable:       make(QTable),
		LearningRate: learningRate,
		Gamma:        gamma,
	}
}

func stateKey(state []float64) string {
	var b strings.Builder
	b.Grow(len(state))
	for _, v := range state {
		if v > 0.5 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Predict returns zeros for unseen states without storing them.
func (t *TableTrainer) Predict(state []float64) ([]float64, error) {
	out := make([]float64, OutputActions)
	copy(out, t.QTable[stateKey(state)])
	return out, nil
}

// TrainStep moves each played entry a LearningRate fraction towards its
// target.
func (t *TableTrainer) TrainStep(batch []Transition) (float64, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	pred := make([]float64, 0, len(batch)*OutputActions)
	nextQ := make([]float64, 0, len(batch)*OutputActions)
	for _, tr := range batch {
		if len(tr.Action) != OutputActions {
			return 0, errors.Errorf("action has %d components, want %d", len(tr.Action), OutputActions)
		}
		p, _ := t.Predict(tr.State)
		n, _ := t.Predict(tr.NextState)
		pred = append(pred, p...)
		nextQ = append(nextQ, n...)
	}

	target := Targets(pred, nextQ, batch, t.Gamma)
	loss := MeanSquaredError(pred, target)

	for i, tr := range batch {
		key := stateKey(tr.State)
		row, ok := t.QTable[key]
		if !ok {
			row = make([]float64, OutputActions)
			t.QTable[key] = row
		}
		for a := 0; a < OutputActions; a++ {
			want := target[i*OutputActions+a]
			row[a] += t.LearningRate * (want - pred[i*OutputActions+a])
		}
	}
	return loss, nil
}

// tableState is the on-disk form of a TableTrainer.
type tableState struct {
	QTable       QTable  `json:"qtable"`
	LearningRate float64 `json:"learning_rate"`
	Gamma        float64 `json:"gamma"`
}

func (t *TableTrainer) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return errors.Wrap(err, "create model directory")
	}
	data, err := json.MarshalIndent(tableState{
		QTable:       t.QTable,
		LearningRate: t.LearningRate,
		Gamma:        t.Gamma,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal q table")
	}
	return errors.Wrap(os.WriteFile(filename, data, 0644), "write q table")
}

// Load replaces the table with the file contents. Hyperparameters stay as
// configured. Rows without exactly OutputActions values are rejected and
// leave the current table untouched.
func (t *TableTrainer) Load(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrap(err, "read q table")
	}
	var state tableState
	if err := json.Unmarshal(data, &state); err != nil {
		return errors.Wrap(err, "unmarshal q table")
	}
	if state.QTable == nil {
		state.QTable = make(QTable)
	}
	for key, row := range state.QTable {
		if len(row) != OutputActions {
			return errors.Errorf("q table row %q has %d values, want %d", key, len(row), OutputActions)
		}
	}
	t.QTable = state.QTable
	return nil
}
