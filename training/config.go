package training

import (
	"path/filepath"

	"snake-ai/ai"
	"snake-ai/game"
	"snake-ai/game/manager"
	"snake-ai/game/types"
	"snake-ai/qlearning"

	"github.com/pkg/errors"
)

// Estimator kinds accepted by Config.Model.
const (
	ModelDQN   = "dqn"
	ModelTable = "table"
)

// Config is everything a training run needs.
type Config struct {
	Grid types.Grid
	// Games stops the run after this many games. Zero runs until the
	// context is cancelled.
	Games int

	Model        string
	ModelDir     string
	LoadModel    bool
	LearningRate float64
	Gamma        float64
	HiddenSize   int

	Agent ai.Config

	DataDir string
	// ResumeRun continues the stats of an earlier run id instead of starting
	// a new one.
	ResumeRun string
	SaveEvery int

	Seed uint64
	// FoodAttempts bounds random food draws before the free-cell scan.
	FoodAttempts int
	Color        bool
}

func DefaultConfig() Config {
	return Config{
		Grid:         types.DefaultGrid(),
		Model:        ModelDQN,
		ModelDir:     "model",
		LearningRate: qlearning.LearningRate,
		Gamma:        qlearning.Gamma,
		HiddenSize:   qlearning.HiddenLayerSize,
		Agent:        ai.DefaultConfig(),
		DataDir:      "data",
		SaveEvery:    100,
		Seed:         1,
		FoodAttempts: manager.DefaultMaxAttempts,
		Color:        true,
	}
}

func (c Config) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	switch c.Model {
	case ModelDQN, ModelTable:
	default:
		return errors.Errorf("unknown model %q (want %q or %q)", c.Model, ModelDQN, ModelTable)
	}
	if c.Games < 0 {
		return errors.Errorf("games must not be negative, got %d", c.Games)
	}
	if c.LearningRate <= 0 {
		return errors.Errorf("learning rate must be positive, got %v", c.LearningRate)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return errors.Errorf("gamma must be in [0,1], got %v", c.Gamma)
	}
	if c.Model == ModelDQN && c.HiddenSize <= 0 {
		return errors.Errorf("hidden size must be positive, got %d", c.HiddenSize)
	}
	if c.Agent.BatchSize <= 0 || c.Agent.MaxMemory <= 0 {
		return errors.Errorf("batch size and memory must be positive, got %d and %d", c.Agent.BatchSize, c.Agent.MaxMemory)
	}
	if c.FoodAttempts < 0 {
		return errors.Errorf("food attempts must not be negative, got %d", c.FoodAttempts)
	}
	if c.Agent.ExplorationRange < 0 {
		return errors.Errorf("exploration range must not be negative, got %d", c.Agent.ExplorationRange)
	}
	return nil
}

// ModelPath is where the estimator is saved and loaded.
func (c Config) ModelPath() string {
	if c.Model == ModelTable {
		return filepath.Join(c.ModelDir, "qtable.json")
	}
	return filepath.Join(c.ModelDir, "model.gob")
}

// NewEstimator builds the configured Q estimator.
func (c Config) NewEstimator() (qlearning.Estimator, error) {
	switch c.Model {
	case ModelTable:
		return qlearning.NewTableTrainer(c.LearningRate, c.Gamma), nil
	case ModelDQN:
		net := qlearning.NewLinearQNet(game.StateSize, c.HiddenSize, types.NumActions)
		return qlearning.NewQTrainer(net, c.LearningRate, c.Gamma, c.Agent.BatchSize), nil
	default:
		return nil, errors.Errorf("unknown model %q", c.Model)
	}
}
