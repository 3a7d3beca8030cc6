package ai

import (
	"snake-ai/game/types"
	"snake-ai/qlearning"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Config holds the agent's memory and exploration parameters.
type Config struct {
	MaxMemory int
	BatchSize int
	// ExplorationGames is how many games the agent keeps making random
	// moves for; the chance of a random move starts at
	// ExplorationGames/ExplorationRange and falls linearly to zero.
	ExplorationGames int
	ExplorationRange int
	Seed             uint64
}

func DefaultConfig() Config {
	return Config{
		MaxMemory:        100_000,
		BatchSize:        1000,
		ExplorationGames: 80,
		ExplorationRange: 200,
		Seed:             1,
	}
}

// Agent plays with an epsilon-greedy policy over an Estimator and learns
// from every step plus a replayed batch at the end of each game.
type Agent struct {
	Estimator   qlearning.Estimator
	GamesPlayed int

	cfg    Config
	memory *qlearning.ReplayBuffer
	rng    *rand.Rand
}

func NewAgent(est qlearning.Estimator, cfg Config) *Agent {
	return &Agent{
		Estimator: est,
		cfg:       cfg,
		memory:    qlearning.NewReplayBuffer(cfg.MaxMemory, cfg.Seed),
		rng:       rand.New(rand.NewSource(cfg.Seed + 1)),
	}
}

// Epsilon is the exploration threshold for the current game. It goes
// negative once exploration is over.
func (a *Agent) Epsilon() int {
	return a.cfg.ExplorationGames - a.GamesPlayed
}

// GetAction picks a random move with probability Epsilon/(ExplorationRange+1),
// otherwise the move with the highest predicted Q value.
func (a *Agent) GetAction(state []float64) (types.Action, error) {
	if a.rng.Intn(a.cfg.ExplorationRange+1) < a.Epsilon() {
		return types.Action(a.rng.Intn(types.NumActions)), nil
	}

	prediction, err := a.Estimator.Predict(state)
	if err != nil {
		return types.Straight, errors.Wrap(err, "predict")
	}
	return types.Action(floats.MaxIdx(prediction)), nil
}

// Remember stores a transition for replay.
func (a *Agent) Remember(t qlearning.Transition) {
	a.memory.Add(t)
}

func (a *Agent) MemoryLen() int {
	return a.memory.Len()
}

// TrainShort learns from the step that was just played.
func (a *Agent) TrainShort(t qlearning.Transition) (float64, error) {
	return a.Estimator.TrainStep([]qlearning.Transition{t})
}

// TrainLong replays up to BatchSize remembered transitions.
func (a *Agent) TrainLong() (float64, error) {
	if a.memory.Len() == 0 {
		return 0, nil
	}
	return a.Estimator.TrainStep(a.memory.Sample(a.cfg.BatchSize))
}
