package training

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"snake-ai/ai"
	"snake-ai/game"
	"snake-ai/game/manager"
	"snake-ai/qlearning"

	"github.com/google/uuid"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
)

// Manager runs the training loop one step at a time and saves the model and
// stats along the way.
type Manager struct {
	cfg    Config
	game   *game.Game
	agent  *ai.Agent
	stats  *Stats
	runID  string
	logger *log.Logger
	au     aurora.Aurora

	gameStart time.Time
	played    int
}

// NewManager builds the game, the estimator and the agent for a run. sink
// may be nil for headless training.
func NewManager(cfg Config, sink game.RenderSink, logger *log.Logger) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	food := manager.NewFoodManager(cfg.Grid, cfg.Seed)
	food.SetMaxAttempts(cfg.FoodAttempts)
	opts := []game.Option{game.WithFoodManager(food)}
	if sink != nil {
		opts = append(opts, game.WithRenderSink(sink))
	}
	g, err := game.NewGame(cfg.Grid, opts...)
	if err != nil {
		return nil, err
	}

	est, err := cfg.NewEstimator()
	if err != nil {
		return nil, err
	}
	if cfg.LoadModel {
		if err := loadIfExists(est, cfg.ModelPath()); err != nil {
			return nil, err
		}
	}

	agentCfg := cfg.Agent
	agentCfg.Seed = cfg.Seed
	agent := ai.NewAgent(est, agentCfg)

	runID := cfg.ResumeRun
	if runID == "" {
		runID = uuid.New().String()
	}
	m := &Manager{
		cfg:       cfg,
		game:      g,
		agent:     agent,
		runID:     runID,
		logger:    logger,
		au:        aurora.NewAurora(cfg.Color),
		gameStart: time.Now(),
	}

	m.stats, err = LoadStats(m.StatsPath(), runID)
	if err != nil {
		return nil, err
	}
	// A resumed run keeps its exploration schedule.
	agent.GamesPlayed = m.stats.GamesPlayed()
	return m, nil
}

func loadIfExists(est qlearning.Estimator, path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "stat model %s", path)
	}
	return errors.Wrapf(est.Load(path), "load model %s", path)
}

func (m *Manager) RunID() string    { return m.runID }
func (m *Manager) Stats() *Stats    { return m.stats }
func (m *Manager) Agent() *ai.Agent { return m.agent }
func (m *Manager) Game() *game.Game { return m.game }

func (m *Manager) StatsPath() string {
	return filepath.Join(m.cfg.DataDir, "runs", m.runID, "stats.json")
}

// Run plays games until ctx is cancelled or Config.Games more games have
// been played. The model and stats are saved before returning.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Printf("Run %s: training %s model on %dx%d grid",
		m.au.Cyan(m.runID), m.cfg.Model, m.cfg.Grid.Columns(), m.cfg.Grid.Rows())

	for {
		select {
		case <-ctx.Done():
			return m.finish()
		default:
		}

		done, err := m.TrainStep()
		if err != nil {
			_ = m.finish()
			return err
		}
		if done && m.cfg.Games > 0 && m.played >= m.cfg.Games {
			return m.finish()
		}
	}
}

// TrainStep plays one step and learns from it. It reports whether the step
// ended a game.
func (m *Manager) TrainStep() (bool, error) {
	stateOld := m.game.StateVector()
	action, err := m.agent.GetAction(stateOld)
	if err != nil {
		return false, err
	}

	res, err := m.game.Step(action)
	if err != nil {
		return false, errors.Wrap(err, "step")
	}
	stateNew := m.game.StateVector()

	tr := qlearning.Transition{
		State:     stateOld,
		Action:    action.OneHot(),
		Reward:    float64(res.Reward),
		NextState: stateNew,
		Done:      res.Done,
	}
	if _, err := m.agent.TrainShort(tr); err != nil {
		return false, errors.Wrap(err, "train short memory")
	}
	m.agent.Remember(tr)

	if res.Done {
		return true, m.endGame(res.Score)
	}
	return false, nil
}

// endGame resets the board, replays the long memory and records the score.
func (m *Manager) endGame(score int) error {
	frames := m.game.FrameIteration()
	end := time.Now()

	m.game.Reset()
	m.agent.GamesPlayed++
	m.played++

	loss, err := m.agent.TrainLong()
	if err != nil {
		return errors.Wrap(err, "train long memory")
	}

	record := m.stats.AddGame(score, frames, m.gameStart, end)
	m.gameStart = time.Now()
	if record {
		if err := m.saveModel(); err != nil {
			return err
		}
	}

	scoreText := m.au.Yellow(score)
	if record {
		scoreText = m.au.Green(score).Bold()
	}
	m.logger.Printf("Game %d Score %v Record %d Mean %.2f Loss %.4f Memory %d",
		m.agent.GamesPlayed, scoreText, m.stats.Record, m.stats.MeanScore(), loss, m.agent.MemoryLen())

	if m.cfg.SaveEvery > 0 && m.agent.GamesPlayed%m.cfg.SaveEvery == 0 {
		if err := m.stats.SaveToFile(m.StatsPath()); err != nil {
			return err
		}
		if err := m.saveModel(); err != nil {
			return err
		}
		m.logger.Printf("Checkpoint saved at game %d", m.agent.GamesPlayed)
	}
	return nil
}

func (m *Manager) saveModel() error {
	if err := os.MkdirAll(m.cfg.ModelDir, 0755); err != nil {
		return errors.Wrap(err, "create model directory")
	}
	return errors.Wrap(m.agent.Estimator.Save(m.cfg.ModelPath()), "save model")
}

func (m *Manager) finish() error {
	if err := m.saveModel(); err != nil {
		m.logger.Printf("%s %v", m.au.Red("Error saving model:"), err)
		return err
	}
	if err := m.stats.SaveToFile(m.StatsPath()); err != nil {
		m.logger.Printf("%s %v", m.au.Red("Error saving stats:"), err)
		return err
	}
	m.logger.Printf("Run %s finished: %d games, record %d, mean %.2f",
		m.runID, m.stats.GamesPlayed(), m.stats.Record, m.stats.MeanScore())
	return nil
}
