package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"snake-ai/game"
	"snake-ai/training"
	"snake-ai/ui"

	"github.com/pkg/errors"
)

func init() {
	// raylib must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	cfg := training.DefaultConfig()

	render := flag.String("render", "window", "Renderer: none, window or terminal")
	speed := flag.Int("speed", 40, "Frames per second when rendering (0 = unthrottled)")
	flag.IntVar(&cfg.Games, "games", 0, "Stop after this many games (0 = run until interrupted)")
	flag.IntVar(&cfg.Grid.Width, "width", cfg.Grid.Width, "Board width in pixels")
	flag.IntVar(&cfg.Grid.Height, "height", cfg.Grid.Height, "Board height in pixels")
	flag.IntVar(&cfg.Grid.BlockSize, "block", cfg.Grid.BlockSize, "Block size in pixels")
	flag.StringVar(&cfg.Model, "model", cfg.Model, "Estimator: dqn or table")
	flag.StringVar(&cfg.ModelDir, "model-dir", cfg.ModelDir, "Directory for the saved model")
	flag.BoolVar(&cfg.LoadModel, "load", true, "Resume from the saved model if present")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.Float64Var(&cfg.LearningRate, "lr", cfg.LearningRate, "Learning rate")
	flag.Float64Var(&cfg.Gamma, "gamma", cfg.Gamma, "Discount factor")
	flag.IntVar(&cfg.HiddenSize, "hidden", cfg.HiddenSize, "Hidden layer size")
	flag.IntVar(&cfg.Agent.BatchSize, "batch", cfg.Agent.BatchSize, "Replay batch size")
	flag.IntVar(&cfg.Agent.MaxMemory, "memory", cfg.Agent.MaxMemory, "Replay memory size")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory for run statistics")
	flag.StringVar(&cfg.ResumeRun, "resume", "", "Run id whose stats to continue")
	flag.IntVar(&cfg.FoodAttempts, "food-attempts", cfg.FoodAttempts, "Random food draws before scanning for a free cell")
	flag.IntVar(&cfg.SaveEvery, "save-every", cfg.SaveEvery, "Checkpoint every N games (0 = only on exit)")
	flag.Parse()

	if err := run(cfg, *render, *speed); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(cfg training.Config, render string, speed int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	var sink game.RenderSink
	switch render {
	case "none":
	case "window":
		w := ui.NewWindow(cfg.Grid, speed, stop)
		defer w.Close()
		sink = w
	case "terminal":
		term, err := ui.NewTerminal(speed, stop)
		if err != nil {
			return err
		}
		defer term.Close()
		sink = term

		// The board owns the terminal, so logs go to a file.
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return errors.Wrap(err, "create data directory")
		}
		f, err := os.OpenFile(filepath.Join(cfg.DataDir, "snake.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return errors.Wrap(err, "open log file")
		}
		defer f.Close()
		logger.SetOutput(f)
		cfg.Color = false
	default:
		return errors.Errorf("unknown renderer %q (want none, window or terminal)", render)
	}

	manager, err := training.NewManager(cfg, sink, logger)
	if err != nil {
		return err
	}
	return manager.Run(ctx)
}
