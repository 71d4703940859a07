// Command btdemo loads a tree definition from disk, wires a handful of
// trivial named actions to its leaves, and ticks it until it finishes or
// reaches the configured tick ceiling (then it is preempted), logging
// action starts and terminations and the final state. It exists to exercise the bt package
// end to end, not to model any particular game.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	flag "github.com/spf13/pflag"

	"behaviortree/bt"
	"behaviortree/internal/btconfig"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, envFile string
	flag.StringVarP(&configPath, "config", "c", "", "path to a YAML run config")
	flag.StringVarP(&envFile, "env", "e", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := btconfig.Load(configPath, envFile)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	data, err := os.ReadFile(cfg.TreeFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.TreeFile, err)
	}
	def, err := bt.ParseDefinition(data)
	if err != nil {
		return err
	}

	builder := bt.NewBuilder(bt.NewDefaultRng(cfg.RandSeed)).BindActions(demoActions(log))

	mgr := bt.NewManager(log)
	if err := mgr.AddTreeFromDefinition(cfg.TreeName, def, builder); err != nil {
		return err
	}
	if _, err := mgr.StartTree(cfg.TreeName); err != nil {
		return err
	}

	tick := 0
	for {
		state, err := mgr.TreeState(cfg.TreeName)
		if err != nil {
			return err
		}
		if state != bt.StateRunning {
			log.Info("run complete", zap.Int("ticks", tick), zap.String("final_state", state.String()))
			return nil
		}

		mgr.Update(cfg.TickRate)
		tick++
		log.Debug("tick", zap.Int("tick", tick))
		if cfg.MaxTicks > 0 && tick >= cfg.MaxTicks {
			log.Warn("max ticks reached, preempting", zap.Int("max_ticks", cfg.MaxTicks))
			root, err := mgr.GetTree(cfg.TreeName)
			if err != nil {
				return err
			}
			root.Preempt()
			continue
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if err := zc.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zc.Build()
}

// demoActions wires a small set of named actions a sample tree can refer
// to: every action just logs its start and termination and finishes after
// a fixed number of ticks. No priority functions are bound, so every leaf
// reports priority 0 and a composite settles on its first child.
func demoActions(log *zap.Logger) map[string]*bt.Action {
	named := func(name string, ticks int) *bt.Action {
		count := 0
		return bt.NewAction(name,
			func() { log.Info("action started", zap.String("action", name)) },
			func(dt float32) bool {
				if dt == 0 {
					return false
				}
				count++
				return count >= ticks
			},
			func() { log.Info("action terminated", zap.String("action", name)) },
		)
	}
	return map[string]*bt.Action{
		"patrol": named("patrol", 5),
		"flee":   named("flee", 2),
		"attack": named("attack", 3),
		"idle":   named("idle", 1),
	}
}
