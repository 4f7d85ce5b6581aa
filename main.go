package main

import (
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/droplets/config"
	"github.com/pthm-cable/droplets/game"
	"github.com/pthm-cable/droplets/physics"
	"github.com/pthm-cable/droplets/telemetry"
	"github.com/pthm-cable/droplets/tui"
)

var (
	configPath     string
	backend        string
	outputDir      string
	logStats       bool
	maxTicks       int
	stepsPerUpdate int

	// headless only
	useTUI     bool
	showReport bool
)

func main() {
	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:           "droplets",
		Short:         "particles falling into a walled container, draggable with the mouse",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(configPath); err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if backend != "" {
				cfg := config.Cfg()
				cfg.Physics.Backend = backend
				if err := cfg.Finalize(); err != nil {
					return err
				}
			}
			return nil
		},
		RunE: runWindow,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flags.StringVar(&backend, "backend", "", fmt.Sprintf("Physics backend %v (empty = use config)", physics.Backends()))
	flags.StringVar(&outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	flags.BoolVar(&logStats, "log-stats", false, "Output stats via slog")
	flags.IntVar(&maxTicks, "max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	flags.IntVar(&stepsPerUpdate, "steps-per-update", 1, "Engine steps per update call")

	headlessCmd := &cobra.Command{
		Use:   "headless",
		Short: "run the simulation without a window",
		RunE:  runHeadless,
	}
	headlessCmd.Flags().IntVar(&maxTicks, "ticks", 0, "Alias for --max-ticks")
	headlessCmd.Flags().BoolVar(&useTUI, "tui", false, "Show a live terminal monitor")
	headlessCmd.Flags().BoolVar(&showReport, "report", false, "Print a run report when finished")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Cfg().Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	rootCmd.AddCommand(headlessCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("droplets failed", "error", err)
		os.Exit(1)
	}
}

func gameOptions(headless bool) game.Options {
	return game.Options{
		LogStats:       logStats,
		OutputDir:      outputDir,
		Headless:       headless,
		StepsPerUpdate: stepsPerUpdate,
	}
}

// runWindow opens the raylib window and runs the interactive demo.
func runWindow(cmd *cobra.Command, args []string) error {
	cfg := config.Cfg()

	if cfg.Screen.Resizable {
		rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi)
	} else {
		rl.SetConfigFlags(rl.FlagWindowHighdpi)
	}
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(gameOptions(false))
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Unload(); err != nil {
			slog.Error("failed to unload", "error", err)
		}
	}()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}
	return nil
}

// runHeadless steps the simulation without raylib.
func runHeadless(cmd *cobra.Command, args []string) error {
	g, err := game.NewGameWithOptions(gameOptions(true))
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Unload(); err != nil {
			slog.Error("failed to unload", "error", err)
		}
	}()

	if useTUI {
		// The monitor owns the terminal; keep JSON logs out of it
		slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn})))

		windows, err := tui.RunMonitor(g, int32(maxTicks))
		if err != nil {
			return err
		}
		if showReport {
			fmt.Fprintln(cmd.OutOrStdout(), tui.Report(windows))
		}
		return nil
	}

	if maxTicks <= 0 && showReport {
		return fmt.Errorf("--report needs --ticks or --max-ticks")
	}

	slog.Info("starting headless simulation",
		"backend", g.Simulation().Engine().Name(),
		"particles", g.Simulation().ParticleCount(),
		"max_ticks", maxTicks,
		"steps_per_update", stepsPerUpdate,
	)

	var windows []telemetry.WindowStats
	g.Simulation().SetStatsCallback(func(s telemetry.WindowStats) {
		windows = append(windows, s)
	})

	for {
		g.UpdateHeadless()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}

	if showReport {
		fmt.Fprintln(cmd.OutOrStdout(), tui.Report(windows))
	}
	return nil
}
