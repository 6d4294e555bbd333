// cmd/tirereq/main.go
//
// This is the entry point for the tirereq CLI.
// Running `tirereq` from any directory opens the request TUI for that
// directory; state lives in ./.tirereq.
//
// Flow:
// 1. Create .tirereq and load config.yaml
// 2. Open the structured log file
// 3. Run the TUI and the config watcher side by side until the user quits

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kingrea/tirereq/internal/config"
	"github.com/kingrea/tirereq/internal/logging"
	"github.com/kingrea/tirereq/internal/request"
	"github.com/kingrea/tirereq/internal/tui"
)

var (
	flagRole     string
	flagDir      string
	flagDraft    string
	flagApprover string
)

var rootCmd = &cobra.Command{
	Use:   "tirereq",
	Short: "Tire replacement requests in the terminal",
	Long: `tirereq opens a terminal form for tire replacement requests.

Submitted requests are listed for review, where they can be edited or deleted.
Managers and the TTO get approval dashboards instead of the form.

	Examples:
	  tirereq
	  tirereq --draft van-42.yaml
	  tirereq --role manager --approver MGR-014`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagRole, "role", "user", "screen to open: user, manager or tto")
	rootCmd.Flags().StringVar(&flagDir, "dir", "", "project directory (default: current directory)")
	rootCmd.Flags().StringVar(&flagDraft, "draft", "", "YAML draft to prefill the form with")
	rootCmd.Flags().StringVar(&flagApprover, "approver", "", "employee id recorded on approval decisions")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var invalid *invalidDraftError
		if !errors.As(err, &invalid) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func projectDir() (string, error) {
	if dir := strings.TrimSpace(flagDir); dir != "" {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return cwd, nil
}

func runTUI(ctx context.Context) error {
	role, err := tui.ParseRole(flagRole)
	if err != nil {
		return err
	}
	dir, err := projectDir()
	if err != nil {
		return err
	}
	if err := config.InitDir(dir); err != nil {
		return fmt.Errorf("initializing %s: %w", config.Dir, err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogPath(), logging.Options{
		Level:  logging.LevelFromEnv(cfg.Project.Logging.Level),
		Prefix: "tirereq",
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []tui.AppOption{
		tui.WithRole(role),
		tui.WithLogger(logger.Logger),
		tui.WithContext(ctx),
	}
	if flagApprover != "" {
		opts = append(opts, tui.WithApprover(flagApprover))
	}
	if flagDraft != "" {
		draft, err := request.LoadDraftFile(flagDraft)
		if err != nil {
			return err
		}
		opts = append(opts, tui.WithDraft(draft))
	}

	app, err := tui.NewApp(cfg, opts...)
	if err != nil {
		return err
	}
	logger.Info("session started", "dir", dir, "role", role)

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			return nil
		}
		return err
	})
	g.Go(func() error {
		err := config.Watch(gctx, cfg.ConfigPath(), config.DefaultDebounce, func(project config.ProjectConfig, err error) {
			if err != nil {
				logger.Warn("config reload failed", "err", err)
			} else {
				logger.Info("config reloaded", "path", cfg.ConfigPath())
			}
			program.Send(tui.ConfigReloadedMsg{Project: project, Err: err})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			// Not fatal: the TUI keeps running with the config it started with.
			logger.Warn("config watcher stopped", "err", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	logger.Info("session ended")
	return nil
}
