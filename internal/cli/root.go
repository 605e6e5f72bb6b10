// Package cli holds the filephile command tree
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"filephile/internal/config"
	"filephile/internal/dispatch"
	"filephile/internal/eventbus"
	"filephile/internal/fsys"
	"filephile/internal/log"
	"filephile/internal/nav"
	"filephile/internal/operation"
	"filephile/internal/ui"
)

// Version is reported by --version
var Version = "dev"

// Execute runs the root command with the process arguments
func Execute() error {
	return NewRootCmd().Execute()
}

type rootOptions struct {
	configPath string
	logFile    string
	debug      bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "filephile [dir]",
		Short:         "A keyboard driven terminal file manager",
		Long:          `filephile browses a directory with modal, vim-like key bindings that are configured in a TOML file.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runBrowser(cmd.Context(), opts, dir)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "log file (default is "+defaultLogPath()+")")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log at debug level")

	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newKeysCmd(opts))
	return rootCmd
}

func defaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "filephile", "filephile.log")
}

func setupLogging(opts *rootOptions) {
	path := opts.logFile
	if path == "" {
		path = defaultLogPath()
	}
	log.Configure(log.WithFile(path), log.WithDebug(opts.debug))
}

func runBrowser(ctx context.Context, opts *rootOptions, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	bus := eventbus.New()
	defer bus.Close()

	cfg, err := config.NewService(opts.configPath, bus).Load()
	if err != nil {
		return err
	}
	table, err := config.BuildTable(cfg)
	if err != nil {
		return err
	}

	terminal := ui.NewTerminal(nil)
	provider := fsys.NewOS()
	exec := operation.NewExecutor(provider, bus, terminal, cfg.ExecutorOptions())
	eng := dispatch.New(nav.New(provider, cfg.NavOptions()), table, exec, dispatch.Options{ConfirmQuit: cfg.ConfirmQuit})
	startup, err := eng.Start(absDir)
	if err != nil {
		return err
	}

	modelOpts := []ui.Option{ui.WithTerminal(terminal)}
	if cfg.AutoRefresh {
		watcher, err := fsys.NewWatcher(bus, fsys.DefaultDebounce)
		if err != nil {
			log.LogWithError(err).Warn("auto refresh disabled")
		} else {
			defer watcher.Stop()
			modelOpts = append(modelOpts, ui.WithWatcher(watcher))
		}
	}

	model := ui.NewModel(eng, exec, cfg, startup, modelOpts...)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	// forward the events the UI folds into the engine
	for _, t := range []eventbus.EventType{
		eventbus.EventOperationProgress,
		eventbus.EventDirectoryChanged,
		eventbus.EventError,
	} {
		unsubscribe := bus.Subscribe(t, func(e eventbus.DomainEvent) {
			p.Send(ui.EventMsg{Event: e})
		})
		defer unsubscribe()
	}

	bus.Publish(eventbus.AppReadyEvent{Dir: absDir})
	log.LogWithFields(log.F("dir", absDir), log.F("bindings", len(cfg.Bindings))).Info("starting UI")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running UI: %w", err)
	}
	log.Info("UI exited normally")
	return nil
}
