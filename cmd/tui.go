package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/desertthunder/mrx/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogFile = "./tmp/mrx-tui.log"

// TUI launches the interactive terminal UI over lists and notifications.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	if r.config.Log.File == "" {
		closer, err := shared.LogToFile(r.logger, tuiLogFile)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer closer.Close()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(ctx, r.engine)
	unsubscribe := r.store.Subscribe(model.Listener())
	defer unsubscribe()

	if cmd.Bool("live") {
		manager := r.notifier()
		if err := manager.Connect(ctx); err != nil {
			r.logger.Warn("live notifications unavailable", "error", err)
		} else {
			defer manager.Close()
		}
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
