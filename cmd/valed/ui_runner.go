package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"valed/internal/lint"
	"valed/internal/ui"
)

type batchOutcome struct {
	summary *lint.Summary
	err     error
}

// runBatchWithUI drives Workspace.Run behind a Bubble Tea progress view.
// The run itself happens on a goroutine; closing the event channel tells the
// view the run is over.
func runBatchWithUI(ctx context.Context, title string, roots []string, ws *lint.Workspace) (*lint.Summary, error) {
	events := make(chan lint.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		ws.Progress = lint.ProgressFunc(func(ev lint.Event) {
			events <- ev
		})
		summary, err := ws.Run(ctx, roots)
		outcomeCh <- batchOutcome{summary: summary, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, roots, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.summary, uiErr
	}
	return outcome.summary, outcome.err
}
