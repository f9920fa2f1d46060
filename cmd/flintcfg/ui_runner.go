package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"flintcfg/internal/driver"
	"flintcfg/internal/ui"
)

type resolveOutcome struct {
	results []driver.ResolveResult
	err     error
}

func runResolveWithUI(ctx context.Context, title string, paths []string, opts driver.ResolveOptions) ([]driver.ResolveResult, error) {
	files, err := driver.CollectSourceFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		// let the driver produce its usual error, no point starting a TUI
		return driver.ResolvePaths(ctx, paths, opts)
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan resolveOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.ResolvePaths(ctx, files, optsCopy)
		outcomeCh <- resolveOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
