// Package agent provides the Assistant, DeskPilot's main orchestrator:
// parse the text, dispatch the command, then record statistics and history.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/flynn-ai/deskpilot/internal/classifier"
	"github.com/flynn-ai/deskpilot/internal/executor"
	"github.com/flynn-ai/deskpilot/internal/history"
	"github.com/flynn-ai/deskpilot/internal/intent"
	"github.com/flynn-ai/deskpilot/internal/stats"
)

// DefaultWorkers bounds batch concurrency when none is given.
const DefaultWorkers = 4

// Config configures the Assistant.
type Config struct {
	Parser     *classifier.Parser
	Dispatcher *executor.Dispatcher

	// History is optional; nil disables recording
	History *history.Store
	Stats   *stats.Collector
	Logger  *zap.Logger

	// OnClose runs when the assistant is closed, after history is closed
	OnClose func()
}

// Assistant turns natural-language commands into executed actions.
type Assistant struct {
	parser     *classifier.Parser
	dispatcher *executor.Dispatcher
	history    *history.Store
	stats      *stats.Collector
	logger     *zap.Logger
	onClose    func()
}

// Response is the outcome of one command.
type Response struct {
	Command intent.ParsedCommand `json:"command" yaml:"command"`
	Result  *executor.Result     `json:"result" yaml:"result"`
}

// NewAssistant creates an assistant. A nil parser or dispatcher gets the
// defaults.
func NewAssistant(cfg *Config) *Assistant {
	a := &Assistant{
		parser:     cfg.Parser,
		dispatcher: cfg.Dispatcher,
		history:    cfg.History,
		stats:      cfg.Stats,
		logger:     cfg.Logger,
		onClose:    cfg.OnClose,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	if a.parser == nil {
		a.parser = classifier.NewParser(&classifier.Config{Logger: a.logger})
	}
	if a.dispatcher == nil {
		a.dispatcher = executor.NewDispatcher(executor.Config{Logger: a.logger})
	}
	if a.stats == nil {
		a.stats = stats.NewCollector()
	}
	return a
}

// Parse classifies text without executing it.
func (a *Assistant) Parse(text string) intent.ParsedCommand {
	return a.parser.Parse(text)
}

// Dispatcher returns the dispatcher.
func (a *Assistant) Dispatcher() *executor.Dispatcher {
	return a.dispatcher
}

// Process parses and executes text. History failures are logged, never
// returned.
func (a *Assistant) Process(ctx context.Context, text string) *Response {
	cmd := a.parser.Parse(text)
	result := a.dispatcher.Execute(ctx, cmd)

	a.stats.RecordCommand(cmd.Intent, result.Duration(), !result.Success)
	a.record(ctx, cmd, result)

	return &Response{Command: cmd, Result: result}
}

func (a *Assistant) record(ctx context.Context, cmd intent.ParsedCommand, result *executor.Result) {
	if a.history == nil {
		return
	}
	entry := history.NewEntry(cmd, result.Message, result.Code, result.Duration())
	if err := a.history.Record(ctx, entry); err != nil {
		a.logger.Warn("failed to record history", zap.String("intent", string(cmd.Intent)), zap.Error(err))
	}
}

// ProcessBatch runs each non-blank line as a command on up to workers
// goroutines. Lines starting with '#' are comments. Responses keep input
// order; the error is non-nil only when ctx ends first.
func (a *Assistant) ProcessBatch(ctx context.Context, lines []string, workers int) ([]*Response, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	var commands []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}

	start := time.Now()
	responses := make([]*Response, len(commands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range commands {
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			responses[i] = a.Process(gctx, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return responses, fmt.Errorf("batch interrupted: %w", err)
	}

	a.logger.Info("batch complete",
		zap.Int("commands", len(commands)),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(start)),
	)
	return responses, nil
}

// Stats returns session statistics.
func (a *Assistant) Stats() *stats.Stats {
	return a.stats.Collect()
}

// Recent returns the latest history entries.
func (a *Assistant) Recent(ctx context.Context, limit int) ([]history.Entry, error) {
	if a.history == nil {
		return nil, fmt.Errorf("history is disabled")
	}
	return a.history.Recent(ctx, limit)
}

// Close releases the history store and any background services.
func (a *Assistant) Close() error {
	var err error
	if a.history != nil {
		err = a.history.Close()
	}
	if a.onClose != nil {
		a.onClose()
	}
	return err
}
