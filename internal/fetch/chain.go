package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"brevity/internal/core"
	"brevity/internal/logger"
)

// ErrInsufficientContent marks a strategy whose output failed the length gate.
var ErrInsufficientContent = errors.New("insufficient content")

// Strategy is one way of extracting content. MinLength is the gate the
// trimmed body must exceed; zero only requires a non-empty body.
type Strategy struct {
	Name      string
	MinLength int
	Run       func(ctx context.Context) (*core.ExtractedContent, error)
}

// Chain runs strategies in order and returns the first acceptable result.
type Chain struct {
	Source  core.SourceKind
	Timeout time.Duration // per strategy; zero means no extra deadline
	Log     *slog.Logger
}

// Run folds over strategies. Every failure is recorded; when all fail the
// returned *core.AcquisitionError lists each attempt in order.
func (c Chain) Run(ctx context.Context, strategies []Strategy) (*core.ExtractedContent, error) {
	log := c.Log
	if log == nil {
		log = logger.Get()
	}

	attempts := make([]core.Attempt, 0, len(strategies))
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, core.Attempt{Strategy: s.Name, Err: err})
			break
		}

		content, err := c.runOne(ctx, s)
		if err == nil {
			content.Source = c.Source
			content.Strategy = s.Name
			if len(attempts) > 0 {
				log.Info("Acquired content via fallback strategy", "source", c.Source, "strategy", s.Name, "failed_attempts", len(attempts))
			}
			return content, nil
		}

		log.Debug("Acquisition strategy failed", "source", c.Source, "strategy", s.Name, "error", err.Error())
		attempts = append(attempts, core.Attempt{Strategy: s.Name, Err: err})
	}

	return nil, &core.AcquisitionError{Source: c.Source, Attempts: attempts}
}

func (c Chain) runOne(ctx context.Context, s Strategy) (*core.ExtractedContent, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	content, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, ErrInsufficientContent
	}

	content.Body = strings.TrimSpace(content.Body)
	n := utf8.RuneCountInString(content.Body)
	if n == 0 || n <= s.MinLength {
		return nil, fmt.Errorf("%w: %d characters, need more than %d", ErrInsufficientContent, n, s.MinLength)
	}
	return content, nil
}
