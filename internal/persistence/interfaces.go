// Package persistence stores analysis results per user.
package persistence

import (
	"context"
	"errors"

	"brevity/internal/core"
)

// ErrNotFound is returned when a summary does not exist for the user.
var ErrNotFound = errors.New("summary not found")

// ListOptions holds pagination for list queries
type ListOptions struct {
	Limit  int
	Offset int
}

// Pagination bounds applied by the repository.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	RecentActivity   = 5
)

// SummaryRepository handles analysis result persistence operations.
// Every call is scoped to the owning user.
type SummaryRepository interface {
	// Create inserts a new result for the user
	Create(ctx context.Context, userID string, result *core.AnalysisResult) error

	// Get retrieves one of the user's results by ID
	Get(ctx context.Context, userID, id string) (*core.AnalysisResult, error)

	// ListByUser retrieves the user's results, newest first
	ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.AnalysisResult, error)

	// Delete removes one of the user's results
	Delete(ctx context.Context, userID, id string) error

	// UsageStats counts the user's results by source kind and returns recent activity
	UsageStats(ctx context.Context, userID string) (*core.UsageStats, error)
}

// Normalized applies the default and maximum limit and clamps the offset.
func (o ListOptions) Normalized() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
