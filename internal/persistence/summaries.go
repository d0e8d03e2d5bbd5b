package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"brevity/internal/core"
)

type summaryRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	Title       string    `db:"title"`
	URL         string    `db:"url"`
	RawContent  string    `db:"raw_content"`
	Analysis    string    `db:"analysis"`
	EmailDraft  string    `db:"email_draft"`
	SocialShare string    `db:"social_share"`
	SourceKind  string    `db:"source_kind"`
	ContentType string    `db:"content_type"`
	Truncated   bool      `db:"truncated"`
	Generated   string    `db:"generated"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r summaryRow) result() core.AnalysisResult {
	var generated []string
	if r.Generated != "" {
		generated = strings.Split(r.Generated, ",")
	}
	return core.AnalysisResult{
		ID:           r.ID,
		Title:        r.Title,
		URL:          r.URL,
		RawContent:   r.RawContent,
		AnalysisText: r.Analysis,
		EmailDraft:   r.EmailDraft,
		SocialShare:  r.SocialShare,
		SourceKind:   core.SourceKind(r.SourceKind),
		ContentType:  r.ContentType,
		Truncated:    r.Truncated,
		Generated:    generated,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

const summaryColumns = `id, user_id, title, url, raw_content, analysis, email_draft, social_share,
	source_kind, content_type, truncated, generated, created_at`

type summaryRepo struct {
	db *sqlx.DB
}

// NewSummaryRepository creates a SummaryRepository on db. Queries are
// rebound to the driver's placeholder style.
func NewSummaryRepository(db *sqlx.DB) SummaryRepository {
	return &summaryRepo{db: db}
}

func (r *summaryRepo) Create(ctx context.Context, userID string, result *core.AnalysisResult) error {
	if result == nil {
		return errors.New("result is nil")
	}
	if !result.SourceKind.Valid() {
		return fmt.Errorf("unknown source kind %q", result.SourceKind)
	}
	query := r.db.Rebind(`INSERT INTO summaries (` + summaryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		result.ID,
		userID,
		result.Title,
		result.URL,
		result.RawContent,
		result.AnalysisText,
		result.EmailDraft,
		result.SocialShare,
		string(result.SourceKind),
		result.ContentType,
		result.Truncated,
		strings.Join(result.Generated, ","),
		result.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	return nil
}

func (r *summaryRepo) Get(ctx context.Context, userID, id string) (*core.AnalysisResult, error) {
	query := r.db.Rebind(`SELECT ` + summaryColumns + ` FROM summaries WHERE id = ? AND user_id = ?`)

	var row summaryRow
	if err := r.db.GetContext(ctx, &row, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}
	result := row.result()
	return &result, nil
}

func (r *summaryRepo) ListByUser(ctx context.Context, userID string, opts ListOptions) ([]core.AnalysisResult, error) {
	opts = opts.Normalized()
	query := r.db.Rebind(`SELECT ` + summaryColumns + ` FROM summaries
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`)

	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, opts.Limit, opts.Offset); err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}

	results := make([]core.AnalysisResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.result())
	}
	return results, nil
}

func (r *summaryRepo) Delete(ctx context.Context, userID, id string) error {
	query := r.db.Rebind(`DELETE FROM summaries WHERE id = ? AND user_id = ?`)

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete summary: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *summaryRepo) UsageStats(ctx context.Context, userID string) (*core.UsageStats, error) {
	countQuery := r.db.Rebind(`SELECT source_kind, COUNT(*) AS total FROM summaries
		WHERE user_id = ? GROUP BY source_kind`)

	var counts []struct {
		SourceKind string `db:"source_kind"`
		Total      int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &counts, countQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to count summaries: %w", err)
	}

	stats := &core.UsageStats{BySource: make(map[core.SourceKind]int, len(counts))}
	for _, c := range counts {
		stats.BySource[core.SourceKind(c.SourceKind)] = c.Total
		stats.TotalSummaries += c.Total
	}

	recentQuery := r.db.Rebind(`SELECT id, title, source_kind, created_at FROM summaries
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`)

	var recent []struct {
		ID         string    `db:"id"`
		Title      string    `db:"title"`
		SourceKind string    `db:"source_kind"`
		CreatedAt  time.Time `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &recent, recentQuery, userID, RecentActivity); err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}

	stats.Recent = make([]core.RecentActivity, 0, len(recent))
	for _, a := range recent {
		stats.Recent = append(stats.Recent, core.RecentActivity{
			ID:         a.ID,
			Title:      a.Title,
			SourceKind: core.SourceKind(a.SourceKind),
			CreatedAt:  a.CreatedAt.UTC(),
		})
	}
	return stats, nil
}
