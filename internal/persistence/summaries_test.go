package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brevity/internal/core"
	"brevity/internal/logger"
)

var summaryCols = []string{
	"id", "user_id", "title", "url", "raw_content", "analysis", "email_draft", "social_share",
	"source_kind", "content_type", "truncated", "generated", "created_at",
}

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewDB(sqlx.NewDb(mockDB, "postgres")), mock
}

func TestSummaryCreate(t *testing.T) {
	db, mock := newMockDB(t)

	result := &core.AnalysisResult{
		ID:           "sum-1",
		Title:        "Budget Cuts",
		URL:          "https://news.example.com/budget",
		AnalysisText: "Thematic Analysis\n\nFunding\n• a point",
		EmailDraft:   "Subject: Budget Cuts",
		SocialShare:  "Post #Budget",
		SourceKind:   core.SourceGenericWeb,
		ContentType:  "news",
		Generated:    []string{"email_draft", "social_share"},
		CreatedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(`INSERT INTO summaries \(id, user_id`).
		WithArgs("sum-1", "user-1", "Budget Cuts", "https://news.example.com/budget", "",
			result.AnalysisText, result.EmailDraft, result.SocialShare,
			"generic_web", "news", false, "email_draft,social_share", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, db.Summaries().Create(context.Background(), "user-1", result))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCreateNil(t *testing.T) {
	db, _ := newMockDB(t)
	assert.Error(t, db.Summaries().Create(context.Background(), "user-1", nil))
}

func TestSummaryCreateUnknownSourceKind(t *testing.T) {
	db, mock := newMockDB(t)

	err := db.Summaries().Create(context.Background(), "user-1", &core.AnalysisResult{ID: "sum-1", SourceKind: "fax"})
	assert.ErrorContains(t, err, `unknown source kind "fax"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryGet(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM summaries WHERE id = \$1 AND user_id = \$2`).
		WithArgs("sum-1", "user-1").
		WillReturnRows(sqlmock.NewRows(summaryCols).AddRow(
			"sum-1", "user-1", "Pasted", "", "some text", "Thematic Analysis", "Subject: x", "Post",
			"raw_text", "article", true, "social_share", created,
		))

	got, err := db.Summaries().Get(context.Background(), "user-1", "sum-1")
	require.NoError(t, err)
	assert.Equal(t, "sum-1", got.ID)
	assert.Equal(t, "some text", got.RawContent)
	assert.Equal(t, core.SourceRawText, got.SourceKind)
	assert.True(t, got.Truncated)
	assert.Equal(t, []string{"social_share"}, got.Generated)
	assert.Equal(t, created, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM summaries WHERE id = \$1 AND user_id = \$2`).
		WithArgs("missing", "user-1").
		WillReturnRows(sqlmock.NewRows(summaryCols))

	_, err := db.Summaries().Get(context.Background(), "user-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummaryListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE user_id = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("user-1", int64(DefaultListLimit), int64(0)).
		WillReturnRows(sqlmock.NewRows(summaryCols).
			AddRow("b", "user-1", "Second", "https://x.example.com", "", "A", "E", "S", "generic_web", "article", false, "", created.Add(time.Hour)).
			AddRow("a", "user-1", "First", "https://y.example.com", "", "A", "E", "S", "video_platform", "video", false, "", created))

	got, err := db.Summaries().ListByUser(context.Background(), "user-1", ListOptions{Limit: 0, Offset: -4})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Nil(t, got[0].Generated)
	assert.Equal(t, core.SourceVideoPlatform, got[1].SourceKind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListOptionsNormalized(t *testing.T) {
	assert.Equal(t, ListOptions{Limit: DefaultListLimit}, ListOptions{}.Normalized())
	assert.Equal(t, ListOptions{Limit: MaxListLimit, Offset: 10}, ListOptions{Limit: 500, Offset: 10}.Normalized())
	assert.Equal(t, ListOptions{Limit: 7}, ListOptions{Limit: 7, Offset: -1}.Normalized())
}

func TestSummaryDelete(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM summaries WHERE id = \$1 AND user_id = \$2`).
		WithArgs("sum-1", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM summaries WHERE id = \$1 AND user_id = \$2`).
		WithArgs("sum-1", "user-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.Summaries().Delete(context.Background(), "user-1", "sum-1"))
	assert.ErrorIs(t, db.Summaries().Delete(context.Background(), "user-2", "sum-1"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryUsageStats(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT source_kind, COUNT\(\*\) AS total FROM summaries`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"source_kind", "total"}).
			AddRow("generic_web", 3).
			AddRow("video_platform", 2))
	mock.ExpectQuery(`SELECT id, title, source_kind, created_at FROM summaries`).
		WithArgs("user-1", int64(RecentActivity)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "source_kind", "created_at"}).
			AddRow("v1", "Talk", "video_platform", created))

	stats, err := db.Summaries().UsageStats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.TotalSummaries)
	assert.Equal(t, 3, stats.BySource[core.SourceGenericWeb])
	assert.Equal(t, 2, stats.BySource[core.SourceVideoPlatform])
	require.Len(t, stats.Recent, 1)
	assert.Equal(t, "Talk", stats.Recent[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations(logger.Discard())
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create summaries", migrations[0].Description)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS summaries")

	pending := findPendingMigrations(migrations, map[int]bool{1: true})
	assert.Len(t, pending, len(migrations)-1)
}

func TestMigrateSkipsAppliedVersions(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))

	applied, err := NewMigrationManager(db).Migrate(context.Background())
	require.NoError(t, err)
	assert.Zero(t, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateAppliesPending(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT version FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS summaries`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations \(version, description\) VALUES \(\$1, \$2\)`).
		WithArgs(int64(1), "create summaries").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := NewMigrationManager(db).Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	require.NoError(t, mock.ExpectationsWereMet())
}
