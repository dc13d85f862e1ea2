package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-quality-cli/internal/model"
)

var _ Store = (*PostgresStore)(nil)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresFromPool(mock), mock
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, source, lead_count, stats, importance, created_at FROM scoring_runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, source, lead_count, stats, importance, created_at FROM scoring_runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "source", "lead_count", "stats", "importance", "created_at"}).
			AddRow("run-1", "sample.csv", 50,
				[]byte(`{"train_accuracy":0.97,"test_accuracy":0.93,"total_samples":50,"positive_leads":18}`),
				[]byte(`[{"name":"email_quality","importance":0.4}]`),
				created))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "sample.csv", run.Source)
	assert.Equal(t, 50, run.LeadCount)
	assert.InDelta(t, 0.93, run.Stats.TestAccuracy, 1e-9)
	require.Len(t, run.Importance, 1)
	assert.Equal(t, "email_quality", run.Importance[0].Name)
	assert.Equal(t, created, run.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRun_Transactional(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO scoring_runs`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO scored_leads`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	run := &model.Run{Source: "sample.csv"}
	leads := []model.ScoredLead{
		{Score: 0.85, Category: model.CategoryHot},
	}
	err := s.SaveRun(context.Background(), run, leads)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 1, run.LeadCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRun_RollsBackOnInsertError(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO scoring_runs`).
		WillReturnError(eris.New("boom"))
	mock.ExpectRollback()

	err := s.SaveRun(context.Background(), &model.Run{Source: "x.csv"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_SourceFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, source, lead_count, stats, importance, created_at FROM scoring_runs WHERE source = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("a.csv", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "source", "lead_count", "stats", "importance", "created_at"}).
			AddRow("run-1", "a.csv", 10, []byte(`{}`), []byte(nil), created))

	runs, err := s.ListRuns(context.Background(), RunFilter{Source: "a.csv"})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "a.csv", runs[0].Source)
	assert.Nil(t, runs[0].Importance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRunLeads(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT data FROM scored_leads WHERE run_id = \$1 ORDER BY position`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"company":"Acme Corp","lead_score":0.91,"category":"Hot Lead"}`)).
			AddRow([]byte(`{"lead_score":0.12,"category":"Low Priority"}`)))

	leads, err := s.GetRunLeads(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Acme Corp", model.Value(leads[0].Company))
	assert.Equal(t, model.CategoryHot, leads[0].Category)
	assert.Equal(t, model.CategoryLowPriority, leads[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS scoring_runs`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
