package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-quality-cli/internal/model"
)

var _ Store = (*SQLiteStore)(nil)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func strPtr(v string) *string { return &v }

func sampleScoredLeads() []model.ScoredLead {
	return []model.ScoredLead{
		{
			Lead: model.Lead{
				Company:      strPtr("Acme Corp"),
				ContactEmail: strPtr("jane@acme.com"),
				ContactTitle: strPtr("CEO"),
			},
			Features: model.FeatureVector{EmailQuality: 1.0, TitleValue: 1.0, DataCompleteness: 0.75},
			Score:    0.91,
			Category: model.CategoryHot,
		},
		{
			Lead: model.Lead{
				Company:      strPtr("Budget Shop"),
				ContactEmail: strPtr("N/A"),
			},
			Features: model.FeatureVector{EmailQuality: 0.0, DataCompleteness: 0.25},
			Score:    0.12,
			Category: model.CategoryLowPriority,
		},
	}
}

func TestSQLiteStore_SaveAndGetRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run := &model.Run{
		Source: "sample.csv",
		Stats: model.TrainStats{
			TrainAccuracy: 0.98,
			TestAccuracy:  0.95,
			TotalSamples:  100,
			PositiveLeads: 34,
		},
		Importance: []model.FeatureWeight{
			{Name: "email_quality", Importance: 0.4},
			{Name: "title_value", Importance: 0.3},
		},
	}
	leads := sampleScoredLeads()

	require.NoError(t, s.SaveRun(ctx, run, leads))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())
	assert.Equal(t, 2, run.LeadCount)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "sample.csv", got.Source)
	assert.Equal(t, 2, got.LeadCount)
	assert.InDelta(t, 0.95, got.Stats.TestAccuracy, 1e-9)
	require.Len(t, got.Importance, 2)
	assert.Equal(t, "email_quality", got.Importance[0].Name)
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLiteStore_GetRunLeads_RoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run := &model.Run{Source: "sample.csv"}
	leads := sampleScoredLeads()
	require.NoError(t, s.SaveRun(ctx, run, leads))

	got, err := s.GetRunLeads(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Acme Corp", model.Value(got[0].Company))
	assert.InDelta(t, 0.91, got[0].Score, 1e-9)
	assert.Equal(t, model.CategoryHot, got[0].Category)

	require.NotNil(t, got[1].ContactEmail)
	assert.Equal(t, "N/A", *got[1].ContactEmail)
	assert.Nil(t, got[1].ContactTitle)
	assert.Equal(t, model.CategoryLowPriority, got[1].Category)
}

func TestSQLiteStore_GetRunLeads_Empty(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run := &model.Run{Source: "empty.csv"}
	require.NoError(t, s.SaveRun(ctx, run, nil))

	got, err := s.GetRunLeads(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, src := range []string{"a.csv", "b.csv", "a.csv"} {
		run := &model.Run{Source: src, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, s.SaveRun(ctx, run, nil))
	}

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, "a.csv", all[0].Source)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	filtered, err := s.ListRuns(ctx, RunFilter{Source: "a.csv"})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "b.csv", limited[0].Source)
}

func TestSQLiteStore_SaveRun_PreservesExplicitID(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run := &model.Run{ID: "run-123", Source: "x.csv"}
	require.NoError(t, s.SaveRun(ctx, run, nil))
	assert.Equal(t, "run-123", run.ID)

	got, err := s.GetRun(ctx, "run-123")
	require.NoError(t, err)
	assert.Equal(t, "run-123", got.ID)
}
