package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lead-quality-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS scoring_runs (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	lead_count INTEGER NOT NULL,
	stats      TEXT NOT NULL,
	importance TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS scored_leads (
	run_id   TEXT NOT NULL REFERENCES scoring_runs(id),
	position INTEGER NOT NULL,
	data     TEXT NOT NULL,
	score    REAL NOT NULL,
	category TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_scoring_runs_source ON scoring_runs(source);
CREATE INDEX IF NOT EXISTS idx_scored_leads_run_id ON scored_leads(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run, leads []model.ScoredLead) error {
	fillRunDefaults(run, len(leads))

	statsJSON, importanceJSON, err := marshalRun(run)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scoring_runs (id, source, lead_count, stats, importance, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.LeadCount, statsJSON, importanceJSON, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	for i, lead := range leads {
		data, err := json.Marshal(lead)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal lead %d", i)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO scored_leads (run_id, position, data, score, category) VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, string(data), lead.Score, string(lead.Category),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert lead %d for run %s", i, run.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, lead_count, stats, importance, created_at FROM scoring_runs WHERE id = ?`,
		runID,
	)

	run, err := scanRun(row.Scan)
	if err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, source, lead_count, stats, importance, created_at FROM scoring_runs WHERE 1=1`
	var args []any

	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) GetRunLeads(ctx context.Context, runID string) ([]model.ScoredLead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM scored_leads WHERE run_id = ? ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get leads for run %s", runID)
	}
	defer rows.Close()

	var leads []model.ScoredLead
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		var lead model.ScoredLead
		if err := json.Unmarshal([]byte(data), &lead); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: get leads iterate")
}

// fillRunDefaults assigns an ID, timestamp, and lead count if unset.
func fillRunDefaults(run *model.Run, leadCount int) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.LeadCount == 0 {
		run.LeadCount = leadCount
	}
}

// marshalRun serializes the stats and importance columns.
func marshalRun(run *model.Run) (stats, importance string, err error) {
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return "", "", eris.Wrapf(err, "store: marshal stats for run %s", run.ID)
	}
	var importanceJSON []byte
	if len(run.Importance) > 0 {
		importanceJSON, err = json.Marshal(run.Importance)
		if err != nil {
			return "", "", eris.Wrapf(err, "store: marshal importance for run %s", run.ID)
		}
	}
	return string(statsJSON), string(importanceJSON), nil
}

// scanRun decodes one run row via the given scan function.
func scanRun(scan func(dest ...any) error) (*model.Run, error) {
	var run model.Run
	var statsJSON string
	var importanceJSON sql.NullString

	if err := scan(&run.ID, &run.Source, &run.LeadCount, &statsJSON, &importanceJSON, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal stats for run %s", run.ID)
	}
	if importanceJSON.Valid && importanceJSON.String != "" {
		if err := json.Unmarshal([]byte(importanceJSON.String), &run.Importance); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal importance for run %s", run.ID)
		}
	}
	return &run, nil
}
