package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-quality-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. It is satisfied by
// both *pgxpool.Pool and pgxmock.PgxPoolIface.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool, primarily for testing.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS scoring_runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source     TEXT NOT NULL,
	lead_count INTEGER NOT NULL,
	stats      JSONB NOT NULL,
	importance JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scored_leads (
	run_id   TEXT NOT NULL REFERENCES scoring_runs(id),
	position INTEGER NOT NULL,
	data     JSONB NOT NULL,
	score    DOUBLE PRECISION NOT NULL,
	category TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_scoring_runs_source ON scoring_runs(source);
CREATE INDEX IF NOT EXISTS idx_scored_leads_run_id ON scored_leads(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.Run, leads []model.ScoredLead) error {
	fillRunDefaults(run, len(leads))

	statsJSON, importanceJSON, err := marshalRun(run)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var importanceArg any
	if importanceJSON != "" {
		importanceArg = importanceJSON
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO scoring_runs (id, source, lead_count, stats, importance, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Source, run.LeadCount, statsJSON, importanceArg, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	for i, lead := range leads {
		data, err := json.Marshal(lead)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal lead %d", i)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO scored_leads (run_id, position, data, score, category) VALUES ($1, $2, $3, $4, $5)`,
			run.ID, i, string(data), lead.Score, string(lead.Category),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert lead %d for run %s", i, run.ID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit run")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, source, lead_count, stats, importance, created_at FROM scoring_runs WHERE id = $1`,
		runID,
	)

	run, err := scanPostgresRun(row.Scan)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, source, lead_count, stats, importance, created_at FROM scoring_runs`
	var args []any

	if filter.Source != "" {
		args = append(args, filter.Source)
		query += ` WHERE source = $1`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		run, err := scanPostgresRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) GetRunLeads(ctx context.Context, runID string) ([]model.ScoredLead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM scored_leads WHERE run_id = $1 ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get leads for run %s", runID)
	}
	defer rows.Close()

	var leads []model.ScoredLead
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		var lead model.ScoredLead
		if err := json.Unmarshal(data, &lead); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: get leads iterate")
}

// scanPostgresRun decodes one run row. JSONB columns arrive as []byte.
func scanPostgresRun(scan func(dest ...any) error) (*model.Run, error) {
	var run model.Run
	var statsJSON []byte
	var importanceJSON []byte

	if err := scan(&run.ID, &run.Source, &run.LeadCount, &statsJSON, &importanceJSON, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(statsJSON, &run.Stats); err != nil {
		return nil, eris.Wrapf(err, "store: unmarshal stats for run %s", run.ID)
	}
	if len(importanceJSON) > 0 {
		if err := json.Unmarshal(importanceJSON, &run.Importance); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal importance for run %s", run.ID)
		}
	}
	return &run, nil
}
