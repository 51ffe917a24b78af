package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/smart-intake/internal/db"
	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/resilience"
)

// PostgresStore implements Store using pgxpool with JSONB columns.
type PostgresStore struct {
	pool  db.Pool
	retry resilience.Policy
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var businessUpsert = db.UpsertConfig{
	Table:        "businesses",
	Columns:      []string{"intelligence_id", "gbp_data", "data_score"},
	ConflictKeys: []string{"intelligence_id"},
	Touch:        "updated_at",
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
	return newPostgresStore(pool), nil
}

func newPostgresStore(pool db.Pool) *PostgresStore {
	retry := resilience.StorePolicy()
	retry.OnRetry = resilience.LogRetries("postgres", "score")
	return &PostgresStore{pool: pool, retry: retry}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	intelligence_id TEXT PRIMARY KEY,
	gbp_data        JSONB NOT NULL DEFAULT '{}'::jsonb,
	data_score      JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_businesses_climate_zone ON businesses ((data_score->>'climate_zone'));
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*model.BusinessRecord, error) {
	return resilience.Do(ctx, s.retry, func(ctx context.Context) (*model.BusinessRecord, error) {
		var profile, score []byte
		err := s.pool.QueryRow(ctx,
			`SELECT gbp_data, data_score FROM businesses WHERE intelligence_id = $1`, id,
		).Scan(&profile, &score)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: get snapshot %s", id)
		}
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: get snapshot %s", id)
		}
		return decodeRecord(id, profile, score)
	})
}

// UpdateScore locks the row with SELECT ... FOR UPDATE so concurrent patches
// to the same business serialize instead of overwriting each other.
func (s *PostgresStore) UpdateScore(ctx context.Context, id string, patch model.ScorePatch) (model.DataScore, error) {
	return resilience.Do(ctx, s.retry, func(ctx context.Context) (model.DataScore, error) {
		return s.updateScore(ctx, id, patch)
	})
}

func (s *PostgresStore) updateScore(ctx context.Context, id string, patch model.ScorePatch) (model.DataScore, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.DataScore{}, eris.Wrap(err, "postgres: begin update score")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current []byte
	err = tx.QueryRow(ctx,
		`SELECT data_score FROM businesses WHERE intelligence_id = $1 FOR UPDATE`, id,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.DataScore{}, eris.Wrapf(ErrNotFound, "postgres: update score %s", id)
	}
	if err != nil {
		return model.DataScore{}, eris.Wrapf(err, "postgres: read score %s", id)
	}

	merged, data, err := mergeScore(id, current, patch)
	if err != nil {
		return model.DataScore{}, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE businesses SET data_score = $1, updated_at = now() WHERE intelligence_id = $2`,
		data, id,
	); err != nil {
		return model.DataScore{}, eris.Wrapf(err, "postgres: update score %s", id)
	}
	if err := tx.Commit(ctx); err != nil {
		return model.DataScore{}, eris.Wrapf(err, "postgres: commit score %s", id)
	}
	return merged, nil
}

func (s *PostgresStore) PutSnapshot(ctx context.Context, rec model.BusinessRecord) error {
	profile, score, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	query, err := db.UpsertSQL(businessUpsert)
	if err != nil {
		return eris.Wrap(err, "postgres: build upsert")
	}
	return resilience.Exec(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, query, rec.IntelligenceID, profile, score)
		return eris.Wrapf(err, "postgres: put snapshot %s", rec.IntelligenceID)
	})
}

// PutSnapshots bulk-loads records with COPY. It is used by import for large
// fixture files.
func (s *PostgresStore) PutSnapshots(ctx context.Context, recs []model.BusinessRecord) (int64, error) {
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		profile, score, err := encodeRecord(rec)
		if err != nil {
			return 0, err
		}
		rows = append(rows, []any{rec.IntelligenceID, profile, score})
	}
	n, err := db.BulkUpsert(ctx, s.pool, businessUpsert, rows)
	return n, eris.Wrap(err, "postgres: put snapshots")
}
