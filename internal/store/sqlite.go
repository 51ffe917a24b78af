package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/resilience"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db    *sql.DB
	retry resilience.Policy
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
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	// One connection serializes read-modify-write transactions.
	db.SetMaxOpenConns(1)
	retry := resilience.StorePolicy()
	retry.OnRetry = resilience.LogRetries("sqlite", "score")
	return &SQLiteStore{db: db, retry: retry}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	intelligence_id TEXT PRIMARY KEY,
	gbp_data        TEXT NOT NULL DEFAULT '{}',
	data_score      TEXT NOT NULL DEFAULT '{}',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*model.BusinessRecord, error) {
	return resilience.Do(ctx, s.retry, func(ctx context.Context) (*model.BusinessRecord, error) {
		var profile, score string
		err := s.db.QueryRowContext(ctx,
			`SELECT gbp_data, data_score FROM businesses WHERE intelligence_id = ?`, id,
		).Scan(&profile, &score)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "sqlite: get snapshot %s", id)
		}
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: get snapshot %s", id)
		}
		return decodeRecord(id, []byte(profile), []byte(score))
	})
}

func (s *SQLiteStore) UpdateScore(ctx context.Context, id string, patch model.ScorePatch) (model.DataScore, error) {
	return resilience.Do(ctx, s.retry, func(ctx context.Context) (model.DataScore, error) {
		return s.updateScore(ctx, id, patch)
	})
}

func (s *SQLiteStore) updateScore(ctx context.Context, id string, patch model.ScorePatch) (model.DataScore, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.DataScore{}, eris.Wrap(err, "sqlite: begin update score")
	}
	defer tx.Rollback() //nolint:errcheck

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT data_score FROM businesses WHERE intelligence_id = ?`, id,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DataScore{}, eris.Wrapf(ErrNotFound, "sqlite: update score %s", id)
	}
	if err != nil {
		return model.DataScore{}, eris.Wrapf(err, "sqlite: read score %s", id)
	}

	merged, data, err := mergeScore(id, []byte(current), patch)
	if err != nil {
		return model.DataScore{}, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE businesses SET data_score = ?, updated_at = datetime('now') WHERE intelligence_id = ?`,
		string(data), id,
	)
	if err != nil {
		return model.DataScore{}, eris.Wrapf(err, "sqlite: update score %s", id)
	}
	if err := checkRowsAffected(res, id); err != nil {
		return model.DataScore{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.DataScore{}, eris.Wrapf(err, "sqlite: commit score %s", id)
	}
	return merged, nil
}

func (s *SQLiteStore) PutSnapshot(ctx context.Context, rec model.BusinessRecord) error {
	profile, score, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	return resilience.Exec(ctx, s.retry, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO businesses (intelligence_id, gbp_data, data_score) VALUES (?, ?, ?)
			 ON CONFLICT (intelligence_id) DO UPDATE SET
				gbp_data = excluded.gbp_data,
				data_score = excluded.data_score,
				updated_at = datetime('now')`,
			rec.IntelligenceID, string(profile), string(score),
		)
		return eris.Wrapf(err, "sqlite: put snapshot %s", rec.IntelligenceID)
	})
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: business %s", id)
	}
	return nil
}
