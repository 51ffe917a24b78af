// Package store persists business snapshots and their score records.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/smart-intake/internal/model"
)

// ErrNotFound is returned when no record exists for an intelligence id.
var ErrNotFound = errors.New("store: not found")

// Store is the business snapshot collaborator: it reads snapshots and applies
// score patches with merge-on-write.
type Store interface {
	// GetSnapshot returns the profile and score record for id, or
	// ErrNotFound.
	GetSnapshot(ctx context.Context, id string) (*model.BusinessRecord, error)
	// UpdateScore merges patch into the stored score inside one transaction
	// and returns the merged record. Fields the patch leaves nil are kept.
	UpdateScore(ctx context.Context, id string, patch model.ScorePatch) (model.DataScore, error)
	// PutSnapshot inserts or replaces a whole record.
	PutSnapshot(ctx context.Context, rec model.BusinessRecord) error

	Migrate(ctx context.Context) error
	Close() error
}

func encodeRecord(rec model.BusinessRecord) (profile, score []byte, err error) {
	if rec.IntelligenceID == "" {
		return nil, nil, eris.New("store: record has no intelligence id")
	}
	profile, err = json.Marshal(rec.Profile)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal profile")
	}
	score, err = json.Marshal(rec.DataScore)
	if err != nil {
		return nil, nil, eris.Wrap(err, "store: marshal data score")
	}
	return profile, score, nil
}

func decodeRecord(id string, profile, score []byte) (*model.BusinessRecord, error) {
	rec := &model.BusinessRecord{IntelligenceID: id}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &rec.Profile); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal profile %s", id)
		}
	}
	if len(score) > 0 {
		if err := json.Unmarshal(score, &rec.DataScore); err != nil {
			return nil, eris.Wrapf(err, "store: unmarshal data score %s", id)
		}
	}
	return rec, nil
}

func mergeScore(id string, current []byte, patch model.ScorePatch) (model.DataScore, []byte, error) {
	var score model.DataScore
	if len(current) > 0 {
		if err := json.Unmarshal(current, &score); err != nil {
			return score, nil, eris.Wrapf(err, "store: unmarshal data score %s", id)
		}
	}
	merged := score.Merge(patch)
	data, err := json.Marshal(merged)
	if err != nil {
		return merged, nil, eris.Wrap(err, "store: marshal data score")
	}
	return merged, data, nil
}

// BulkWriter is implemented by stores that can load many records at once.
type BulkWriter interface {
	PutSnapshots(ctx context.Context, recs []model.BusinessRecord) (int64, error)
}

// PutAll writes recs through st, using BulkWriter when available.
func PutAll(ctx context.Context, st Store, recs []model.BusinessRecord) (int64, error) {
	if bw, ok := st.(BulkWriter); ok {
		return bw.PutSnapshots(ctx, recs)
	}
	var n int64
	for _, rec := range recs {
		if err := st.PutSnapshot(ctx, rec); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
