package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/store"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Upsert business snapshots from a JSON file into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("import"); err != nil {
			return err
		}

		f, err := os.Open(importFile)
		if err != nil {
			return eris.Wrap(err, "open snapshot file")
		}
		defer f.Close() //nolint:errcheck

		recs, err := decodeRecords(f)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		n, err := store.PutAll(ctx, st, recs)
		if err != nil {
			return eris.Wrap(err, "import snapshots")
		}

		zap.L().Info("import complete",
			zap.Int64("written", n),
			zap.String("file", importFile),
		)
		return nil
	},
}

// decodeRecords accepts either one record or an array of records. Every
// record needs an intelligence id and a known industry.
func decodeRecords(r io.Reader) ([]model.BusinessRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "read snapshot file")
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, eris.New("snapshot file is empty")
	}

	var recs []model.BusinessRecord
	if data[0] == '[' {
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, eris.Wrap(err, "decode snapshot array")
		}
	} else {
		var rec model.BusinessRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, eris.Wrap(err, "decode snapshot")
		}
		recs = []model.BusinessRecord{rec}
	}

	for i, rec := range recs {
		if rec.IntelligenceID == "" {
			return nil, eris.Errorf("record %d: intelligence_id is required", i)
		}
		if !rec.Profile.Industry.Valid() {
			return nil, eris.Errorf("record %s: unknown industry %q", rec.IntelligenceID, rec.Profile.Industry)
		}
	}
	return recs, nil
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to a JSON snapshot file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
