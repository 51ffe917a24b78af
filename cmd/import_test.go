package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/smart-intake/internal/model"
)

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantIDs []string
		wantErr string
	}{
		{
			name:    "single object",
			input:   `{"intelligence_id":"a","gbp_data":{"name":"A","industry":"hvac"},"data_score":{"total":40}}`,
			wantIDs: []string{"a"},
		},
		{
			name: "array",
			input: `
			[
			  {"intelligence_id":"a","gbp_data":{"industry":"hvac"}},
			  {"intelligence_id":"b","gbp_data":{"industry":"pest_control"}}
			]`,
			wantIDs: []string{"a", "b"},
		},
		{name: "empty", input: "  \n", wantErr: "empty"},
		{name: "malformed", input: `{"intelligence_id":`, wantErr: "decode snapshot"},
		{name: "missing id", input: `[{"gbp_data":{"industry":"hvac"}}]`, wantErr: "intelligence_id is required"},
		{name: "unknown industry", input: `{"intelligence_id":"a","gbp_data":{"industry":"astrology"}}`, wantErr: "unknown industry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := decodeRecords(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			ids := make([]string, 0, len(recs))
			for _, r := range recs {
				ids = append(ids, r.IntelligenceID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestImportCommand_WritesStore(t *testing.T) {
	testConfig(t)
	path := filepath.Join(t.TempDir(), "snapshots.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
	  {"intelligence_id":"a","gbp_data":{"name":"Alpine HVAC","industry":"hvac"},"data_score":{"total":55}},
	  {"intelligence_id":"b","gbp_data":{"name":"Bug Busters","industry":"pest_control"},"data_score":{"total":80}}
	]`), 0o644))

	prev := importFile
	importFile = path
	t.Cleanup(func() { importFile = prev })

	importCmd.SetContext(context.Background())
	require.NoError(t, importCmd.RunE(importCmd, nil))

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	rec, err := st.GetSnapshot(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, model.IndustryPestControl, rec.Profile.Industry)
	assert.Equal(t, 80.0, rec.DataScore.Total)
}

func TestImportCommand_MissingFile(t *testing.T) {
	testConfig(t)
	prev := importFile
	importFile = filepath.Join(t.TempDir(), "nope.json")
	t.Cleanup(func() { importFile = prev })

	importCmd.SetContext(context.Background())
	assert.ErrorContains(t, importCmd.RunE(importCmd, nil), "open snapshot file")
}
