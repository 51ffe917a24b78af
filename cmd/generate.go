package main

import (
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/smart-intake/internal/intake"
	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/store"
)

var (
	generateID       string
	generateIndustry string
	generateTotal    float64
	generateMissing  []string
	generateEnhanced bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate intake questions for one business and print them as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEngine(ctx, "generate")
		if err != nil {
			return err
		}
		defer env.Close()

		req := intake.Request{
			IntelligenceID: generateID,
			Industry:       model.Industry(generateIndustry),
			MissingData:    generateMissing,
		}

		rec, err := env.Store.GetSnapshot(ctx, generateID)
		switch {
		case err == nil:
			req.DataScore = rec.DataScore
			if req.Industry == "" {
				req.Industry = rec.Profile.Industry
			}
		case errors.Is(err, store.ErrNotFound):
		default:
			return eris.Wrap(err, "read snapshot")
		}
		if cmd.Flags().Changed("total") {
			req.DataScore.Total = generateTotal
		}

		opts := intake.Options{Enhanced: cfg.Engine.Enhanced}
		if cmd.Flags().Changed("enhanced") {
			opts.Enhanced = generateEnhanced
		}

		resp, err := env.Generator.Generate(ctx, req, opts)
		if err != nil {
			return eris.Wrap(err, "generate questions")
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateID, "id", "", "business intelligence id (required)")
	generateCmd.Flags().StringVar(&generateIndustry, "industry", "", "industry tag (default from the stored profile)")
	generateCmd.Flags().Float64Var(&generateTotal, "total", 0, "override the data score total (0-100)")
	generateCmd.Flags().StringSliceVar(&generateMissing, "missing", nil, "missing data keys, e.g. services,service_area")
	generateCmd.Flags().BoolVar(&generateEnhanced, "enhanced", true, "run context derivation and suppression (default from config)")
	_ = generateCmd.MarkFlagRequired("id")
	rootCmd.AddCommand(generateCmd)
}
