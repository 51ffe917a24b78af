package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/smart-intake/internal/expectations"
)

var expectationsPath string

var expectationsCmd = &cobra.Command{
	Use:   "expectations",
	Short: "Inspect the industry service expectations table",
}

var expectationsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the expectations table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, err := loadExpectations(cmd)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: version %s, %d industries\n", t.Version, len(t.Industries))
		return err
	},
}

var expectationsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the expectations table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		t, err := loadExpectations(cmd)
		if err != nil {
			return err
		}
		return printTable(cmd.OutOrStdout(), t)
	},
}

func loadExpectations(cmd *cobra.Command) (*expectations.Table, error) {
	if expectationsPath != "" {
		cfg.Expectations.Source = "file"
		cfg.Expectations.Path = expectationsPath
	}
	if err := cfg.Validate("expectations"); err != nil {
		return nil, err
	}
	src, err := expectations.NewSource(cfg.Expectations.Source, cfg.Expectations.Path)
	if err != nil {
		return nil, eris.Wrap(err, "init expectations")
	}
	t, err := expectations.NewCache(src).Load(cmd.Context())
	if err != nil {
		return nil, eris.Wrap(err, "load expectations")
	}
	return t, nil
}

// printTable writes one line per industry and zone, services most prevalent
// first.
func printTable(w io.Writer, t *expectations.Table) error {
	if _, err := fmt.Fprintf(w, "version %s\n", t.Version); err != nil {
		return err
	}
	for _, industry := range sortedKeys(t.Industries) {
		zones := t.Industries[industry]
		for _, zone := range sortedKeys(zones) {
			services := zones[zone]
			keys := sortedKeys(services)
			sort.SliceStable(keys, func(i, j int) bool { return services[keys[i]] > services[keys[j]] })

			parts := make([]string, 0, len(keys))
			for _, k := range keys {
				parts = append(parts, fmt.Sprintf("%s=%.2f", k, services[k]))
			}
			if _, err := fmt.Fprintf(w, "%-14s %-10s %s\n", industry, zone, strings.Join(parts, " ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	expectationsCmd.PersistentFlags().StringVar(&expectationsPath, "path", "", "read a dataset file instead of the configured source")
	expectationsCmd.AddCommand(expectationsValidateCmd, expectationsShowCmd)
	rootCmd.AddCommand(expectationsCmd)
}
