// Package expectations holds the versioned industry × climate-zone service
// prevalence dataset and its load-once cache.
package expectations

import (
	"context"
	_ "embed"
	"encoding/json"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/smart-intake/internal/model"
	"github.com/sells-group/smart-intake/internal/normalize"
)

//go:embed data/schema.json
var schemaJSON []byte

// ErrNoEntry is returned when the table has no data for an industry.
var ErrNoEntry = eris.New("expectations: no entry for industry")

// Table maps industry -> climate zone -> normalized service key -> prevalence.
// A Table is immutable once returned by Parse.
type Table struct {
	Version    string                                    `yaml:"version" json:"version"`
	Industries map[string]map[string]map[string]float64 `yaml:"industries" json:"industries"`
}

// Parse decodes a YAML (or JSON) dataset and validates it against the
// embedded schema and the semantic rules in Validate.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "expectations: decode")
	}
	if err := validateSchema(&t); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func validateSchema(t *Table) error {
	// Round-trip through JSON so empty maps and nil maps are checked alike.
	raw, err := json.Marshal(t)
	if err != nil {
		return eris.Wrap(err, "expectations: marshal for schema check")
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return eris.Wrap(err, "expectations: schema check")
	}
	if !result.Valid() {
		msg := ""
		for i, e := range result.Errors() {
			if i > 0 {
				msg += "; "
			}
			msg += e.String()
		}
		return eris.Errorf("expectations: invalid dataset: %s", msg)
	}
	return nil
}

// Validate enforces the invariants the suppression logic relies on: every
// prevalence in [0,1], a national entry for every industry, and normalized
// service keys.
func (t *Table) Validate() error {
	if t.Version == "" {
		return eris.New("expectations: missing version")
	}
	if len(t.Industries) == 0 {
		return eris.New("expectations: no industries")
	}
	for industry, zones := range t.Industries {
		if _, ok := zones[string(model.ZoneNational)]; !ok {
			return eris.Errorf("expectations: industry %q has no national entry", industry)
		}
		for zone, services := range zones {
			for key, p := range services {
				if p < 0 || p > 1 {
					return eris.Errorf("expectations: %s/%s/%s prevalence %.3f outside [0,1]", industry, zone, key, p)
				}
				if normalize.ServiceKey(key) != key {
					return eris.Errorf("expectations: %s/%s key %q is not normalized", industry, zone, key)
				}
			}
		}
	}
	return nil
}

// zoneEntry returns the services for industry/zone, falling back to the
// national entry when the zone has no data.
func (t *Table) zoneEntry(industry model.Industry, zone model.ClimateZone) (map[string]float64, model.ClimateZone, error) {
	zones, ok := t.Industries[string(industry)]
	if !ok {
		return nil, "", eris.Wrapf(ErrNoEntry, "industry %q", industry)
	}
	if services, ok := zones[string(zone)]; ok {
		return services, zone, nil
	}
	return zones[string(model.ZoneNational)], model.ZoneNational, nil
}

// Prevalence returns the prevalence of a service key for the industry and
// zone. The second return is false when the service is not listed.
func (t *Table) Prevalence(industry model.Industry, zone model.ClimateZone, key string) (float64, bool) {
	services, _, err := t.zoneEntry(industry, zone)
	if err != nil {
		return 0, false
	}
	p, ok := services[key]
	return p, ok
}

// Expected returns the services at or above threshold for the industry and
// zone, most prevalent first. The returned zone is the one actually used,
// which is national when the requested zone has no entry.
func (t *Table) Expected(industry model.Industry, zone model.ClimateZone, threshold float64) ([]model.ExpectedService, model.ClimateZone, error) {
	services, used, err := t.zoneEntry(industry, zone)
	if err != nil {
		return nil, "", err
	}
	out := make([]model.ExpectedService, 0, len(services))
	for key, p := range services {
		if p >= threshold {
			out = append(out, model.ExpectedService{Key: key, Prevalence: p})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Prevalence != out[j].Prevalence {
			return out[i].Prevalence > out[j].Prevalence
		}
		return out[i].Key < out[j].Key
	})
	return out, used, nil
}

// Source is the backing store the cache loads from.
type Source interface {
	Load(ctx context.Context) (*Table, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Table, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) (*Table, error) {
	return f(ctx)
}
