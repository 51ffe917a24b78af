package registry

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// LoadCatalogFromFile reads a JSON array of Entry from the given path and
// returns a validated catalog.
func LoadCatalogFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read catalog fixture")
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal catalog fixture")
	}

	c, err := NewCatalog(entries)
	if err != nil {
		return nil, eris.Wrap(err, "registry: validate catalog fixture")
	}
	return c, nil
}
