package expectations

import (
	"context"
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
)

//go:embed data/expectations.yaml
var embeddedDataset []byte

// EmbeddedSource serves the dataset bundled into the binary.
type EmbeddedSource struct{}

// Load parses the bundled dataset.
func (EmbeddedSource) Load(_ context.Context) (*Table, error) {
	t, err := Parse(embeddedDataset)
	if err != nil {
		return nil, eris.Wrap(err, "expectations: load embedded dataset")
	}
	return t, nil
}

// FileSource reads the dataset from a YAML or JSON file on every Load.
type FileSource struct {
	Path string
}

// Load reads and parses the file.
func (s FileSource) Load(_ context.Context) (*Table, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "expectations: read %s", s.Path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "expectations: parse %s", s.Path)
	}
	return t, nil
}

// NewSource picks a backing source by name. Empty and "embedded" select the
// bundled dataset; "file" reads path.
func NewSource(kind, path string) (Source, error) {
	switch kind {
	case "", "embedded":
		return EmbeddedSource{}, nil
	case "file":
		if path == "" {
			return nil, eris.New("expectations: file source requires a path")
		}
		return FileSource{Path: path}, nil
	default:
		return nil, eris.Errorf("expectations: unsupported source %q", kind)
	}
}
