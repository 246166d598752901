package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/latticeforge/schemasteer/internal/errs"
)

// yamlConfigDoc is the shape [LoadYAMLConfig] expects: a top-level "schema"
// key holding an embedded JSON Schema mapping, YAML-native so the rest of a
// run's configuration (prompt, sampling options, tokenizer choice) can live
// alongside it in the same file.
type yamlConfigDoc struct {
	Schema map[string]any `yaml:"schema"`
}

// LoadYAMLConfig parses a YAML document with a top-level "schema" key
// holding an embedded JSON Schema mapping and builds a [Model] from it. The
// embedded mapping is re-marshaled to JSON before handing it to [Load],
// since [walkSchema] operates on [jsonschema.Schema], not a YAML AST.
func LoadYAMLConfig(doc []byte) (*Model, error) {
	var cfg yamlConfigDoc

	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidSchema, err)
	}

	if cfg.Schema == nil {
		return nil, fmt.Errorf("%w: no top-level \"schema\" key", errs.ErrInvalidSchema)
	}

	asJSON, err := json.Marshal(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidSchema, err)
	}

	return Load(asJSON)
}

// LoadYAMLConfigFile reads path and parses it with [LoadYAMLConfig].
func LoadYAMLConfigFile(path string) (*Model, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is operator-supplied CLI/config input.
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrReadInput, err)
	}

	return LoadYAMLConfig(data)
}
