package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pipeline is the startup definition of the middleware chain: an ordered
// list of middleware identifiers, consumed exactly once to build the chain.
type Pipeline struct {
	Middlewares []string `yaml:"middlewares"`
}

// LoadPipeline reads and parses a YAML pipeline file.
func LoadPipeline(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	return ParsePipeline(data)
}

// ParsePipeline parses YAML bytes into a Pipeline definition.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse pipeline config: %w", err)
	}
	if err := validatePipeline(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// validatePipeline checks that the definition is semantically valid. Order
// is significant and caller-supplied, so only identity problems are checked.
func validatePipeline(p *Pipeline) error {
	seen := make(map[string]bool, len(p.Middlewares))
	for i, name := range p.Middlewares {
		if name == "" {
			return fmt.Errorf("pipeline config: middleware %d: empty identifier", i)
		}
		if seen[name] {
			return fmt.Errorf("pipeline config: duplicate middleware %q", name)
		}
		seen[name] = true
	}
	return nil
}
