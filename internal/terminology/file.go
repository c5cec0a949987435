package terminology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML term list of the form
//
//	terms:
//	  - source: アーバンも
//	    target: Avamo
//
// The file is only read; edits made at runtime are never written back.
func LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path from config
	if err != nil {
		return nil, fmt.Errorf("failed to read terminology file: %w", err)
	}
	var doc struct {
		Terms []Entry `yaml:"terms"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse terminology file %s: %w", path, err)
	}
	return NewDictionary(doc.Terms...)
}
