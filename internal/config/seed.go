package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/status-portal/internal/domain"
)

// LoadDocumentDefaults returns the fallbacks for a new live-data document,
// overlaying the optional YAML seed file on the built-in values.
func LoadDocumentDefaults(path string) (domain.DocumentDefaults, error) {
	builtin := domain.StandardDefaults()
	if path == "" {
		return builtin, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.DocumentDefaults{}, fmt.Errorf("read seed file: %w", err)
	}

	var seed domain.DocumentDefaults
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return domain.DocumentDefaults{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return seed.Merge(builtin), nil
}
