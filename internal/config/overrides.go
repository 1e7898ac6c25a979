package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadOverrides reads the template overrides file: a YAML map of template
// base name to replacement markup. An empty path yields an empty map; a
// missing file is an error so a misconfigured deployment fails loudly.
func LoadOverrides(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides file %q: %w", path, err)
	}

	overrides := map[string]string{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing overrides file %q: %w", path, err)
	}
	return overrides, nil
}
