package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ledgerport/internal/diag"
)

// INISection is the section holding clas_<prefix> keys.
const INISection = "classification"

const keyPrefix = "clas_"

// LoadCustomizations reads a customization table from an INI, JSON or YAML
// file, chosen by extension.
func LoadCustomizations(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg", ".conf":
		return LoadINI(path)
	case ".json":
		return loadJSON(path)
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return nil, &diag.ConfigurationError{
			Setting:     "classification file",
			Description: fmt.Sprintf("unsupported extension for %s", path),
		}
	}
}

// LoadINI reads clas_<prefix>=Group keys from the [classification] section.
// A file without the section yields no customizations.
func LoadINI(path string) (map[string]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, &diag.ConfigurationError{Setting: "classification file", Description: "parsing " + path, Err: err}
	}
	if !cfg.HasSection(INISection) {
		return nil, nil
	}
	values := make(map[string]string)
	for _, key := range cfg.Section(INISection).Keys() {
		values[key.Name()] = key.String()
	}
	return FromKeys(values), nil
}

// FromKeys extracts clas_<prefix> entries from a flat key/value map.
func FromKeys(values map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range values {
		k = strings.ToLower(strings.TrimSpace(k))
		if !strings.HasPrefix(k, keyPrefix) || k == "clas_cta" {
			continue
		}
		out[strings.TrimPrefix(k, keyPrefix)] = strings.TrimSpace(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func loadJSON(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading classification file: %w", err)
	}
	var out map[string]string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &diag.ConfigurationError{Setting: "classification file", Description: "parsing " + path, Err: err}
	}
	return out, nil
}

func loadYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading classification file: %w", err)
	}
	var out map[string]string
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, &diag.ConfigurationError{Setting: "classification file", Description: "parsing " + path, Err: err}
	}
	return out, nil
}
