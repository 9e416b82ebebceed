package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"bizrecords/internal/model"
)

// DisplayOverrides replaces the label, icon or color of registered trash types.
// Empty fields keep the registered value.
type DisplayOverrides map[model.OriginalType]model.DisplayInfo

// LoadDisplayOverrides reads a YAML document of the form
//
//	suppliers:
//	  label: Vendor
//	  icon_key: truck
//
// An empty path yields no overrides.
func LoadDisplayOverrides(path string) (DisplayOverrides, error) {
	if path == "" {
		return DisplayOverrides{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read display config: %w", err)
	}

	overrides := DisplayOverrides{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse display config %q: %w", path, err)
	}

	return overrides, nil
}
