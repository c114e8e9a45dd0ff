package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"realmlog/internal/realm"
)

type LayoutFile struct {
	Version int      `yaml:"version"`
	Rows    []string `yaml:"rows"`
}

// LoadLayout reads a layout file and decodes it. An empty path yields the
// built-in layout.
func LoadLayout(path string) (*realm.Layout, error) {
	if path == "" {
		return realm.DecodeLayout(realm.DefaultLayout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}

	var file LayoutFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("loading layout: unsupported version: %d", file.Version)
	}

	layout, err := realm.DecodeLayout(file.Rows)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}
	return layout, nil
}
