package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// categoriesFile is the YAML schema of an external category definitions file.
type categoriesFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadCategories reads category definitions from a YAML file. Teams that add
// channels often do not want to touch the main config; a standalone
// categories file keeps that a data change.
func LoadCategories(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read categories file %s: %w", path, err)
	}

	var file categoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("cannot parse categories file %s: %w", path, err)
	}

	return file.Categories, nil
}
