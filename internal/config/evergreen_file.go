package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EvergreenFile is the subset of the Evergreen CLI settings file (~/.evergreen.yml)
// the server understands.
type EvergreenFile struct {
	User                 string            `yaml:"user"`
	APIKey               string            `yaml:"api_key"`
	APIServerHost        string            `yaml:"api_server_host"`
	ProjectsForDirectory map[string]string `yaml:"projects_for_directory"`
}

// ReadEvergreenFile parses the settings file at path.
// A missing file is reported with an error satisfying os.IsNotExist.
func ReadEvergreenFile(path string) (*EvergreenFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseEvergreenFile(data)
}

// ParseEvergreenFile decodes settings file contents.
func ParseEvergreenFile(data []byte) (*EvergreenFile, error) {
	var f EvergreenFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse evergreen settings: %w", err)
	}
	return &f, nil
}
