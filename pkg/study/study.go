package study

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads a study from a YAML file.
func Load(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading study file: %w", err)
	}

	var st Study
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing study YAML: %w", err)
	}

	return &st, nil
}

// LoadProject loads a study from a project directory.
// It looks for study.yaml in the given directory.
func LoadProject(projectDir string) (*Study, error) {
	studyPath := filepath.Join(projectDir, "study.yaml")
	return Load(studyPath)
}
