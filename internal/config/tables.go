package config

import (
	"fmt"

	"femwork/internal/engine"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// scoringFile is the on-disk shape of a scoring tables override. Any field
// left out keeps its default.
type scoringFile struct {
	engine.Tables `yaml:",inline"`
	Keywords      []engine.KeywordRule `yaml:"keywords"`
}

// LoadTables reads a YAML tables file and overlays it on the defaults.
// An empty path returns the defaults.
func LoadTables(fsys afero.Fs, path string) (engine.Tables, error) {
	f, err := loadScoringFile(fsys, path)
	if err != nil {
		return engine.Tables{}, err
	}
	return f.Tables, nil
}

// LoadEngine builds an engine from a tables file. Keyword rules in the file
// replace the stock classifier rules.
func LoadEngine(fsys afero.Fs, path string) (*engine.Engine, error) {
	f, err := loadScoringFile(fsys, path)
	if err != nil {
		return nil, err
	}
	var classifier engine.Classifier
	if len(f.Keywords) > 0 {
		for _, r := range f.Keywords {
			if r.Type == "" {
				return nil, fmt.Errorf("scoring tables %s: keyword rule without a type", path)
			}
		}
		classifier = engine.NewKeywordClassifier(f.Keywords)
	}
	return engine.New(f.Tables, classifier), nil
}

func loadScoringFile(fsys afero.Fs, path string) (*scoringFile, error) {
	f := &scoringFile{Tables: engine.DefaultTables()}
	if path == "" {
		return f, nil
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoring tables: %w", err)
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("failed to parse scoring tables %s: %w", path, err)
	}
	return f, nil
}
