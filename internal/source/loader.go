package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pavelanni/whatif/internal/model"
)

// LoadScoringMaps reads scoring maps from a JSON or YAML file, chosen by
// extension. Subject keys are normalized.
func LoadScoringMaps(path string) ([]model.ScoringMap, error) {
	var maps []model.ScoringMap
	if err := decodeFile(path, &maps); err != nil {
		return nil, err
	}
	for i := range maps {
		if s, ok := model.ParseSubject(string(maps[i].Subject)); ok {
			maps[i].Subject = s
		}
	}
	return maps, nil
}

// LoadThresholdSamples reads historical routing outcomes from a JSON or YAML file.
func LoadThresholdSamples(path string) ([]model.ThresholdSample, error) {
	var samples []model.ThresholdSample
	if err := decodeFile(path, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return nil
}
