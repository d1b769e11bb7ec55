package evaluation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/teamtrace/relato/pkg/types"
)

// GroundTruthSource supplies curated relations for one scenario. Sources
// are read-only from the evaluator's perspective.
type GroundTruthSource interface {
	// Relations returns the ground-truth relations tagged with the given
	// scenario. An empty scenario returns all relations.
	Relations(ctx context.Context, scenario string) ([]types.GroundTruthRelation, error)
}

// StaticSource is an in-memory GroundTruthSource, used by tests and by
// the YAML loader.
type StaticSource struct {
	relations []types.GroundTruthRelation
}

// NewStaticSource creates a source over a fixed relation list.
func NewStaticSource(relations []types.GroundTruthRelation) *StaticSource {
	return &StaticSource{relations: relations}
}

// Relations implements GroundTruthSource.
func (s *StaticSource) Relations(ctx context.Context, scenario string) ([]types.GroundTruthRelation, error) {
	if scenario == "" {
		return s.relations, nil
	}
	var out []types.GroundTruthRelation
	for _, rel := range s.relations {
		if rel.Scenario == scenario {
			out = append(out, rel)
		}
	}
	return out, nil
}

// groundTruthFile is the on-disk YAML layout for curated relations.
type groundTruthFile struct {
	Relations []types.GroundTruthRelation `yaml:"relations"`
}

// LoadGroundTruthFile reads a YAML ground-truth file into a StaticSource.
func LoadGroundTruthFile(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ground truth file: %w", err)
	}

	var file groundTruthFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse ground truth file: %w", err)
	}

	for i := range file.Relations {
		rel := &file.Relations[i]
		if rel.FromID == "" || rel.ToID == "" || rel.Type == "" {
			return nil, fmt.Errorf("ground truth relation %d is incomplete", i)
		}
	}
	return NewStaticSource(file.Relations), nil
}
