package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML keys recognized by ShallowMergeYAML.
const (
	keyOutput          = "output"
	keyLogging         = "logging"
	keyStorage         = "storage"
	keyRecommendations = "recommendations"
	keyEmissions       = "emissions"
	keyServer          = "server"
)

// ShallowMergeYAML loads a YAML file and replaces each top-level section of
// target that the file names. Absent and unknown sections are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if err = unmarshalSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}

// unmarshalSection decodes node into a fresh value so that maps are replaced
// rather than merged.
func unmarshalSection(target *Config, key string, node *yaml.Node) error {
	switch key {
	case keyOutput:
		return decodeInto(node, &target.Output)
	case keyLogging:
		return decodeInto(node, &target.Logging)
	case keyStorage:
		return decodeInto(node, &target.Storage)
	case keyRecommendations:
		return decodeInto(node, &target.Recommendations)
	case keyEmissions:
		return decodeInto(node, &target.Emissions)
	case keyServer:
		return decodeInto(node, &target.Server)
	default:
		return nil
	}
}

func decodeInto[T any](node *yaml.Node, dst *T) error {
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	*dst = v
	return nil
}
