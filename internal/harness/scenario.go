package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance test: a story document to load, a
// sequence of mutations, and assertions on the resulting snapshot and audit
// trail.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the story file to load, relative to the scenario file
	// location.
	Document string `yaml:"document"`

	// Steps are applied in order against the loaded store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final snapshot and audit trail.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one mutation. Exactly one of Set or Update is populated.
type Step struct {
	// Set writes a single key.
	Set *SetStep `yaml:"set,omitempty"`

	// Update applies a whole mapping atomically.
	Update map[string]any `yaml:"update,omitempty"`
}

// SetStep is the single-key mutation form.
type SetStep struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

// Assertion validates the final snapshot or audit trail.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Key and Value are used by snapshot_contains.
	Key   string `yaml:"key,omitempty"`
	Value any    `yaml:"value,omitempty"`

	// Count is used by log_count.
	Count int `yaml:"count,omitempty"`

	// Action and Keys are used by last_entry.
	Action string   `yaml:"action,omitempty"`
	Keys   []string `yaml:"keys,omitempty"`
}

// Assertion type constants.
const (
	AssertSnapshotContains = "snapshot_contains"
	AssertLogCount         = "log_count"
	AssertLastEntry        = "last_entry"
)

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if s.Document == "" {
		return nil, fmt.Errorf("scenario %s: document is required", path)
	}
	for i, step := range s.Steps {
		if (step.Set == nil) == (step.Update == nil) {
			return nil, fmt.Errorf("scenario %s: step %d must have exactly one of set or update", path, i)
		}
	}
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertSnapshotContains, AssertLogCount, AssertLastEntry:
		default:
			return nil, fmt.Errorf("scenario %s: assertion %d has unknown type %q", path, i, a.Type)
		}
	}

	return &s, nil
}
