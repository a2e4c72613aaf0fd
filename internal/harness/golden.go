package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/storyctx/internal/value"
)

// goldenDocument builds the deterministic view of a result for golden
// comparison: the final snapshot plus the audit trail with wall-clock
// timestamps and size figures excluded.
func goldenDocument(scenarioName string, result *Result) value.Object {
	trail := make(value.Array, len(result.Entries))
	for i, e := range result.Entries {
		keys := make(value.Array, len(e.Keys))
		for j, k := range e.Keys {
			keys[j] = value.String(k)
		}
		trail[i] = value.Object{
			"seq":        value.Int(e.Seq),
			"action":     value.String(string(e.Action)),
			"keys":       keys,
			"value_type": value.String(e.ValueType),
		}
	}

	return value.Object{
		"scenario_name": value.String(scenarioName),
		"final_state":   value.Object(result.Snapshot),
		"trail":         trail,
	}
}

// RunWithGolden executes a scenario and compares its deterministic document
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, baseDir string) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, baseDir)
	if err != nil {
		return nil, err
	}

	doc := goldenDocument(scenario.Name, result)
	data, err := value.Marshal(doc)
	if err != nil {
		return nil, err
	}
	// Golden files end with a newline like any text file.
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
