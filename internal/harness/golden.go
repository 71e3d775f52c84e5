package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// snapshot is the golden-file document: the scenario name and its
// final, sorted edge state.
type snapshot struct {
	Scenario string      `json:"scenario"`
	Edges    []EdgeState `json:"edges"`
}

// RunWithGolden executes a scenario, fails t on assertion errors, and
// compares the final edge state against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	data, err := json.MarshalIndent(snapshot{Scenario: scenario.Name, Edges: result.Edges}, "", "  ")
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}

// DumpEdges renders a result's edge state as indented JSON, for ad-hoc
// debugging from tests.
func DumpEdges(result *Result) (string, error) {
	data, err := json.MarshalIndent(result.Edges, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal edges: %w", err)
	}
	return string(data), nil
}
