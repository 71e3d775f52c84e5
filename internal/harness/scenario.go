package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines an end-to-end synchronization scenario: a sequence
// of relational operations whose resulting graph state is asserted and
// compared against a golden edge dump.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden
	// file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// ContentIDs seed the deterministic content-ID generator, consumed
	// in order by beacon_add and comment_add steps.
	ContentIDs []string `yaml:"content_ids,omitempty"`

	// Steps are applied in order against a fresh store.
	Steps []Step `yaml:"steps"`

	// Expect holds assertions evaluated after the final step.
	Expect Expect `yaml:"expect,omitempty"`
}

// Step is one relational operation. Op selects which fields apply.
type Step struct {
	// Op is one of: user_add, user_rm, beacon_add, beacon_update,
	// beacon_rm, comment_add, comment_rm, vote_set, vote_rm, rebuild.
	Op string `yaml:"op"`

	// ID names the target row for rm/update steps and the user for
	// user_add.
	ID string `yaml:"id,omitempty"`

	// Author and Beacon apply to content-creation steps.
	Author string `yaml:"author,omitempty"`
	Beacon string `yaml:"beacon,omitempty"`
	Title  string `yaml:"title,omitempty"`
	Body   string `yaml:"body,omitempty"`

	// Category, Subject, Object, Amount apply to vote steps. Category
	// is one of beacon, comment, user.
	Category string  `yaml:"category,omitempty"`
	Subject  string  `yaml:"subject,omitempty"`
	Object   string  `yaml:"object,omitempty"`
	Amount   float64 `yaml:"amount,omitempty"`
}

// Expect holds post-run assertions.
type Expect struct {
	// Edges is the expected total edge count, when set.
	Edges *int `yaml:"edges,omitempty"`

	// Scores are point queries evaluated through the score view.
	Scores []ScoreExpect `yaml:"scores,omitempty"`
}

// ScoreExpect asserts the sign of one score query.
type ScoreExpect struct {
	Subject string `yaml:"subject"`
	Object  string `yaml:"object"`

	// Sign is "positive", "zero", or "negative". Exact rank values are
	// an engine property, not a synchronization property, so scenarios
	// assert only the sign.
	Sign string `yaml:"sign"`
}

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		if _, ok := stepOps[step.Op]; !ok {
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}
	}
	for i, sc := range s.Expect.Scores {
		switch sc.Sign {
		case "positive", "zero", "negative":
		default:
			return fmt.Errorf("score expectation %d: unknown sign %q", i, sc.Sign)
		}
	}
	return nil
}

// stepOps enumerates the valid step operations.
var stepOps = map[string]struct{}{
	"user_add":      {},
	"user_rm":       {},
	"beacon_add":    {},
	"beacon_update": {},
	"beacon_rm":     {},
	"comment_add":   {},
	"comment_rm":    {},
	"vote_set":      {},
	"vote_rm":       {},
	"rebuild":       {},
}
