package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a declarative test scenario.
//
// A scenario seeds a root context, then walks a tree of steps. Each step
// names a registered callable, adds its own typed values to the context it
// inherits, and passes the callable's results on to its nested steps.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// RunID is an optional fixed run ID for deterministic recordings.
	// If empty, the runner's generator provides one.
	RunID string `yaml:"run_id,omitempty"`

	// Context lists values placed in the root context ahead of the
	// registry's fixtures.
	Context []TypedValue `yaml:"context,omitempty"`

	// Steps are run in order, depth first.
	Steps []Step `yaml:"steps"`

	// Assertions validate the recorded trace.
	// Supported types: call_count, call_order, call_contains, match_priority
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// ExpectError makes a failing run pass when its error matches: either
	// a toolkit error code (MATCH_NOT_FOUND, UNSUPPORTED_CALLABLE,
	// INDEX_OUT_OF_RANGE) or a substring of the error message.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step is one call in a scenario.
type Step struct {
	// Call is the registered callable name.
	Call string `yaml:"call"`

	// With lists values prepended to the inherited context for this call
	// and its nested steps.
	With []TypedValue `yaml:"with,omitempty"`

	// Steps run after Call, against its context with its results in front.
	Steps []Step `yaml:"steps,omitempty"`
}

// TypedValue is a context value written as a registered type name and a
// YAML value decoded into that type. The type "nil" is an untyped nil and
// takes no value.
type TypedValue struct {
	Type  string    `yaml:"type"`
	Value yaml.Node `yaml:"value"`
}

// Assertion validates the trace of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "call_count": Call was made exactly Count times
	// - "call_order": first calls of each of Calls appear in order
	// - "call_contains": some call of Call returned an object containing Result
	// - "match_priority": parameter Param of the first call of Call matched at Priority
	Type string `yaml:"type"`

	// Call is the callable name (call_count, call_contains, match_priority).
	Call string `yaml:"call,omitempty"`

	// Calls is the expected call order (call_order).
	Calls []string `yaml:"calls,omitempty"`

	// Count is the expected number of calls (call_count).
	Count int `yaml:"count,omitempty"`

	// Result holds expected result fields (call_contains).
	// Subset match - only specified fields are compared.
	Result map[string]any `yaml:"result,omitempty"`

	// Param is the fixed parameter position, 0-based (match_priority).
	Param int `yaml:"param,omitempty"`

	// Priority is the expected match tier name (match_priority).
	Priority string `yaml:"priority,omitempty"`
}

// Assertion type constants.
const (
	AssertCallCount     = "call_count"
	AssertCallOrder     = "call_order"
	AssertCallContains  = "call_contains"
	AssertMatchPriority = "match_priority"
)

// LoadScenario reads and parses a scenario YAML file.
//
// The file is checked in three passes: against the embedded CUE schema,
// by a strict YAML decode that rejects unknown fields, and by
// validateScenario. Registry names are not checked here; see Registry.Check.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(path, data)
}

// ParseScenario is LoadScenario for in-memory content. name is used in
// schema error positions.
func ParseScenario(name string, data []byte) (*Scenario, error) {
	if err := checkSchema(name, data); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, v := range s.Context {
		if err := validateValue(fmt.Sprintf("context[%d]", i), v); err != nil {
			return err
		}
	}
	if err := validateSteps("steps", s.Steps); err != nil {
		return err
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateSteps(path string, steps []Step) error {
	for i, step := range steps {
		at := fmt.Sprintf("%s[%d]", path, i)
		if step.Call == "" {
			return fmt.Errorf("%s: call is required", at)
		}
		for j, v := range step.With {
			if err := validateValue(fmt.Sprintf("%s.with[%d]", at, j), v); err != nil {
				return err
			}
		}
		if err := validateSteps(at+".steps", step.Steps); err != nil {
			return err
		}
	}
	return nil
}

func validateValue(at string, v TypedValue) error {
	if v.Type == "" {
		return fmt.Errorf("%s: type is required", at)
	}
	hasValue := v.Value.Kind != 0
	if v.Type == NilType && hasValue {
		return fmt.Errorf("%s: type nil takes no value", at)
	}
	if v.Type != NilType && !hasValue {
		return fmt.Errorf("%s: value is required for type %s", at, v.Type)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCallCount:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for call_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for call_count", index)
		}
	case AssertCallOrder:
		if len(a.Calls) == 0 {
			return fmt.Errorf("assertions[%d]: calls list is required for call_order", index)
		}
	case AssertCallContains:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for call_contains", index)
		}
		if len(a.Result) == 0 {
			return fmt.Errorf("assertions[%d]: result is required for call_contains", index)
		}
	case AssertMatchPriority:
		if a.Call == "" {
			return fmt.Errorf("assertions[%d]: call is required for match_priority", index)
		}
		if a.Param < 0 {
			return fmt.Errorf("assertions[%d]: param must be non-negative for match_priority", index)
		}
		if a.Priority == "" {
			return fmt.Errorf("assertions[%d]: priority is required for match_priority", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
