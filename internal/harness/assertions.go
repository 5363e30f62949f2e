package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/scenariotools/internal/trace"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []trace.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s%s", event.Seq, strings.Repeat("  ", event.Depth), event.Call)
		if event.Error != "" {
			fmt.Fprintf(&buf, " !! %s", event.Error)
		}
		buf.WriteByte('\n')
	}
	return buf.String()
}

// assertCallCount checks that the call was made exactly Count times.
func assertCallCount(events []trace.Event, a Assertion) error {
	count := 0
	for _, e := range events {
		if e.Call == a.Call {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertCallCount,
			Expected: fmt.Sprintf("%d calls of %s", a.Count, a.Call),
			Actual:   fmt.Sprintf("%d calls", count),
			Trace:    events,
		}
	}
	return nil
}

// assertCallOrder checks that the first call of each name appears in the
// given order. Calls need not be consecutive.
func assertCallOrder(events []trace.Event, a Assertion) error {
	positions := make(map[string]int)
	for i, e := range events {
		if _, seen := positions[e.Call]; !seen {
			positions[e.Call] = i + 1 // 1-indexed for readability
		}
	}

	for _, call := range a.Calls {
		if positions[call] == 0 {
			return &AssertionError{
				Type:     AssertCallOrder,
				Expected: fmt.Sprintf("all calls present: %v", a.Calls),
				Actual:   fmt.Sprintf("missing call: %s", call),
				Trace:    events,
			}
		}
	}

	for i := 1; i < len(a.Calls); i++ {
		prev, curr := a.Calls[i-1], a.Calls[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertCallOrder,
				Expected: fmt.Sprintf("calls in order: %v", a.Calls),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: events,
			}
		}
	}
	return nil
}

// assertCallContains checks that some call of a.Call returned an object
// containing every field of a.Result.
func assertCallContains(events []trace.Event, a Assertion) error {
	want, err := trace.ToValue(a.Result)
	if err != nil {
		return fmt.Errorf("call_contains %s: invalid result: %w", a.Call, err)
	}
	expected, _ := want.(trace.Object)

	for _, e := range events {
		if e.Call != a.Call {
			continue
		}
		for _, r := range e.Results {
			if obj, ok := r.(trace.Object); ok && matchFields(obj, expected) {
				return nil
			}
		}
	}
	return &AssertionError{
		Type:     AssertCallContains,
		Expected: fmt.Sprintf("call %s with result %v", a.Call, a.Result),
		Actual:   "not found in trace",
		Trace:    events,
	}
}

// matchFields reports whether actual has every field of expected with an
// equal value. Extra fields in actual are ignored; nested values must match
// exactly.
func matchFields(actual, expected trace.Object) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// assertMatchPriority checks the tier at which parameter a.Param of the
// first call of a.Call was bound.
func assertMatchPriority(events []trace.Event, a Assertion) error {
	for _, e := range events {
		if e.Call != a.Call {
			continue
		}
		if a.Param >= len(e.Params) {
			return &AssertionError{
				Type:     AssertMatchPriority,
				Expected: fmt.Sprintf("%s param %d bound at %s", a.Call, a.Param, a.Priority),
				Actual:   fmt.Sprintf("%s has %d bound params", a.Call, len(e.Params)),
				Trace:    events,
			}
		}
		if got := e.Params[a.Param].Priority; got != a.Priority {
			return &AssertionError{
				Type:     AssertMatchPriority,
				Expected: fmt.Sprintf("%s param %d bound at %s", a.Call, a.Param, a.Priority),
				Actual:   fmt.Sprintf("bound at %s", got),
				Trace:    events,
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertMatchPriority,
		Expected: fmt.Sprintf("%s param %d bound at %s", a.Call, a.Param, a.Priority),
		Actual:   fmt.Sprintf("%s not found in trace", a.Call),
		Trace:    events,
	}
}

// EvaluateAssertions runs all assertions against a result and returns
// their failure messages. All assertions are evaluated, so every failure
// is reported.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertCallCount:
			err = assertCallCount(result.Trace, a)
		case AssertCallOrder:
			err = assertCallOrder(result.Trace, a)
		case AssertCallContains:
			err = assertCallContains(result.Trace, a)
		case AssertMatchPriority:
			err = assertMatchPriority(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type: %s", a.Type)
		}
		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errors
}
