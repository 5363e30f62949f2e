package harness

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/scenariotools/internal/testutil"
)

type Name string

type Greeting string

type Counter struct {
	N int
}

// testRegistry knows a handful of greeting steps and a *Counter fixture.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.RegisterType("name", Name("")))
	require.NoError(t, reg.RegisterCall("greet", func(n Name) Greeting {
		return Greeting("hello " + string(n))
	}))
	require.NoError(t, reg.RegisterCall("shout", func(g Greeting) (string, error) {
		return strings.ToUpper(string(g)) + "!", nil
	}))
	require.NoError(t, reg.RegisterCall("count", func(c *Counter) *Counter {
		c.N++
		return c
	}))
	require.NoError(t, reg.RegisterCall("tally", func(c *Counter, values ...any) int {
		return len(values)
	}))
	require.NoError(t, reg.RegisterCall("half", func(f float64) float64 {
		return f / 2
	}))
	require.NoError(t, reg.RegisterCall("fail", func() error {
		return errors.New("boom")
	}))
	require.NoError(t, reg.RegisterFixture("counter", func() any { return &Counter{} }))
	return reg
}

// fixedRunID is a harness option for deterministic run IDs.
func fixedRunID() Option {
	return WithRunIDGenerator(testutil.NewFixedRunIDGenerator("run-test"))
}

// parse parses scenario YAML, failing the test on error.
func parse(t *testing.T, content string) *Scenario {
	t.Helper()
	s, err := ParseScenario("test.yaml", []byte(content))
	require.NoError(t, err)
	return s
}

// writeScenario writes content to a file in a temp dir and returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
