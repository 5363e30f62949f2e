package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const exchangeScenario = `name: one_exchange
description: "A single exchange"
steps:
  - call: exchange
    with: [{type: exchange_id, value: 1}]
assertions:
  - type: call_count
    call: exchange
    count: 1
`

const wrongTotalScenario = `name: wrong_total
description: "A mismatched total fails the run"
steps:
  - call: exchange
    with: [{type: exchange_id, value: 1}]
    steps:
      - call: commodity
        with: [{type: commodity_id, value: 11}]
        steps:
          - call: contract
            with: [{type: contract_id, value: 111}, {type: instrument, value: future}]
  - call: account
    with: [{type: account_id, value: 100}]
    steps:
      - call: position
        with: [{type: contract_id, value: 111}, {type: quantity, value: 1}]
      - call: calculate
        steps:
          - call: expect_total
            with: [{type: margin, value: 1}]
`

const unknownCallScenario = `name: unknown_call
description: "Calls something nobody registered"
steps:
  - call: nope
`

// execute runs the root command with args and returns what it wrote to
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// scenarioDir writes files into <tmp>/scenarios and returns that directory.
// Golden files default to <tmp>/golden.
func scenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}
