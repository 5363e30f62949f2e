package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runResponse struct {
	Status string    `json:"status"`
	Data   RunResult `json:"data"`
}

func decodeRun(t *testing.T, out string) runResponse {
	t.Helper()
	var resp runResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestRun_RiskDataScenarios(t *testing.T) {
	out, err := execute(t, "run", filepath.Join("..", "riskdata", "testdata", "scenarios"))
	require.NoError(t, err, out)

	assert.Contains(t, out, "PASS margin_borrow_from_master")
	assert.Contains(t, out, "PASS orphan_order")
	assert.Contains(t, out, "3 passed, 0 failed, 3 total")
}

func TestRun_UpdateThenMatch(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"one_exchange.yaml": exchangeScenario})
	golden := filepath.Join(filepath.Dir(dir), "golden", "one_exchange.golden")

	out, err := execute(t, "run", dir, "--update", "--format", "json")
	require.NoError(t, err, out)
	resp := decodeRun(t, out)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "updated", resp.Data.Scenarios[0].Golden)
	assert.FileExists(t, golden)

	out, err = execute(t, "run", dir, "--format", "json")
	require.NoError(t, err, out)
	resp = decodeRun(t, out)
	assert.Equal(t, "match", resp.Data.Scenarios[0].Golden)
	assert.Equal(t, 1, resp.Data.Scenarios[0].Calls)
	assert.NotEmpty(t, resp.Data.Scenarios[0].RunID)
}

func TestRun_MissingGoldenIsNotAFailure(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"one_exchange.yaml": exchangeScenario})

	out, err := execute(t, "run", dir, "--format", "json")
	require.NoError(t, err, out)
	resp := decodeRun(t, out)
	assert.Equal(t, "missing", resp.Data.Scenarios[0].Golden)
	assert.True(t, resp.Data.Scenarios[0].Pass)
}

func TestRun_GoldenMismatchFails(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"one_exchange.yaml": exchangeScenario})
	goldenDir := filepath.Join(t.TempDir(), "elsewhere")
	require.NoError(t, os.MkdirAll(goldenDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "one_exchange.golden"), []byte(`{}`), 0o644))

	out, err := execute(t, "run", dir, "--golden", goldenDir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeRun(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "mismatch", resp.Data.Scenarios[0].Golden)
	assert.False(t, resp.Data.Scenarios[0].Pass)
}

func TestRun_FailingScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"one_exchange.yaml": exchangeScenario,
		"wrong_total.yaml":  wrongTotalScenario,
	})

	out, err := execute(t, "run", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "PASS one_exchange (1 calls)")
	assert.Contains(t, out, "FAIL wrong_total")
	assert.Contains(t, out, "total margin 100, want 1")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestRun_UnloadableScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"broken.yaml":  "name: broken\nsteps: [{call: exchange, bogus: 1}]\n",
		"unknown.yaml": unknownCallScenario,
	})

	out, err := execute(t, "run", dir, "--format", "json")
	require.Error(t, err)
	resp := decodeRun(t, out)
	require.Len(t, resp.Data.Scenarios, 2)

	broken := resp.Data.Scenarios[0]
	assert.Equal(t, "broken", broken.Name)
	require.Len(t, broken.Errors, 1)
	assert.Contains(t, broken.Errors[0], "load:")

	unknown := resp.Data.Scenarios[1]
	assert.Equal(t, "unknown_call", unknown.Name)
	require.Len(t, unknown.Errors, 1)
	assert.Contains(t, unknown.Errors[0], `unknown call "nope"`)
}

func TestRun_Filter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"one_exchange.yaml": exchangeScenario,
		"wrong_total.yaml":  wrongTotalScenario,
	})

	out, err := execute(t, "run", dir, "--filter", "one_*", "--format", "json")
	require.NoError(t, err, out)
	resp := decodeRun(t, out)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, "one_exchange", resp.Data.Scenarios[0].Name)
}

func TestRun_NoScenarios(t *testing.T) {
	out, err := execute(t, "run", scenarioDir(t, nil))
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestRun_MissingDirectory(t *testing.T) {
	out, err := execute(t, "run", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestRun_WrongArgCount(t *testing.T) {
	_, err := execute(t, "run")
	require.Error(t, err)
}
