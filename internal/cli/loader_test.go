package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarioFiles(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"a_first.yaml":  exchangeScenario,
		"b_second.yml":  exchangeScenario,
		"notes.txt":     "not a scenario",
		"margin_x.yaml": exchangeScenario,
	})
	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "c_third.yaml"), []byte(exchangeScenario), 0o644))

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a_first.yaml"),
		filepath.Join(dir, "b_second.yml"),
		filepath.Join(dir, "margin_x.yaml"),
		filepath.Join(nested, "c_third.yaml"),
	}, files)

	files, err = findScenarioFiles(dir, "margin_*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "margin_x.yaml")}, files)
}

func TestFindScenarioFiles_BadFilter(t *testing.T) {
	_, err := findScenarioFiles(t.TempDir(), "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestRequireDir(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, requireDir("scenarios directory", dir))

	err := requireDir("scenarios directory", filepath.Join(dir, "missing"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	file := filepath.Join(dir, "file.yaml")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	err = requireDir("scenarios directory", file)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "is not a directory")
}
