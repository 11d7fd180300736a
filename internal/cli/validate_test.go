package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sake/internal/testutil"
)

func TestValidateAllValid(t *testing.T) {
	cmd := NewValidateCommand(fixtureOptions(t, "text"))
	stdout, _, err := execute(cmd)
	require.NoError(t, err)
	assert.Equal(t, "✓ All 2 experiment(s) valid\n", stdout)
}

func TestValidateAllValidJSON(t *testing.T) {
	cmd := NewValidateCommand(fixtureOptions(t, "json"))
	stdout, _, err := execute(cmd)
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok","data":{"valid":true,"checked":2}}`+"\n", stdout)
}

func TestValidateReportsEveryViolation(t *testing.T) {
	repo := testutil.NewRepo(t)
	repo.AddExperiment("good", map[string]any{"lr": 0.1})
	repo.WriteFile("no_params.json", `{"id": "x", "created": "t"}`)
	repo.WriteFile("bad_step.json", `{
  "id": "y",
  "created": "t",
  "params": {},
  "checkpoints": [{"id": "c", "created": "t", "step": -1, "path": "", "metrics": {}, "primary_metric": {"name": "a", "goal": "maximize"}}]
}`)

	cmd := NewValidateCommand(repoOptions(t, repo, "json"))
	stdout, _, err := execute(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  CLIError         `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Checked)
	assert.Equal(t, ErrCodeSchema, resp.Error.Code)

	files := map[string]bool{}
	for _, v := range resp.Data.Errors {
		files[v.File] = true
	}
	assert.Len(t, files, 2, "both bad records are reported")
}

func TestValidateText(t *testing.T) {
	repo := testutil.NewRepo(t)
	repo.WriteFile("broken.json", `{"id": `)

	cmd := NewValidateCommand(repoOptions(t, repo, "text"))
	stdout, _, err := execute(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ Validation failed")
	assert.Contains(t, stdout, "E003: ")
	assert.Contains(t, stdout, "broken.json")
}

func TestValidateEmptyRepository(t *testing.T) {
	repo := testutil.NewRepo(t)

	stdout, _, err := execute(NewValidateCommand(repoOptions(t, repo, "text")))
	require.NoError(t, err)
	assert.Equal(t, "✓ All 0 experiment(s) valid\n", stdout)
}

func TestValidateUnreadableEntry(t *testing.T) {
	repo := testutil.NewRepo(t)
	repo.AddExperiment("good", map[string]any{})
	require.NoError(t, os.Mkdir(filepath.Join(repo.ExperimentsDir(), "nested"), 0o755))

	_, stderr, err := execute(NewValidateCommand(repoOptions(t, repo, "text")))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "Error [E002]")
}

func TestValidateAgreesWithList(t *testing.T) {
	repo := testutil.NewRepo(t)
	repo.WriteFile("nulls.json", `{"id": "n", "created": "t", "params": {}, "host": null, "user": null,
  "command": null, "path": null, "python_version": null, "config": {"repository": null}}`)

	stdout, _, err := execute(NewValidateCommand(repoOptions(t, repo, "text")))
	require.NoError(t, err)
	assert.Equal(t, "✓ All 1 experiment(s) valid\n", stdout)

	stdout, _, err = execute(NewListCommand(repoOptions(t, repo, "text")), "-q")
	require.NoError(t, err)
	assert.Equal(t, "n\n", stdout)

	repo.WriteFile("upper.json", `{"ID": "u", "created": "t", "params": {}}`)

	_, _, err = execute(NewValidateCommand(repoOptions(t, repo, "text")))
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, _, err = execute(NewListCommand(repoOptions(t, repo, "text")), "-q")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
