package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// RepositoryDir is the repository root, relative to the project directory,
// that WriteConfig points keepsake.yml at.
const RepositoryDir = ".keepsake"

// RepoBuilder lays out a keepsake project on disk for tests:
//
//	<project>/keepsake.yml
//	<project>/.keepsake/metadata/experiments/<id>.json
//
// Ids are derived from names so fixtures are stable across runs.
type RepoBuilder struct {
	t       testing.TB
	project string
	clock   *DeterministicClock
}

// NewRepo creates an empty repository under t.TempDir().
func NewRepo(t testing.TB) *RepoBuilder {
	t.Helper()

	b := &RepoBuilder{
		t:       t,
		project: t.TempDir(),
		clock:   NewDeterministicClock(),
	}
	require.NoError(t, os.MkdirAll(b.ExperimentsDir(), 0o755))
	return b
}

// Project returns the project directory (where keepsake.yml lives).
func (b *RepoBuilder) Project() string { return b.project }

// Root returns the repository root.
func (b *RepoBuilder) Root() string { return filepath.Join(b.project, RepositoryDir) }

// ExperimentsDir returns <root>/metadata/experiments.
func (b *RepoBuilder) ExperimentsDir() string {
	return filepath.Join(b.Root(), "metadata", "experiments")
}

// ID returns the 32 hex digit id derived from name.
func ID(name string) string {
	return strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String(), "-", "")
}

// WriteConfig writes keepsake.yml with the given repository location.
// An empty location writes "file://.keepsake".
func (b *RepoBuilder) WriteConfig(repository string) string {
	b.t.Helper()
	if repository == "" {
		repository = "file://" + RepositoryDir
	}
	path := filepath.Join(b.project, "keepsake.yml")
	require.NoError(b.t, os.WriteFile(path, []byte("repository: \""+repository+"\"\n"), 0o644))
	return path
}

// Record builds an experiment document with a derived id and the next
// clock timestamp. checkpoints are appended in order.
func (b *RepoBuilder) Record(name string, params map[string]any, checkpoints ...map[string]any) map[string]any {
	rec := map[string]any{
		"id":             ID(name),
		"created":        b.clock.NextTimestamp(),
		"params":         params,
		"host":           "localhost",
		"user":           "tester",
		"command":        "train.py",
		"path":           ".",
		"python_version": "3.8.2",
		"config": map[string]any{
			"repository": "file://" + RepositoryDir,
			"storage":    "",
		},
	}
	if checkpoints != nil {
		rec["checkpoints"] = checkpoints
	}
	return rec
}

// Checkpoint builds a checkpoint document whose primary metric is name
// with the given goal.
func (b *RepoBuilder) Checkpoint(step int, name, goal string, metrics map[string]any) map[string]any {
	return map[string]any{
		"id":      ID(b.clock.NextTimestamp()),
		"created": b.clock.NextTimestamp(),
		"step":    step,
		"path":    "model.pth",
		"metrics": metrics,
		"primary_metric": map[string]any{
			"name": name,
			"goal": goal,
		},
	}
}

// Add writes rec as <id>.json and returns the id.
func (b *RepoBuilder) Add(rec map[string]any) string {
	b.t.Helper()

	id, _ := rec["id"].(string)
	require.NotEmpty(b.t, id, "record needs a string id")

	data, err := json.MarshalIndent(rec, "", "  ")
	require.NoError(b.t, err)
	b.WriteFile(id+".json", string(data))
	return id
}

// AddExperiment is Record followed by Add.
func (b *RepoBuilder) AddExperiment(name string, params map[string]any, checkpoints ...map[string]any) string {
	return b.Add(b.Record(name, params, checkpoints...))
}

// WriteFile writes raw content into the experiments directory and returns
// its path. Use it for malformed records.
func (b *RepoBuilder) WriteFile(name, content string) string {
	b.t.Helper()
	path := filepath.Join(b.ExperimentsDir(), name)
	require.NoError(b.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
