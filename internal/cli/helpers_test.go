package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zaptest"

	"github.com/roach88/sake/internal/testutil"
)

// Fixture ids under testdata/project.
const (
	fixtureA = "a1b2c3d4e5f60718293a4b5c6d7e8f90"
	fixtureB = "b9c8d7e6f5a40312a1b2c3d4e5f60718"
)

// fixtureOptions points at the static project in testdata.
func fixtureOptions(t *testing.T, format string) *RootOptions {
	return &RootOptions{
		Format:  format,
		Config:  filepath.Join("testdata", "project", "keepsake.yml"),
		Workers: 2,
		Logger:  zaptest.NewLogger(t),
	}
}

// repoOptions points at a repository built with testutil.
func repoOptions(t *testing.T, repo *testutil.RepoBuilder, format string) *RootOptions {
	return &RootOptions{
		Format:  format,
		Config:  repo.WriteConfig(""),
		Workers: 2,
		Logger:  zaptest.NewLogger(t),
	}
}

// execute runs cmd with args and returns what it wrote to stdout and
// stderr.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithNameSuffix(".golden"),
	)
}
