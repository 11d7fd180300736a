package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sake/internal/repoerr"
	"github.com/roach88/sake/internal/testutil"
)

// exportFixture writes the static project to a fresh snapshot.
func exportFixture(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "snapshot.db")
	_, _, err := execute(NewExportCommand(fixtureOptions(t, "text")), "--db", db)
	require.NoError(t, err)
	return db
}

func TestQueryMatchesList(t *testing.T) {
	db := exportFixture(t)

	tests := []struct {
		name    string
		filters []string
		want    []string
	}{
		{"no filters", nil, []string{fixtureA, fixtureB}},
		{"string", []string{"optimizer=adam"}, []string{fixtureA, fixtureB}},
		{"null", []string{"dropout=null"}, []string{fixtureA}},
		{"number never matches", []string{"lr=0.1"}, nil},
		{"conjunction", []string{"optimizer=adam", "dropout=null"}, []string{fixtureA}},
		{"absent field", []string{"momentum=null"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"--db", db}
			for _, f := range tt.filters {
				args = append(args, "--filter", f)
			}

			stdout, _, err := execute(NewQueryCommand(fixtureOptions(t, "text")), args...)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, strings.Fields(stdout))

			listArgs := append([]string{"-q"}, args[2:]...)
			listed, _, err := execute(NewListCommand(fixtureOptions(t, "text")), listArgs...)
			require.NoError(t, err)
			assert.ElementsMatch(t, strings.Fields(listed), strings.Fields(stdout))
		})
	}
}

func TestQueryMetricFields(t *testing.T) {
	repo := testutil.NewRepo(t)
	repo.AddExperiment("warm", map[string]any{},
		repo.Checkpoint(1, "loss", "minimize", map[string]any{"phase": "warmup"}),
		repo.Checkpoint(2, "loss", "minimize", map[string]any{"phase": "train"}),
	)

	db := filepath.Join(t.TempDir(), "snapshot.db")
	_, _, err := execute(NewExportCommand(repoOptions(t, repo, "text")), "--db", db)
	require.NoError(t, err)

	stdout, _, err := execute(NewQueryCommand(repoOptions(t, repo, "text")), "--db", db, "-f", "phase=warmup")
	require.NoError(t, err)
	assert.Equal(t, testutil.ID("warm")+"\n", stdout)

	// The first checkpoint defining a metric wins.
	stdout, _, err = execute(NewQueryCommand(repoOptions(t, repo, "text")), "--db", db, "-f", "phase=train")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestQueryJSON(t *testing.T) {
	db := exportFixture(t)

	stdout, _, err := execute(NewQueryCommand(fixtureOptions(t, "json")), "--db", db, "-f", "dropout=null")
	require.NoError(t, err)
	assert.Equal(t, `{"status":"ok","data":["`+fixtureA+`"]}`+"\n", stdout)
}

func TestQueryRecordsMatchList(t *testing.T) {
	db := exportFixture(t)

	// The snapshot serves the same canonical records list printed.
	stdout, _, err := execute(NewQueryCommand(fixtureOptions(t, "json")), "--db", db, "--records", "-f", "dropout=null")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "list_filtered_json", []byte(stdout))
}

func TestQueryRecordsText(t *testing.T) {
	db := exportFixture(t)

	stdout, _, err := execute(NewQueryCommand(fixtureOptions(t, "text")), "--db", db, "-r")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, `{"checkpoints":[`), line)
	}
}

func TestQueryMissingDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "absent.db")

	_, stderr, err := execute(NewQueryCommand(fixtureOptions(t, "text")), "--db", db)
	require.Error(t, err)
	assert.True(t, repoerr.IsIO(err))
	assert.Contains(t, stderr, "Error [E002]")
	assert.NoFileExists(t, db)
}

func TestQueryMalformedFilter(t *testing.T) {
	db := exportFixture(t)

	_, stderr, err := execute(NewQueryCommand(fixtureOptions(t, "text")), "--db", db, "-f", "nope")
	require.Error(t, err)
	assert.True(t, repoerr.IsMalformedFilter(err))
	assert.Contains(t, stderr, "Error [E004]")
}
