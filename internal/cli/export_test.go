package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sake/internal/repoerr"
	"github.com/roach88/sake/internal/store"
)

func TestExportWritesSnapshot(t *testing.T) {
	db := filepath.Join(t.TempDir(), "snapshot.db")

	cmd := NewExportCommand(fixtureOptions(t, "json"))
	stdout, _, err := execute(cmd, "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ExportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ExportResult{DB: db, Experiments: 2, Params: 6, Checkpoints: 3, Metrics: 6}, resp.Data)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	counts, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Experiments)
	assert.Equal(t, 3, counts.Checkpoints)

	meta, err := st.ReadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "project", "store", "metadata", "experiments"), meta.Source)
	assert.Equal(t, "", meta.Filter)
}

func TestExportFiltered(t *testing.T) {
	db := filepath.Join(t.TempDir(), "snapshot.db")

	cmd := NewExportCommand(fixtureOptions(t, "text"))
	stdout, _, err := execute(cmd, "--db", db, "-f", "dropout=null", "-f", "optimizer=adam")
	require.NoError(t, err)
	assert.Equal(t, "Exported 1 experiment(s), 2 checkpoint(s) to "+db+"\n", stdout)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	ids, err := st.SelectIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{fixtureA}, ids)

	meta, err := st.ReadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dropout=null AND optimizer=adam", meta.Filter)
}

func TestExportReplacesPreviousSnapshot(t *testing.T) {
	db := filepath.Join(t.TempDir(), "snapshot.db")

	_, _, err := execute(NewExportCommand(fixtureOptions(t, "text")), "--db", db)
	require.NoError(t, err)
	_, _, err = execute(NewExportCommand(fixtureOptions(t, "text")), "--db", db, "-f", "momentum=none")
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	counts, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, counts.Experiments)
}

func TestExportRequiresDB(t *testing.T) {
	_, _, err := execute(NewExportCommand(fixtureOptions(t, "text")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExportMalformedFilter(t *testing.T) {
	db := filepath.Join(t.TempDir(), "snapshot.db")

	_, _, err := execute(NewExportCommand(fixtureOptions(t, "text")), "--db", db, "-f", "oops")
	require.Error(t, err)
	assert.True(t, repoerr.IsMalformedFilter(err))
	assert.NoFileExists(t, db)
}
