package materializer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsweep/gridsweep/internal/manifest"
	"github.com/gridsweep/gridsweep/internal/profile"
	"github.com/gridsweep/gridsweep/internal/run"
	"github.com/gridsweep/gridsweep/internal/sweep"
)

func testSpec() *sweep.Spec {
	return &sweep.Spec{
		Name: "regression",
		Params: []sweep.Parameter{
			{Name: "lr", Candidates: []any{0.01, 0.1}},
			{Name: "seed", Candidates: []any{int64(1), int64(2), int64(3)}},
		},
	}
}

func testProfile() *profile.Profile {
	return &profile.Profile{
		JobName:   "regression",
		Time:      "24:00:00",
		Partition: "savio2",
		Account:   "fc_songlab",
		EnvSetup:  "module load python/3.9",
		Command:   "python run_regression_main.py",
	}
}

func TestMaterialize(t *testing.T) {
	root := t.TempDir()

	runs, err := Materialize(context.Background(), testSpec(), testProfile(), root, Options{})
	require.NoError(t, err)
	require.Len(t, runs, 6)

	assert.Equal(t, "000", runs[0].ID)
	assert.Equal(t, "005", runs[5].ID)

	// seed varies fastest.
	raw, err := os.ReadFile(filepath.Join(root, RunsDirName, "001", ParamsFileName))
	require.NoError(t, err)
	assert.Equal(t, "{\"lr\":0.01,\"seed\":2}\n", string(raw))

	script, err := os.ReadFile(filepath.Join(root, ScriptFileName))
	require.NoError(t, err)
	assert.Contains(t, string(script), "#SBATCH --job-name=regression")
	assert.Contains(t, string(script), "#SBATCH --partition=savio2")
	assert.Contains(t, string(script), "module load python/3.9")
	assert.Contains(t, string(script), `python run_regression_main.py "$1"`)

	summaryRaw, err := os.ReadFile(filepath.Join(root, SummaryName))
	require.NoError(t, err)
	assert.Contains(t, string(summaryRaw), `"total_runs": 6`)

	m, err := manifest.Read(root)
	require.NoError(t, err)
	require.Len(t, m.Runs(), 6)
	for _, r := range m.Runs() {
		assert.Equal(t, run.StateMaterialized, r.State)
		assert.DirExists(t, r.Dir)
	}
}

func TestMaterializeConflictAbortsBeforeWriting(t *testing.T) {
	root := t.TempDir()

	_, err := Materialize(context.Background(), testSpec(), testProfile(), root, Options{})
	require.NoError(t, err)

	// Simulate a later generate against the same root: every run directory
	// is now non-empty, so the conflict scan must fail before anything is
	// written. Removing the manifest first proves nothing got recreated.
	require.NoError(t, os.Remove(manifest.Path(root)))

	_, err = Materialize(context.Background(), testSpec(), testProfile(), root, Options{})
	var dirErr *DirectoryExistsError
	require.ErrorAs(t, err, &dirErr)
	assert.NoFileExists(t, manifest.Path(root))
}

func TestMaterializeOverwriteIsIdempotent(t *testing.T) {
	root := t.TempDir()

	_, err := Materialize(context.Background(), testSpec(), testProfile(), root, Options{})
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(root, RunsDirName, "003", ParamsFileName))
	require.NoError(t, err)

	_, err = Materialize(context.Background(), testSpec(), testProfile(), root, Options{Overwrite: true})
	require.NoError(t, err)
	after, err := os.ReadFile(filepath.Join(root, RunsDirName, "003", ParamsFileName))
	require.NoError(t, err)

	assert.Equal(t, before, after)

	m, err := manifest.Read(root)
	require.NoError(t, err)
	assert.Len(t, m.Runs(), 6)
}

func TestMaterializeReusesEmptyDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, RunsDirName, "000"), 0o755))

	_, err := Materialize(context.Background(), testSpec(), testProfile(), root, Options{})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, RunsDirName, "000", ParamsFileName))
}

func TestMaterializeRejectsInvalidSpec(t *testing.T) {
	root := t.TempDir()

	_, err := Materialize(context.Background(), &sweep.Spec{}, testProfile(), root, Options{})
	var specErr *sweep.InvalidSpecError
	require.ErrorAs(t, err, &specErr)

	// Fatal before any filesystem interaction.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
