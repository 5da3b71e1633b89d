package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	p, err := Load(writeProfile(t, `
job_name: regression
time: "24:00:00"
cpus_per_task: 2
mem: 4G
partition: savio2
account: fc_songlab
qos: savio_normal
mail_user: operator@example.edu
mail_type: END,FAIL
env_setup: |
  module load python/3.9
  source activate slip
command: python run_regression_main.py
`))
	require.NoError(t, err)

	assert.Equal(t, "regression", p.JobName)
	assert.Equal(t, "24:00:00", p.Time)
	assert.Equal(t, 2, p.CPUsPerTask)
	assert.Equal(t, "savio2", p.Partition)
	assert.Contains(t, p.EnvSetup, "source activate slip")
	assert.Equal(t, "python run_regression_main.py", p.Command)
}

func TestLoadDefaultsJobName(t *testing.T) {
	p, err := Load(writeProfile(t, "command: ./train\n"))
	require.NoError(t, err)
	assert.Equal(t, "gridsweep", p.JobName)
}

func TestLoadRequiresCommand(t *testing.T) {
	_, err := Load(writeProfile(t, "job_name: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command is required")
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeProfile(t, "command: [unclosed\n"))
		require.Error(t, err)
	})
}
