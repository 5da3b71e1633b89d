package sweep

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpecFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSweepSpec(t *testing.T) {
	path := writeSpecFile(t, "sweep.hcl", `
sweep {
  name = "potts_regression"

  param "training_set_random_seed" { values = [0, 1, 2] }
  param "model_name"               { values = ["linear", "cnn"] }
  param "potts_coupling_scale"     { values = [1.0, 3.3] }
  param "vocab_size"               { value = 20 }
}
`)

	spec, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "potts_regression", spec.Name)
	require.Len(t, spec.Params, 4)

	assert.Equal(t, "training_set_random_seed", spec.Params[0].Name)
	assert.Equal(t, []any{int64(0), int64(1), int64(2)}, spec.Params[0].Candidates)
	assert.False(t, spec.Params[0].Fixed)

	assert.Equal(t, []any{"linear", "cnn"}, spec.Params[1].Candidates)

	// Whole floats written with a decimal point survive as floats only when
	// they are not integral; 1.0 is integral and decodes as int64.
	assert.Equal(t, []any{int64(1), 3.3}, spec.Params[2].Candidates)

	require.True(t, spec.Params[3].Fixed)
	assert.Equal(t, []any{int64(20)}, spec.Params[3].Candidates)
}

func TestLoadMergesDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sweep.hcl"), []byte(`
sweep {
  param "seed" { values = [1, 2] }
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	spec, err := Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, spec.Params, 1)
	assert.Equal(t, "seed", spec.Params[0].Name)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{
			name:    "no sweep block",
			content: `param "a" { value = 1 }`,
		},
		{
			name: "both value and values",
			content: `
sweep {
  param "a" {
    value  = 1
    values = [1, 2]
  }
}
`,
		},
		{
			name: "neither value nor values",
			content: `
sweep {
  param "a" {}
}
`,
		},
		{
			name: "explicit null value counts as unset",
			content: `
sweep {
  param "a" { value = null }
}
`,
		},
		{
			name: "values not a list",
			content: `
sweep {
  param "a" { values = "oops" }
}
`,
		},
		{
			name: "empty values list",
			content: `
sweep {
  param "a" { values = [] }
}
`,
		},
		{
			name: "duplicate parameter",
			content: `
sweep {
  param "a" { value = 1 }
  param "a" { value = 2 }
}
`,
		},
		{
			name: "two sweep blocks",
			content: `
sweep {
  param "a" { value = 1 }
}
sweep {
  param "b" { value = 2 }
}
`,
		},
		{
			name:    "syntax error",
			content: `sweep {`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeSpecFile(t, "sweep.hcl", tc.content)
			_, err := Load(context.Background(), path)
			var specErr *InvalidSpecError
			require.ErrorAs(t, err, &specErr)
		})
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
	require.Error(t, err)
	var specErr *InvalidSpecError
	assert.False(t, errors.As(err, &specErr), "IO errors are not spec errors")
}
