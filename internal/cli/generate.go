package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/gridsweep/gridsweep/internal/lockfile"
	"github.com/gridsweep/gridsweep/internal/manifest"
	"github.com/gridsweep/gridsweep/internal/materializer"
	"github.com/gridsweep/gridsweep/internal/profile"
	"github.com/gridsweep/gridsweep/internal/sweep"
)

func newGenerateCmd() *cobra.Command {
	var overwrite bool
	var profilePath string

	cmd := &cobra.Command{
		Use:   "generate <sweep-spec> <sweep-root>",
		Short: "Enumerate the parameter grid and materialize run directories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			specPath, sweepRoot := args[0], args[1]

			spec, err := sweep.Load(ctx, specPath)
			if err != nil {
				var specErr *sweep.InvalidSpecError
				if errors.As(err, &specErr) {
					return &ExitError{Code: 2, Message: specErr.Error()}
				}
				return err
			}

			if profilePath == "" {
				profilePath = defaultProfilePath(specPath)
			}
			prof, err := profile.Load(profilePath)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(sweepRoot, 0o755); err != nil {
				return errors.Wrap(err, "creating sweep root")
			}

			// The sweep root is owned by one invocation at a time; generate
			// holds the same lock submit does so the two cannot interleave.
			lock, err := lockfile.Acquire(sweepRoot)
			if err != nil {
				return err
			}
			defer lock.Release()

			runs, err := materializer.Materialize(ctx, spec, prof, sweepRoot, materializer.Options{Overwrite: overwrite})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "materialized %d runs under %s\n", len(runs), sweepRoot)
			fmt.Fprintf(out, "manifest: %s\n", manifest.Path(sweepRoot))
			fmt.Fprintf(out, "next: gridsweep submit %s\n", sweepRoot)
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace parameter records in existing run directories.")
	cmd.Flags().StringVar(&profilePath, "profile", "", "Path to the job profile YAML. Defaults to job.yaml next to the sweep spec.")
	return cmd
}

// defaultProfilePath places job.yaml next to the sweep spec, or inside it
// when the spec is a directory.
func defaultProfilePath(specPath string) string {
	if info, err := os.Stat(specPath); err == nil && info.IsDir() {
		return filepath.Join(specPath, "job.yaml")
	}
	return filepath.Join(filepath.Dir(specPath), "job.yaml")
}
