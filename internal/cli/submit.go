package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridsweep/gridsweep/internal/lockfile"
	"github.com/gridsweep/gridsweep/internal/manifest"
	"github.com/gridsweep/gridsweep/internal/scheduler"
	"github.com/gridsweep/gridsweep/internal/submitter"
)

func newSubmitCmd() *cobra.Command {
	var resume bool
	var sbatchBin string

	cmd := &cobra.Command{
		Use:   "submit <sweep-root>",
		Short: "Submit every materialized run as one scheduler job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sweepRoot := args[0]

			lock, err := lockfile.Acquire(sweepRoot)
			if err != nil {
				return err
			}
			defer lock.Release()

			sched := scheduler.NewSlurm()
			if sbatchBin != "" {
				sched.Bin = sbatchBin
			}

			result, err := submitter.Submit(ctx, sched, sweepRoot, submitter.Options{Resume: resume})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "submitted: %d  failed: %d  skipped: %d\n", result.Submitted, result.Failed, result.Skipped)
			fmt.Fprintf(out, "manifest: %s\n", manifest.Path(sweepRoot))

			if result.Failed > 0 {
				return &ExitError{
					Code:    1,
					Message: fmt.Sprintf("%d run(s) failed submission; retry with: gridsweep submit --resume %s", result.Failed, sweepRoot),
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Skip runs already submitted and retry failed or unsubmitted ones.")
	cmd.Flags().StringVar(&sbatchBin, "sbatch-bin", "", "Scheduler submission binary. Defaults to sbatch on PATH.")
	return cmd
}
