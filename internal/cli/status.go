package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gridsweep/gridsweep/internal/manifest"
	"github.com/gridsweep/gridsweep/internal/run"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <sweep-root>",
		Short: "Show every run of a sweep with its state and job ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Read(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTATE\tJOB\tERROR")
			for _, r := range m.Runs() {
				jobID := r.JobID
				if jobID == "" {
					jobID = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.State, jobID, r.Error)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			counts := m.CountByState()
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d runs: %d submitted, %d failed, %d unsubmitted\n",
				len(m.Runs()),
				counts[run.StateSubmitted],
				counts[run.StateSubmitFailed],
				counts[run.StateMaterialized]+counts[run.StatePending])
			return nil
		},
	}
}
