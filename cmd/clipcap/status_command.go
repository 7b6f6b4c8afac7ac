package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, worker, and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ctx.client().status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rows := [][]string{
				{"Running", yesNo(status.Running)},
				{"Worker alive", yesNo(status.WorkerAlive)},
				{"Worker PID", fmt.Sprintf("%d", status.PID)},
				{"Worker binary", status.WorkerBinary},
				{"Lock file", status.LockFilePath},
				{"History DB", status.HistoryDB},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))

			if len(status.Dependencies) > 0 {
				depRows := make([][]string, 0, len(status.Dependencies))
				for _, dep := range status.Dependencies {
					detail := dep.Detail
					if detail == "" {
						detail = dep.Command
					}
					depRows = append(depRows, []string{dep.Name, yesNo(dep.Available), detail})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Dependency", "Available", "Detail"},
					depRows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}
			return nil
		},
	}
}
