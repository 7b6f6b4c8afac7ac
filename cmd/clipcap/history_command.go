package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent worker calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}
			rows, err := ctx.client().history(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No calls recorded yet")
				return nil
			}
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				outcome := "ok"
				if !row.OK {
					outcome = row.ErrorKind
					if outcome == "" {
						outcome = "error"
					}
				}
				tableRows = append(tableRows, []string{
					row.StartedAt,
					row.Method,
					formatDuration(row.DurationMS),
					outcome,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Method", "Duration", "Outcome"},
				tableRows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of calls to list")
	return cmd
}
