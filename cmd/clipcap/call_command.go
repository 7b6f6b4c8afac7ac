package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newCallCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "call <method> [params-json]",
		Short: "Send a raw RPC to the caption worker",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := json.RawMessage(`{}`)
			if len(args) == 2 {
				raw := strings.TrimSpace(args[1])
				if !json.Valid([]byte(raw)) {
					return fmt.Errorf("params must be valid JSON, got %q", raw)
				}
				params = json.RawMessage(raw)
			}
			result, err := runCall(cmd.Context(), ctx.client(), cmd.OutOrStdout(), args[0], params, watch)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Stream progress events while the call runs")
	return cmd
}

// runCall issues one RPC, optionally echoing its progress events.
func runCall(ctx context.Context, client *apiClient, out io.Writer, method string, params json.RawMessage, watch bool) (json.RawMessage, error) {
	token := uuid.NewString()

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if watch {
		go func() {
			_ = client.watchEvents(watchCtx, func(event progressEvent) {
				if event.Type != "progress" || event.ID != token {
					return
				}
				fmt.Fprintf(out, "%3.0f%%  %s\n", event.Progress*100, event.Status)
			})
		}()
	}

	result, err := client.call(ctx, token, method, params)
	stopWatch()
	if err != nil {
		return nil, err
	}
	return result.Result, nil
}

func printResult(out io.Writer, result json.RawMessage) error {
	if len(result) == 0 {
		fmt.Fprintln(out, "ok")
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, result, "", "  "); err != nil {
		fmt.Fprintln(out, string(result))
		return nil
	}
	fmt.Fprintln(out, buf.String())
	return nil
}
