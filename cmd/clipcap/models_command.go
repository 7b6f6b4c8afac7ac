package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"clipcap/internal/protocol"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Manage whisper transcription models",
	}

	modelsCmd.AddCommand(newModelsListCommand(ctx))
	modelsCmd.AddCommand(newModelsDownloadCommand(ctx))
	modelsCmd.AddCommand(newModelsDeleteCommand(ctx))
	return modelsCmd
}

func newModelsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known models and whether they are downloaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			rows := make([][]string, 0, len(protocol.KnownModels))
			for _, model := range protocol.KnownModels {
				downloaded := "?"
				params, _ := json.Marshal(model)
				result, err := client.call(cmd.Context(), "", protocol.MethodCheckModelExists, params)
				if err == nil {
					var exists bool
					if json.Unmarshal(result.Result, &exists) == nil {
						downloaded = yesNo(exists)
					}
				}
				rows = append(rows, []string{model, protocol.ModelFiles[model], downloaded})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Model", "File", "Downloaded"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newModelsDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <model>",
		Short: "Download a whisper model, streaming progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := args[0]
			if !protocol.IsKnownModel(model) {
				return fmt.Errorf("unknown model %q (known: tiny, base, small, medium, large)", model)
			}
			params, err := json.Marshal(protocol.DownloadModelParams{Model: model})
			if err != nil {
				return err
			}
			result, err := runCall(cmd.Context(), ctx.client(), cmd.OutOrStdout(), protocol.MethodDownloadModel, params, true)
			if err != nil {
				return err
			}
			var downloaded protocol.DownloadModelResult
			if err := json.Unmarshal(result, &downloaded); err != nil {
				return fmt.Errorf("decode download result: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s to %s (%d bytes)\n", downloaded.Model, downloaded.Path, downloaded.Size)
			return nil
		},
	}
}

func newModelsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <model>",
		Short: "Delete a downloaded whisper model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := json.Marshal(protocol.DeleteModelParams{Model: args[0]})
			if err != nil {
				return err
			}
			result, err := ctx.client().call(cmd.Context(), "", protocol.MethodDeleteModel, params)
			if err != nil {
				return err
			}
			var deleted protocol.DeleteModelResult
			if err := json.Unmarshal(result.Result, &deleted); err != nil {
				return fmt.Errorf("decode delete result: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", deleted.Model, deleted.Path)
			return nil
		},
	}
}
