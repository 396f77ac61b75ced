package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check that the sheet API is reachable",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := "ok"
		cols, err := sheetClient.FetchColumns(context.Background())
		if err != nil {
			status = err.Error()
		}

		if jsonOutput {
			out := map[string]any{"status": status, "url": apiURL}
			if cols != nil {
				out["editable_columns"] = len(cols.EditableColumns)
			}
			if perr := printJSON(out); perr != nil {
				return perr
			}
		} else {
			fmt.Printf("Sheet API: %s\n", apiURL)
			fmt.Printf("Health: %s\n", status)
		}

		if err != nil {
			return fmt.Errorf("unhealthy: %w", err)
		}
		return nil
	},
}
