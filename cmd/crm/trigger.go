package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var triggerCmd = &cobra.Command{
	Use:     "trigger <row>",
	Short:   "Ask the sheet to re-run lead processing for a row",
	GroupID: "leads",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := parseRow(args[0])
		if err != nil {
			return err
		}
		msg, err := sheetClient.TriggerLeadUpdate(context.Background(), row)
		if err != nil {
			return fmt.Errorf("triggering row %d: %w", row, err)
		}
		if jsonOutput {
			return printJSON(map[string]any{"row": row, "message": msg})
		}
		if msg == "" {
			msg = "Lead update triggered"
		}
		fmt.Printf("Row %d: %s\n", row, msg)
		return nil
	},
}

var callFormCmd = &cobra.Command{
	Use:     "call-form <row>",
	Short:   "Print the pre-filled call form URL for a row",
	GroupID: "leads",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := parseRow(args[0])
		if err != nil {
			return err
		}
		u, err := sheetClient.OpenCallForm(context.Background(), row)
		if err != nil {
			return fmt.Errorf("opening call form for row %d: %w", row, err)
		}
		if u == "" {
			return fmt.Errorf("sheet returned no call form URL for row %d", row)
		}
		if jsonOutput {
			return printJSON(map[string]any{"row": row, "url": u})
		}
		fmt.Println(u)
		return nil
	},
}
