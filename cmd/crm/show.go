package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <row>",
	Short:   "Show a lead's full profile",
	GroupID: "leads",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := parseRow(args[0])
		if err != nil {
			return err
		}

		records, err := loadRecords(context.Background())
		if err != nil {
			return err
		}
		lead, ok := records.Lead(row)
		if !ok {
			return fmt.Errorf("row %d not found", row)
		}

		if jsonOutput {
			return printJSON(lead)
		}
		printLeadProfile(os.Stdout, lead)
		return nil
	},
}

func parseRow(s string) (int, error) {
	row, err := strconv.Atoi(s)
	if err != nil || row < 0 {
		return 0, fmt.Errorf("invalid row %q", s)
	}
	return row, nil
}
