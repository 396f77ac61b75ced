package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/leadboard/internal/model"
)

var alertsCmd = &cobra.Command{
	Use:     "alerts",
	Short:   "List and dismiss sheet alerts",
	GroupID: "alerts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		alerts, err := sheetClient.FetchAlerts(context.Background())
		if err != nil {
			return fmt.Errorf("fetching alerts: %w", err)
		}
		if alerts == nil {
			alerts = []model.Alert{}
		}
		if jsonOutput {
			return printJSON(alerts)
		}
		printAlertTable(os.Stdout, alerts)
		return nil
	},
}

var alertsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an alert and its report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(context.Background())
		if err != nil {
			return err
		}
		a, err := records.Alert(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(a)
		}
		printAlert(os.Stdout, a)
		return nil
	},
}

var alertsDismissCmd = &cobra.Command{
	Use:   "dismiss <id>...",
	Short: "Dismiss one or more alerts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		for _, id := range args {
			if err := sheetClient.DismissAlert(ctx, id); err != nil {
				return fmt.Errorf("dismissing %s: %w", id, err)
			}
			if !jsonOutput {
				fmt.Printf("Dismissed %s\n", id)
			}
		}
		if jsonOutput {
			return printJSON(map[string]any{"dismissed": args})
		}
		return nil
	},
}

func init() {
	alertsCmd.AddCommand(alertsShowCmd)
	alertsCmd.AddCommand(alertsDismissCmd)
}
