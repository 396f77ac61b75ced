package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/store"
	"github.com/alfredjeanlab/leadboard/internal/ui"
)

var (
	apiURL     string
	jsonOutput bool
	actor      string
	timeout    time.Duration

	sheetClient client.SheetClient
)

func defaultActor() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err == nil {
		name := strings.TrimSpace(string(out))
		if name != "" {
			return name
		}
	}
	return "unknown"
}

func defaultAPIURL() string {
	if s := os.Getenv("CRM_SHEET_URL"); s != "" {
		return s
	}
	return activeRemoteURL()
}

// noClient skips client construction for commands that never call the sheet.
func noClient(cmd *cobra.Command, args []string) error { return nil }

var rootCmd = &cobra.Command{
	Use:           "crm <command>",
	Short:         "Work the wedding venue lead sheet from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if apiURL == "" {
			return fmt.Errorf("no sheet API URL: set --api-url, CRM_SHEET_URL, or run 'crm remote use <name>'")
		}
		sheetClient = client.NewHTTPClient(apiURL, client.WithTimeout(timeout))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if sheetClient != nil {
			sheetClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultAPIURL(), "sheet API URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", defaultActor(), "actor name recorded on edits")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "sheet API request timeout")

	rootCmd.AddGroup(
		&cobra.Group{ID: "leads", Title: "Leads:"},
		&cobra.Group{ID: "alerts", Title: "Alerts:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Leads
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(callFormCmd)

	// Alerts
	rootCmd.AddCommand(alertsCmd)

	// Views
	rootCmd.AddCommand(stagesCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(askCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

// loadRecords fetches a full snapshot into a fresh record store.
func loadRecords(ctx context.Context) (*store.Records, error) {
	snap, err := sheetClient.FetchSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching leads: %w", err)
	}
	records := store.NewRecords(model.DefaultSchema())
	records.Replace(snap, time.Time{})
	return records, nil
}

func main() {
	if !ui.ShouldUseColor() {
		ui.ForceNoColor()
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
