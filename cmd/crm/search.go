package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/leadboard/internal/view"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "Search leads by name or email",
	GroupID: "leads",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		records, err := loadRecords(context.Background())
		if err != nil {
			return err
		}
		results := view.Search(query, records.Leads())

		if jsonOutput {
			if results == nil {
				results = []view.SearchResult{}
			}
			return printJSON(results)
		}
		printSearchResults(os.Stdout, results)
		return nil
	},
}
