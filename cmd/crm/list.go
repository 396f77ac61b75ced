package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/view"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List leads by stage or filter",
	GroupID: "leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}

		records, err := loadRecords(context.Background())
		if err != nil {
			return err
		}
		res, err := view.Compose(records.Leads(), q)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(res)
		}
		printFilterLabels(os.Stdout, res.Labels)
		if len(res.Leads) == 0 {
			fmt.Println("No leads found")
			return nil
		}
		printLeadTable(os.Stdout, res.Leads, res.Total)
		return nil
	},
}

// queryFromFlags builds a view query from the list flags.
func queryFromFlags(cmd *cobra.Command) (view.Query, error) {
	var q view.Query
	flags := cmd.Flags()

	q.Filter.DateStart, _ = flags.GetString("from")
	q.Filter.DateEnd, _ = flags.GetString("to")
	q.Filter.LeadStage, _ = flags.GetString("stage")
	q.Filter.EnrichedOnly, _ = flags.GetBool("enriched")
	for i := range q.Filter.LeadStatus {
		q.Filter.LeadStatus[i], _ = flags.GetString(fmt.Sprintf("status%d", i+1))
	}
	q.Bucket, _ = flags.GetString("bucket")
	q.Limit, _ = flags.GetInt("limit")

	order, _ := flags.GetString("order")
	o, err := view.ParseOrder(order)
	if err != nil {
		return q, err
	}
	q.Order = o

	if _, err := view.CompileFilter(q.Filter); err != nil {
		return q, err
	}
	return q, nil
}

func init() {
	addQueryFlags(listCmd)
}

// addQueryFlags registers the flags read by queryFromFlags.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "submitted on or after this date")
	cmd.Flags().String("to", "", "submitted on or before this date")
	cmd.Flags().String("stage", "", "filter by lead stage")
	for i := range len(model.FilterState{}.LeadStatus) {
		cmd.Flags().String(fmt.Sprintf("status%d", i+1), "", fmt.Sprintf("filter by lead status %d", i+1))
	}
	cmd.Flags().Bool("enriched", false, "only enriched leads")
	cmd.Flags().StringP("bucket", "b", view.BucketAll, "stage bucket to show when no filter is set")
	cmd.Flags().StringP("order", "o", "newest", "sort order (newest|oldest)")
	cmd.Flags().IntP("limit", "n", 50, "maximum number of leads to show (0 for all)")
}
