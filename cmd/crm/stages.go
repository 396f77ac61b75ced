package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/leadboard/internal/ui"
	"github.com/alfredjeanlab/leadboard/internal/view"
)

var stagesCmd = &cobra.Command{
	Use:     "stages",
	Short:   "Count leads per stage",
	GroupID: "views",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(context.Background())
		if err != nil {
			return err
		}
		counts := view.Organize(records.Leads()).Counts()

		if jsonOutput {
			return printJSON(counts)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STAGE\tLEADS")
		for _, c := range counts {
			fmt.Fprintf(w, "%s\t%d\n", ui.RenderStage(c.Key), c.Count)
		}
		return w.Flush()
	},
}
