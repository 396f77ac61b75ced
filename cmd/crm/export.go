package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	leadsync "github.com/alfredjeanlab/leadboard/internal/sync"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export the sheet as JSONL",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")

		snap, err := sheetClient.FetchSnapshot(context.Background())
		if err != nil {
			return fmt.Errorf("fetching leads: %w", err)
		}

		var w io.Writer = os.Stdout
		if out != "" && out != "-" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		bw := bufio.NewWriter(w)
		if err := leadsync.ExportJSONL(snap, bw); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
		if out != "" && out != "-" {
			fmt.Fprintf(os.Stderr, "Exported %d leads to %s\n", len(snap.Rows), out)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "O", "", "write to file instead of stdout")
}
