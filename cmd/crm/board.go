package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/poll"
	"github.com/alfredjeanlab/leadboard/internal/store"
	"github.com/alfredjeanlab/leadboard/internal/ui"
	"github.com/alfredjeanlab/leadboard/internal/view"
)

const clearScreen = "\x1b[H\x1b[2J"

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show leads as cards grouped by stage",
	Long: `Show leads as cards grouped by stage.

With --follow the board stays up and redraws whenever the sheet is
polled. --kiosk uses the full terminal width and hides the help footer,
for unattended displays.`,
	GroupID: "views",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bucket, _ := cmd.Flags().GetString("bucket")
		maxCards, _ := cmd.Flags().GetInt("max-cards")
		follow, _ := cmd.Flags().GetBool("follow")
		kiosk, _ := cmd.Flags().GetBool("kiosk")
		interval, _ := cmd.Flags().GetDuration("interval")

		mode := ui.ModeNormal
		if kiosk {
			mode = ui.ModeKiosk
			follow = true
		}
		vp := ui.NewViewport(mode)
		vp.Mount(os.Stdout)
		defer vp.Unmount()

		opts := ui.BoardOptions{Bucket: bucket, MaxCards: maxCards}

		if !follow {
			records, err := loadRecords(context.Background())
			if err != nil {
				return err
			}
			fmt.Print(ui.RenderBoard(view.Organize(records.Leads()), vp.Layout(), opts))
			return nil
		}
		return followBoard(vp, opts, interval)
	},
}

// followBoard keeps the board on screen, redrawing on every load, on
// resize and when the new-data indicator changes.
func followBoard(vp *ui.Viewport, opts ui.BoardOptions, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records := store.NewRecords(model.DefaultSchema())
	poller := poll.New(sheetClient, records, poll.Options{
		Interval: interval,
		Logger:   slog.New(slog.DiscardHandler),
	})

	var mu sync.Mutex
	draw := func() {
		mu.Lock()
		defer mu.Unlock()
		if !records.Loaded() {
			return
		}
		o := opts
		o.Status = boardStatus(poller.Status(), poller.Indicator().Active())
		fmt.Print(clearScreen + ui.RenderBoard(view.Organize(records.Leads()), vp.Layout(), o))
	}

	poller.OnLoad(draw)
	poller.Indicator().OnChange(func(bool) { draw() })
	vp.OnChange(func(ui.Layout) { draw() })

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)

	poller.Start()
	defer poller.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-winch:
			vp.Resize()
		}
	}
}

func boardStatus(s poll.Status, fresh bool) string {
	if s.LastUpdate.IsZero() {
		return "Loading..."
	}
	status := "Updated " + s.LastUpdate.Format("3:04 PM")
	if s.Updating {
		status += " · refreshing"
	}
	if fresh {
		status += " · new data"
	}
	if s.LastError != "" {
		status += " · last poll failed: " + s.LastError
	}
	return status
}

func init() {
	boardCmd.Flags().StringP("bucket", "b", view.BucketAll, "show only this stage")
	boardCmd.Flags().Int("max-cards", 12, "cards per stage (0 for all)")
	boardCmd.Flags().BoolP("follow", "f", false, "keep the board up and redraw on each poll")
	boardCmd.Flags().Bool("kiosk", false, "full-width display mode (implies --follow)")
	boardCmd.Flags().Duration("interval", poll.DefaultInterval, "polling interval with --follow")
}
