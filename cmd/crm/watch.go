package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/leadboard/internal/events"
	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/view"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Print leads as they arrive or change",
	GroupID: "views",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")
		q, err := queryFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		seen := make(map[int]string)
		if err := queryAndPrint(ctx, q, seen); err != nil {
			return err
		}
		if once {
			return nil
		}

		natsURL := os.Getenv("CRM_NATS_URL")
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL != "" {
			return watchNATS(ctx, natsURL, q, seen)
		}
		return watchPoll(ctx, interval, q, seen)
	},
}

// watchNATS re-queries on dashboard events with a short debounce.
func watchNATS(ctx context.Context, natsURL string, q view.Query, seen map[int]string) error {
	reconnectCh := make(chan struct{}, 1)

	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(events.TopicAll)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	debounce := time.NewTimer(0)
	debounce.Stop()
	select {
	case <-debounce.C:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			debounce.Reset(200 * time.Millisecond)
		case <-reconnectCh:
			debounce.Reset(0)
		case <-debounce.C:
			pollOnce(ctx, q, seen)
		}
	}
}

func watchPoll(ctx context.Context, interval time.Duration, q view.Query, seen map[int]string) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		pollOnce(ctx, q, seen)
	}
}

// pollOnce re-queries after the initial load. A failed fetch is reported and
// seen is kept, so the next attempt diffs against the last good view.
func pollOnce(ctx context.Context, q view.Query, seen map[int]string) {
	if err := queryAndPrint(ctx, q, seen); err != nil {
		log.Printf("watch: %v (retrying)", err)
	}
}

func queryAndPrint(ctx context.Context, q view.Query, seen map[int]string) error {
	records, err := loadRecords(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	res, err := view.Compose(records.Leads(), q)
	if err != nil {
		return err
	}
	changed := diffLeads(res.Leads, seen)
	if len(changed) == 0 {
		return nil
	}
	if jsonOutput {
		return printJSON(changed)
	}
	printLeadTable(os.Stdout, changed, res.Total)
	return nil
}

// diffLeads returns leads that are new or whose content differs from the
// last time they were seen at that row. It updates seen in place.
func diffLeads(leads []model.Lead, seen map[int]string) []model.Lead {
	var changed []model.Lead
	for _, l := range leads {
		fp := fingerprint(l)
		if prev, ok := seen[l.Index]; !ok || prev != fp {
			changed = append(changed, l)
		}
		seen[l.Index] = fp
	}
	return changed
}

func fingerprint(l model.Lead) string {
	data, _ := json.Marshal(l)
	return string(data)
}

func init() {
	addQueryFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 30*time.Second, "polling interval")
	watchCmd.Flags().Bool("once", false, "exit after first poll")
}
