package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/alfredjeanlab/leadboard/internal/assistant"
	"github.com/alfredjeanlab/leadboard/internal/client"
	"github.com/alfredjeanlab/leadboard/internal/config"
	"github.com/alfredjeanlab/leadboard/internal/events"
	"github.com/alfredjeanlab/leadboard/internal/llm"
	"github.com/alfredjeanlab/leadboard/internal/model"
	"github.com/alfredjeanlab/leadboard/internal/poll"
	"github.com/alfredjeanlab/leadboard/internal/server"
	"github.com/alfredjeanlab/leadboard/internal/store"
	"github.com/alfredjeanlab/leadboard/internal/store/postgres"
	leadsync "github.com/alfredjeanlab/leadboard/internal/sync"
	"github.com/alfredjeanlab/leadboard/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:               "serve",
	Short:             "Start the dashboard backend",
	GroupID:           "system",
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

		sheet := client.NewHTTPClient(cfg.SheetURL, client.WithTimeout(timeout))
		defer sheet.Close()

		// Edit journal.
		var journal store.Journal = store.NoopJournal{}
		if cfg.DatabaseURL != "" {
			pg, err := postgres.New(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			journal = pg
			logger.Info("edit journal enabled")
			if cfg.JournalTTL > 0 {
				n, err := pg.PruneBefore(context.Background(), time.Now().Add(-cfg.JournalTTL))
				if err != nil {
					logger.Warn("pruning edit journal failed", "err", err)
				} else {
					logger.Info("pruned edit journal", "removed", n, "retention", cfg.JournalTTL)
				}
			}
		} else {
			logger.Info("edit journal disabled (CRM_DATABASE_URL not set)")
		}

		// Event publisher.
		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				journal.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (CRM_NATS_URL not set)")
		}

		// Assistant.
		var asker server.Asker
		if cfg.AnthropicAPIKey != "" {
			provider := llm.NewAnthropic(cfg.AnthropicAPIKey, llm.WithBaseURL(cfg.AnthropicURL))
			asker = assistant.New(provider, model.DefaultSchema(),
				assistant.WithModel(cfg.AssistantModel),
				assistant.WithBudget(assistant.Budget{MaxRows: cfg.AssistantMaxRows}),
			)
			logger.Info("assistant enabled", "model", cfg.AssistantModel)
		}

		mode, err := ui.ParseMode(cfg.Layout)
		if err != nil {
			return err
		}

		records := store.NewRecords(model.DefaultSchema())
		hub := server.NewHub()
		poller := poll.New(sheet, records, poll.Options{
			Interval:  cfg.PollInterval,
			Publisher: events.MultiPublisher{publisher, hub},
			Logger:    logger,
		})

		srv := server.New(server.Options{
			Records:   records,
			Client:    sheet,
			Poller:    poller,
			Journal:   journal,
			Publisher: publisher,
			Hub:       hub,
			Assistant: asker,
			Viewport:  ui.NewViewport(mode),
			Logger:    logger,
		})
		poller.OnLoad(srv.HandleLoad)
		poller.Start()
		logger.Info("polling sheet", "interval", cfg.PollInterval)

		// gRPC health listener.
		var grpcServer *grpc.Server
		if cfg.GRPCAddr != "" {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				poller.Stop()
				publisher.Close()
				journal.Close()
				return err
			}
			grpcServer = srv.NewGRPCServer(cfg.AuthToken)
			go func() {
				logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
				if err := grpcServer.Serve(lis); err != nil {
					logger.Error("gRPC server error", "err", err)
				}
			}()
		}

		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: srv.NewHTTPHandler(cfg.AuthToken),
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Sync scheduler, if any destination is configured.
		var scheduler *leadsync.Scheduler
		if cfg.SyncInterval > 0 {
			if dests := syncDestinations(cfg, logger); len(dests) > 0 {
				scheduler = leadsync.NewScheduler(records, dests, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
			}
		}

		logger.Info("leadboard server started",
			"grpc_addr", cfg.GRPCAddr,
			"http_addr", cfg.HTTPAddr,
		)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}
		poller.Stop()
		srv.Shutdown()

		if grpcServer != nil {
			grpcServer.GracefulStop()
			logger.Info("gRPC server stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := journal.Close(); err != nil {
			logger.Error("error closing journal", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

func syncDestinations(cfg *config.Config, logger *slog.Logger) []leadsync.Destination {
	var dests []leadsync.Destination
	if cfg.SyncS3Bucket != "" {
		s3Dest, err := leadsync.NewS3Destination(context.Background(), leadsync.S3Config{
			Bucket:   cfg.SyncS3Bucket,
			Key:      cfg.SyncS3Key,
			Region:   cfg.SyncS3Region,
			Endpoint: cfg.SyncS3Endpoint,
			Archive:  cfg.SyncS3Archive,
		})
		if err != nil {
			logger.Error("failed to create S3 sync destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
			logger.Info("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "key", cfg.SyncS3Key)
		}
	}
	if cfg.SyncGitRepo != "" {
		var opts []leadsync.GitOption
		if cfg.SyncGitAuthor != "" {
			opts = append(opts, leadsync.WithGitAuthor(cfg.SyncGitAuthor))
		}
		dests = append(dests, leadsync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitFile, cfg.SyncGitBranch, opts...))
		logger.Info("sync git destination enabled", "repo", cfg.SyncGitRepo, "file", cfg.SyncGitFile)
	}
	return dests
}
