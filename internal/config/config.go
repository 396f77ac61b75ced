// Package config loads the dashboard server configuration from the
// environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GRPCDisabled turns off the gRPC health listener when used as CRM_GRPC_ADDR.
const GRPCDisabled = "off"

type Config struct {
	SheetURL     string        // CRM_SHEET_URL (required)
	HTTPAddr     string        // CRM_HTTP_ADDR (default ":8080")
	GRPCAddr     string        // CRM_GRPC_ADDR (default ":9090"; "off" = disabled, stored as "")
	PollInterval time.Duration // CRM_POLL_INTERVAL (default 5m)
	AuthToken    string        // CRM_AUTH_TOKEN (optional, empty = auth disabled)
	NATSURL      string        // CRM_NATS_URL (optional, empty = no events)
	DatabaseURL  string        // CRM_DATABASE_URL (optional, enables the edit journal)
	JournalTTL   time.Duration // CRM_JOURNAL_RETENTION (default 0 = keep forever)
	LogLevel     slog.Level    // CRM_LOG_LEVEL (default info)
	Layout       string        // CRM_LAYOUT (default "normal")

	// Assistant settings
	AnthropicAPIKey  string // ANTHROPIC_API_KEY (enables the assistant)
	AnthropicURL     string // CRM_ANTHROPIC_URL (default "https://api.anthropic.com")
	AssistantModel   string // CRM_ASSISTANT_MODEL (default "claude-3-5-sonnet-20241022")
	AssistantMaxRows int    // CRM_ASSISTANT_MAX_ROWS (default 50)

	// Sync settings
	SyncInterval   time.Duration // CRM_SYNC_INTERVAL (default 0 = disabled)
	SyncS3Bucket   string        // CRM_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // CRM_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // CRM_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // CRM_SYNC_S3_KEY (default "leadboard/leads.jsonl")
	SyncS3Archive  bool          // CRM_SYNC_S3_ARCHIVE (keep dated copies)
	SyncGitRepo    string        // CRM_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // CRM_SYNC_GIT_FILE (default "leads.jsonl")
	SyncGitBranch  string        // CRM_SYNC_GIT_BRANCH (default "main")
	SyncGitAuthor  string        // CRM_SYNC_GIT_AUTHOR (optional commit author)
}

func Load() (*Config, error) {
	c := &Config{
		SheetURL:        os.Getenv("CRM_SHEET_URL"),
		HTTPAddr:        envOrDefault("CRM_HTTP_ADDR", ":8080"),
		GRPCAddr:        envOrDefault("CRM_GRPC_ADDR", ":9090"),
		AuthToken:       os.Getenv("CRM_AUTH_TOKEN"),
		NATSURL:         os.Getenv("CRM_NATS_URL"),
		DatabaseURL:     os.Getenv("CRM_DATABASE_URL"),
		Layout:          envOrDefault("CRM_LAYOUT", "normal"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicURL:    envOrDefault("CRM_ANTHROPIC_URL", "https://api.anthropic.com"),
		AssistantModel:  envOrDefault("CRM_ASSISTANT_MODEL", "claude-3-5-sonnet-20241022"),
		SyncS3Bucket:    os.Getenv("CRM_SYNC_S3_BUCKET"),
		SyncS3Endpoint:  os.Getenv("CRM_SYNC_S3_ENDPOINT"),
		SyncS3Region:    envOrDefault("CRM_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:       envOrDefault("CRM_SYNC_S3_KEY", "leadboard/leads.jsonl"),
		SyncGitRepo:     os.Getenv("CRM_SYNC_GIT_REPO"),
		SyncGitFile:     envOrDefault("CRM_SYNC_GIT_FILE", "leads.jsonl"),
		SyncGitBranch:   envOrDefault("CRM_SYNC_GIT_BRANCH", "main"),
		SyncGitAuthor:   os.Getenv("CRM_SYNC_GIT_AUTHOR"),
	}
	if c.SheetURL == "" {
		return nil, fmt.Errorf("CRM_SHEET_URL is required")
	}
	if strings.EqualFold(c.GRPCAddr, GRPCDisabled) {
		c.GRPCAddr = ""
	}

	var err error
	if c.PollInterval, err = durationEnv("CRM_POLL_INTERVAL", "5m"); err != nil {
		return nil, err
	}
	if c.PollInterval <= 0 {
		return nil, fmt.Errorf("CRM_POLL_INTERVAL: must be positive")
	}
	if c.SyncInterval, err = durationEnv("CRM_SYNC_INTERVAL", "0"); err != nil {
		return nil, err
	}
	if c.JournalTTL, err = durationEnv("CRM_JOURNAL_RETENTION", "0"); err != nil {
		return nil, err
	}

	rows := envOrDefault("CRM_ASSISTANT_MAX_ROWS", "50")
	if c.AssistantMaxRows, err = strconv.Atoi(rows); err != nil || c.AssistantMaxRows <= 0 {
		return nil, fmt.Errorf("CRM_ASSISTANT_MAX_ROWS: invalid value %q", rows)
	}

	if v := os.Getenv("CRM_SYNC_S3_ARCHIVE"); v != "" {
		if c.SyncS3Archive, err = strconv.ParseBool(v); err != nil {
			return nil, fmt.Errorf("CRM_SYNC_S3_ARCHIVE: %w", err)
		}
	}

	if err := c.LogLevel.UnmarshalText([]byte(envOrDefault("CRM_LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("CRM_LOG_LEVEL: %w", err)
	}

	switch c.Layout {
	case "normal", "kiosk":
	default:
		return nil, fmt.Errorf("CRM_LAYOUT: invalid value %q (want normal or kiosk)", c.Layout)
	}

	return c, nil
}

func durationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
