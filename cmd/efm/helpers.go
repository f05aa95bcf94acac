package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/viper"
	"github.com/zorrokid/emulation-file-manager/internal/catalog"
	"github.com/zorrokid/emulation-file-manager/internal/cloud"
	"github.com/zorrokid/emulation-file-manager/internal/contentstore"
	"github.com/zorrokid/emulation-file-manager/internal/fsys"
	"github.com/zorrokid/emulation-file-manager/internal/report"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

// Settings keys for the cloud bucket location. Credentials live in the
// OS keyring, never in the settings table.
const (
	settingCloudEndpoint = "cloud.endpoint"
	settingCloudBucket   = "cloud.bucket"
	settingCloudRegion   = "cloud.region"
	settingCloudUseSSL   = "cloud.use_ssl"
	settingZstdLevel     = "store.zstd_level"
)

// applyLogFlags sets the log level from the global flags
func applyLogFlags() {
	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
}

// openCatalog opens the catalog database named by the --db flag
func openCatalog() (*catalog.Store, error) {
	dbPath := viper.GetString("db")
	util.DebugLog("Opening catalog: %s", dbPath)

	cat, err := catalog.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return cat, nil
}

// openContent builds the content store rooted at the --root flag,
// honoring a configured compression level
func openContent(cat *catalog.Store) *contentstore.Store {
	root := viper.GetString("root")

	level := contentstore.DefaultCompressionLevel
	if raw, err := cat.GetSetting(settingZstdLevel); err == nil && raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			level = parsed
		}
	}

	return contentstore.New(root, fsys.New(), level)
}

// newEventLogger creates the JSONL event logger under artifacts/,
// falling back to a no-op logger when the directory is not writable
func newEventLogger() *report.EventLogger {
	logLevel := report.LevelInfo
	if viper.GetBool("quiet") {
		logLevel = report.LevelWarning
	} else if viper.GetBool("verbose") {
		logLevel = report.LevelDebug
	}

	logger, err := report.NewEventLogger("artifacts", logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}
	if logger.Path() != "" {
		util.InfoLog("Event log: %s", logger.Path())
	}
	return logger
}

// cloudConfig assembles the bucket location from the settings table
func cloudConfig(cat *catalog.Store) (cloud.Config, error) {
	var cfg cloud.Config
	var err error

	if cfg.Endpoint, err = cat.GetSetting(settingCloudEndpoint); err != nil {
		return cfg, err
	}
	if cfg.Bucket, err = cat.GetSetting(settingCloudBucket); err != nil {
		return cfg, err
	}
	if cfg.Region, err = cat.GetSetting(settingCloudRegion); err != nil {
		return cfg, err
	}
	ssl, err := cat.GetSetting(settingCloudUseSSL)
	if err != nil {
		return cfg, err
	}
	cfg.UseSSL = ssl != "false"

	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return cfg, fmt.Errorf("cloud sync is not configured, set %s and %s first: %w",
			settingCloudEndpoint, settingCloudBucket, util.ErrInvalidConfig)
	}
	return cfg, nil
}

// connectCloud loads credentials and opens the object-store session
func connectCloud(ctx context.Context, cat *catalog.Store) (cloud.ObjectStore, error) {
	cfg, err := cloudConfig(cat)
	if err != nil {
		return nil, err
	}

	creds, err := cloud.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("cloud credentials unavailable, run 'efm settings credentials set': %w", err)
	}

	util.DebugLog("Connecting to %s (bucket %s)", cfg.Endpoint, cfg.Bucket)
	return cloud.Connect(ctx, cfg, creds)
}

// parseID parses a positional numeric id argument
func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %q", what, arg)
	}
	return id, nil
}
