package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zorrokid/emulation-file-manager/internal/cloudsync"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload stored content to the object store",
	Long: `Mirror local blobs into the configured S3-compatible bucket.

Every file info without sync history is queued, then pending and
previously failed entries are uploaded in batches. Failed uploads are
recorded and retried on the next pass. With --watch the command keeps
running and repeats the pass on an interval until interrupted.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolP("watch", "w", false, "keep running and sync on an interval")
	syncCmd.Flags().Duration("interval", 5*time.Minute, "pass interval in watch mode")
}

func runSync(cmd *cobra.Command, args []string) error {
	applyLogFlags()

	watch, _ := cmd.Flags().GetBool("watch")
	interval, _ := cmd.Flags().GetDuration("interval")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	remote, err := connectCloud(ctx, cat)
	if err != nil {
		return err
	}

	logger := newEventLogger()
	defer logger.Close()

	engine := cloudsync.NewEngine(cat, openContent(cat), remote, logger)

	progress, done := newProgressConsumer("Uploading")
	defer done()

	if watch {
		util.InfoLog("Syncing every %v, Ctrl-C to stop", interval)
		err := engine.Run(ctx, interval, progress)
		if errors.Is(err, util.ErrCancelled) {
			util.InfoLog("Sync stopped")
			return nil
		}
		return err
	}

	startTime := time.Now()
	sum, err := engine.RunOnce(ctx, progress)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	util.SuccessLog("Sync pass complete in %v", time.Since(startTime).Round(time.Millisecond))
	util.InfoLog("  Queued: %d", sum.Prepared)
	util.InfoLog("  Uploaded: %d", sum.Uploaded)
	if sum.Failed > 0 {
		util.WarnLog("  Failed: %d (will be retried on the next pass)", sum.Failed)
	}

	return nil
}
