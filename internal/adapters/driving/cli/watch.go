package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cartalabs/carta/internal/core/services"
	"github.com/cartalabs/carta/internal/watcher"
)

var (
	watchRoom string
	watchDir  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a directory and process uploads continuously",
	Long: `Watches a directory for dropped files, registers them into a room
and keeps a background pump running that drives every pending file
through chunking and embedding. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchRoom, "room", "r", "", "room to upload into (required)")
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "directory to watch (default: config watch_dir)")
	_ = watchCmd.MarkFlagRequired("room")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	dir := watchDir
	if dir == "" && cfg != nil {
		dir = cfg.Processor.WatchDir
	}
	if dir == "" {
		return errors.New("no directory to watch: pass --dir or set processor.watch_dir")
	}

	w, err := watcher.New(dir, watchRoom, ingestService)
	if err != nil {
		return err
	}

	interval := services.DefaultPumpInterval
	if cfg != nil && cfg.Processor.PumpIntervalSeconds > 0 {
		interval = time.Duration(cfg.Processor.PumpIntervalSeconds) * time.Second
	}
	pump := services.NewPump(fileStore, processor, interval)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pumpDone := make(chan error, 1)
	go func() { pumpDone <- pump.Start(ctx) }()

	cmd.Printf("Watching %s (room %s). Ctrl-C to stop.\n", dir, watchRoom)
	err = w.Start(ctx)
	cancel()
	<-pumpDone

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
