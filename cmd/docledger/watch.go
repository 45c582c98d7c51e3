package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/financeai/docledger/constants"
	"github.com/financeai/docledger/internal/ingest"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and process new financial documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := buildPipeline(ctx)
			if err != nil {
				return err
			}
			defer p.close()

			dir := p.cfg.Watch.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no watch directory: pass one or set WATCH_DIR")
			}

			scanner, err := ingest.NewScanner(p.logger, dir, p.cfg.Watch.LedgerPath)
			if err != nil {
				return err
			}

			handle := func(path, hash string) {
				data, err := os.ReadFile(path)
				if err != nil {
					p.logger.Warn("read failed", "path", path, "error", err)
					return
				}
				kind := constants.KindForExt(filepath.Ext(path))
				res, err := p.coordinator.ProcessArtifact(ctx, data, kind, filepath.Base(path))
				if err != nil {
					p.logger.Error("processing failed", "path", path, "error", err)
					return
				}
				scanner.MarkProcessed(hash)
				fmt.Printf("%s: %d records written (session %s)\n",
					filepath.Base(path), res.RecordsWritten, res.SessionID)
			}

			// catch up on files already sitting in the directory
			pending, err := scanner.ScanNew()
			if err != nil {
				return err
			}
			for _, f := range pending {
				handle(f.Path, f.Hash)
			}

			events, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Dir:      dir,
				Debounce: p.cfg.Watch.Debounce,
			}, p.logger)
			if err != nil {
				return err
			}

			fmt.Printf("Watching %s (ctrl-c to stop)\n", dir)
			for path := range events {
				hash, err := ingest.HashFile(path)
				if err != nil {
					p.logger.Warn("hash failed", "path", path, "error", err)
					continue
				}
				// the watcher fires on every write; the ledger dedupes
				if scanner.IsProcessed(hash) {
					continue
				}
				handle(path, hash)
			}
			return nil
		},
	}
}
