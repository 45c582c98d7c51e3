package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/financeai/docledger/internal/ingest"
	"github.com/financeai/docledger/internal/oracle"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the model backend and the store are reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			p, err := buildPipeline(ctx)
			if err != nil {
				return err
			}
			defer p.close()

			healthy := true

			if err := p.oracle.Ping(ctx); err != nil {
				healthy = false
				fmt.Printf("model backend: DOWN (%v)\n", err)
				if errors.Is(err, oracle.ErrBackendUnavailable) {
					fmt.Println("  documents will still be ingested; semantic organization degrades to fallbacks")
				}
			} else {
				fmt.Printf("model backend: OK (%s)\n", p.cfg.Oracle.URL)
				fmt.Printf("  extraction model: %s\n", p.cfg.Oracle.ExtractionModel)
				fmt.Printf("  organizer model:  %s\n", p.cfg.Oracle.OrganizerModel)
			}

			if err := p.store.HealthCheck(ctx, 5*time.Second); err != nil {
				healthy = false
				fmt.Printf("store: DOWN (%v)\n", err)
			} else {
				fmt.Printf("store: OK (%s, %s)\n", p.cfg.Store.Dialect, p.cfg.Store.DSN)
				tables, err := p.store.Tables(ctx)
				if err != nil {
					fmt.Printf("  table listing failed: %v\n", err)
				} else {
					for _, t := range tables {
						fmt.Printf("  table %-24s %d columns\n", t.Name, t.Columns)
					}
				}
			}

			if scanner, err := ingest.NewScanner(p.logger, p.cfg.Watch.Dir, p.cfg.Watch.LedgerPath); err == nil {
				total, dir, ledger := scanner.Stats()
				fmt.Printf("watch: %s (%d files in ledger at %s)\n", dir, total, ledger)
			}

			if !healthy {
				return fmt.Errorf("one or more components unavailable")
			}
			return nil
		},
	}
}
