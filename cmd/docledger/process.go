package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/financeai/docledger/constants"
)

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <file> [file...]",
		Short: "Run files through the extraction pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := buildPipeline(ctx)
			if err != nil {
				return err
			}
			defer p.close()

			processed, failed, written := 0, 0, 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					p.logger.Error("read file failed", "path", path, "error", err)
					failed++
					continue
				}
				kind := constants.KindForExt(filepath.Ext(path))
				res, err := p.coordinator.ProcessArtifact(ctx, data, kind, filepath.Base(path))
				if err != nil {
					p.logger.Error("processing failed",
						"path", path, "session_id", res.SessionID, "error", err)
					failed++
					continue
				}
				processed++
				written += res.RecordsWritten
				fmt.Printf("%s: %d records written (session %s)\n",
					filepath.Base(path), res.RecordsWritten, res.SessionID)
				for _, e := range res.FailedEntities {
					fmt.Printf("  warning: %q failed to persist\n", e)
				}
			}

			fmt.Printf("\nDone: %d processed, %d failed, %d records written\n",
				processed, failed, written)
			if failed > 0 && processed == 0 {
				return fmt.Errorf("all %d files failed", failed)
			}
			return nil
		},
	}
}
