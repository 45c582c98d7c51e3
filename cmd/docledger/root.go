package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/financeai/docledger/internal/common"
	"github.com/financeai/docledger/internal/extract"
	"github.com/financeai/docledger/internal/ingest"
	"github.com/financeai/docledger/internal/oracle"
	"github.com/financeai/docledger/internal/organize"
	"github.com/financeai/docledger/internal/session"
	"github.com/financeai/docledger/internal/store"
)

var debugLogs bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "docledger",
		Short:        "Ingest financial documents into a schema-evolving relational store",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if debugLogs {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}
	root.PersistentFlags().BoolVar(&debugLogs, "debug", false, "enable debug logging")

	root.AddCommand(newProcessCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newCheckCmd())
	return root
}

// pipeline bundles everything a command needs, plus the store handle for
// shutdown.
type pipeline struct {
	cfg         *common.Config
	logger      *slog.Logger
	coordinator *session.Coordinator
	store       *store.Store
	oracle      *oracle.Oracle
}

func buildPipeline(ctx context.Context) (*pipeline, error) {
	logger := slog.Default()

	cfg, err := common.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, store.Config{
		Dialect:          cfg.Store.Dialect,
		DSN:              cfg.Store.DSN,
		MaxConns:         cfg.Store.MaxConns,
		MinConns:         cfg.Store.MinConns,
		DialTimeout:      cfg.Store.DialTimeout,
		StatementTimeout: cfg.Store.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, common.WrapError(err, "open store")
	}

	backend := oracle.NewOllamaBackend(oracle.OllamaConfig{
		URL:     cfg.Oracle.URL,
		Timeout: cfg.Oracle.Timeout,
	}, logger)
	orc := oracle.New(backend, logger)

	ex := extract.NewStage(logger, orc, extract.Config{
		Model:          cfg.Oracle.ExtractionModel,
		Temperature:    cfg.Oracle.Temperature,
		MaxTokens:      cfg.Oracle.MaxTokens,
		SampleRows:     cfg.Pipeline.SampleRows,
		MaxPromptChars: cfg.Pipeline.MaxPromptChars,
	})
	org := organize.NewStage(logger, orc, organize.DefaultRegistry(), organize.Config{
		Model:          cfg.Oracle.OrganizerModel,
		Temperature:    cfg.Oracle.Temperature,
		MaxTokens:      cfg.Oracle.MaxTokens,
		MaxPromptChars: cfg.Pipeline.MaxPromptChars,
	})
	reader := ingest.NewReader(logger)
	coord := session.NewCoordinator(logger, ex, org, st, reader, cfg.Pipeline.WorkDir)

	return &pipeline{
		cfg:         cfg,
		logger:      logger,
		coordinator: coord,
		store:       st,
		oracle:      orc,
	}, nil
}

func (p *pipeline) close() {
	if err := p.store.Close(); err != nil {
		p.logger.Error("store close failed", "error", err)
	}
}
