// Package cli implements the noirplan terminal commands. Every command works
// against the same persisted session the web app uses, so the two front ends
// can be mixed freely.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/db"
	"github.com/chrismelba/noirplan/internal/envstruct"
	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/gen"
	"github.com/chrismelba/noirplan/internal/logging"
	"github.com/chrismelba/noirplan/internal/pipeline"
	"github.com/chrismelba/noirplan/internal/store"
)

var (
	sqliteURL string
	verbose   bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:          "noirplan",
	Short:        "Build a murder mystery party kit",
	Long:         "Generates a complete murder mystery party kit stage by stage: concept, cast, timeline, clues, dossiers and a consistency audit.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&sqliteURL, "db", "", "SQLite path (default: $NOIRPLAN_SQLITE_URL or ./noirplan.sqlite)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

type config struct {
	SQLiteURL string `env:"NOIRPLAN_SQLITE_URL" envDefault:"./noirplan.sqlite"`
	APIKey    string `env:"OPENAI_API_KEY" envDefault:""`
	BaseURL   string `env:"OPENAI_BASE_URL" envDefault:""`
	Model     string `env:"OPENAI_MODEL" envDefault:""`
}

// session is the wired application for one command invocation.
type session struct {
	logger   *slog.Logger
	dbs      *db.DBs
	store    *store.Store
	pipeline *pipeline.Pipeline
}

func openSession(ctx context.Context) (*session, error) {
	// A missing .env file is fine; the variables may come from the shell.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	var cfg config
	if err := envstruct.Populate(&cfg, os.LookupEnv); err != nil {
		return nil, errors.Wrap(err, "read configuration")
	}
	if sqliteURL != "" {
		cfg.SQLiteURL = sqliteURL
	}

	dbs, err := db.NewDB(cfg.SQLiteURL)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	documents, err := store.New(ctx, dbs, logger)
	if err != nil {
		_ = dbs.Close()
		return nil, errors.Wrap(err, "restore session")
	}

	aiClient := ai.NewClient(ai.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	}, logger)

	return &session{
		logger:   logger,
		dbs:      dbs,
		store:    documents,
		pipeline: pipeline.New(documents, gen.NewService(aiClient, logger), logger),
	}, nil
}

func (s *session) Close() error {
	return s.dbs.Close()
}
