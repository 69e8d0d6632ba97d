package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/chrismelba/noirplan/internal/ai"
	"github.com/chrismelba/noirplan/internal/broker"
	"github.com/chrismelba/noirplan/internal/db"
	"github.com/chrismelba/noirplan/internal/envstruct"
	"github.com/chrismelba/noirplan/internal/errors"
	"github.com/chrismelba/noirplan/internal/gen"
	"github.com/chrismelba/noirplan/internal/logging"
	"github.com/chrismelba/noirplan/internal/pipeline"
	"github.com/chrismelba/noirplan/internal/pprofserver"
	"github.com/chrismelba/noirplan/internal/store"
)

type application struct {
	logger   *slog.Logger
	store    *store.Store
	pipeline *pipeline.Pipeline
	broker   *broker.ChannelBroker[string, string]
}

type config struct {
	Addr      string `env:"NOIRPLAN_ADDR" envDefault:"localhost:4000"`
	PprofPort string `env:"NOIRPLAN_PPROF_PORT" envDefault:""`
	SQLiteURL string `env:"NOIRPLAN_SQLITE_URL" envDefault:"./noirplan.sqlite"`
	APIKey    string `env:"OPENAI_API_KEY"`
	BaseURL   string `env:"OPENAI_BASE_URL" envDefault:""`
	Model     string `env:"OPENAI_MODEL" envDefault:""`
}

func main() {
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})))

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded")
	}

	if err := run(context.Background(), logger, os.LookupEnv); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "read configuration")
	}

	// pprof listens on localhost only so that it's not open to the world.
	if cfg.PprofPort != "" {
		pprofserver.Launch(cfg.PprofPort, logger)
	}

	dbs, err := db.NewDB(cfg.SQLiteURL)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	logger.Info("connected to db")

	documents, err := store.New(ctx, dbs, logger)
	if err != nil {
		return errors.Wrap(err, "restore session")
	}

	aiClient := ai.NewClient(ai.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	}, logger)

	progressBroker := broker.NewChannelBroker[string, string]()
	go progressBroker.Start()
	defer progressBroker.Stop()

	app := application{
		logger:   logger,
		store:    documents,
		pipeline: pipeline.New(documents, gen.NewService(aiClient, logger), logger),
		broker:   progressBroker,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}
