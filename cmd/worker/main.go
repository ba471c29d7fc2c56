package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/taskflow/core/internal/broker"
	"github.com/taskflow/core/internal/config"
	"github.com/taskflow/core/internal/storage"
	"github.com/taskflow/core/internal/worker"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = log.With().Str("service", "taskflow-worker").Logger()
	if os.Getenv("ENV") == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	root := &cobra.Command{
		Use:   "worker",
		Short: "taskflow due-date scanner and reminder consumer",
	}
	root.AddCommand(runCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("worker exited with error")
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "run the due-date scanner and reminder consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := storage.Migrate(cfg.DatabaseURL); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func runWorker() error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	conn, err := broker.Connect(ctx, cfg.Rabbit)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}
	defer conn.Close()

	publisher, err := broker.NewPublisher(conn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open publisher channel")
	}
	defer publisher.Close()

	consumer, err := broker.NewConsumer(conn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open consumer channel")
	}
	defer consumer.Close()

	scanner := worker.NewDueScanWorker(pool, publisher, cfg.DueScanIntervalSeconds, cfg.DueScanBatchSize)

	go scanner.Run(ctx)
	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	log.Info().Msg("worker started")
	<-ctx.Done()
	log.Info().Msg("worker stopped")
	return nil
}
