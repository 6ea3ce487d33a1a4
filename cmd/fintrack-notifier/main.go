package main

import (
	"context"
	"errors"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/notify"
)

func main() {
	cli.LoadEnvFile()

	// before config so validation failures are logged at the default level
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), nil)
	logger.Info("Starting fintrack-notifier", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notifier")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	tracker := notify.NewTracker(logger, nil)

	scheduler, err := tracker.ScheduleDigest(context.Background(), cfg.DigestSchedule)
	if err != nil {
		logger.Error("Failed to schedule digest", log.FieldError, err, "schedule", cfg.DigestSchedule)
		os.Exit(1)
	}
	logger.Info("Digest scheduled", "schedule", cfg.DigestSchedule)

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func() {
		<-scheduler.Stop().Done()
	})

	logger.Info("Consuming change events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeChanges(ctx, tracker.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped", log.FieldOperation, log.OpConsume, log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	tracker.Digest(context.Background())
	logger.Info("Notifier stopped gracefully")
}
