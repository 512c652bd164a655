package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/coursedesk/config"
	"github.com/Domenick1991/coursedesk/internal/email"
	"github.com/Domenick1991/coursedesk/internal/kafka"
	"github.com/Domenick1991/coursedesk/internal/logger"
	"github.com/Domenick1991/coursedesk/internal/repository"
	"github.com/Domenick1991/coursedesk/internal/service/notification"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	events := repository.NewEventRepository(pool)
	if err := events.EnsureSchema(ctx); err != nil {
		lg.Fatal("prepare schema", zap.Error(err))
	}

	service := notification.NewNotificationService(events, email.NewSender(lg.Named("email")), lg.Named("notification"))

	topics := []string{cfg.Kafka.CheckoutTopic, cfg.Kafka.BookingTopic}
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, topics, lg.Named("kafka"))
	defer consumer.Close()

	lg.Info("worker started", zap.Strings("topics", topics))
	err = consumer.Consume(ctx, service.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("consumer stopped", zap.Error(err))
		return
	}
	lg.Info("worker stopped")
}
