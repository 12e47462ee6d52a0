package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-marketplace/config"
	"github.com/oksasatya/go-ddd-marketplace/internal/infrastructure/search"
	"github.com/oksasatya/go-ddd-marketplace/internal/worker"
	"github.com/oksasatya/go-ddd-marketplace/pkg/helpers"
	"github.com/oksasatya/go-ddd-marketplace/pkg/mailer"
	"github.com/oksasatya/go-ddd-marketplace/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	var sender mailer.Sender
	switch {
	case !cfg.MailSendEnabled:
		logger.Info("MAIL_SEND_ENABLED=false; no mail will be sent")
	case cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "":
		logger.Warn("Mailgun not configured; no mail will be sent")
	default:
		sender = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	}

	var index worker.Indexer
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; user directory will not be updated")
		} else if idx := search.NewUserIndex(es, cfg.ESUsersIndex); idx.Enabled() {
			index = idx
		}
	}

	conn, ch, err := helpers.DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
	if err != nil {
		logger.WithError(err).Fatal("amqp dial")
	}
	defer func() {
		_ = ch.Close()
		_ = conn.Close()
	}()

	// prefetch for fair dispatch across workers
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos")
	}
	deliveries, err := ch.Consume(cfg.RabbitMQEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume")
	}

	retrier, err := helpers.NewRabbitRetrier(ch, cfg.RabbitMQEventsQueue)
	if err != nil {
		logger.WithError(err).Fatal("declare retry queue")
	}

	brand := templates.Brand{MarketplaceName: cfg.MarketplaceName, SupportURL: cfg.SupportURL}
	h := worker.NewEventHandler(sender, index, brand, logger)
	h.Retry = retrier
	h.MaxAttempts = cfg.EventMaxAttempts

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		h.Consume(ctx, deliveries)
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQEventsQueue).Info("event worker listening")
	select {
	case <-ctx.Done():
	case <-done:
		logger.Warn("delivery channel closed")
	}
	logger.Info("shutting down")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
