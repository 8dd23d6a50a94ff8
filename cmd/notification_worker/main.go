package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-crud/config"
	"github.com/oksasatya/go-social-crud/pkg/helpers"
	"github.com/oksasatya/go-social-crud/pkg/mailer"
)

// Consumes notification email jobs published by the API and delivers them
// through Mailgun.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notification-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; notification worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQNotificationQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	q, err := helpers.NewRabbitQueue(cfg.RabbitMQURL, cfg.RabbitMQNotificationQueue)
	if err != nil {
		logger.Fatalf("amqp: %v", err)
	}
	defer q.Close()

	msgs, err := q.Consume(16)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			sendCtx, sendCancel := context.WithTimeout(ctx, 15*time.Second)
			disp, err := mailer.Process(sendCtx, msg.Body, mg)
			sendCancel()

			fields := logrus.Fields{"delivery_tag": msg.DeliveryTag}
			switch disp {
			case mailer.Ack:
				_ = msg.Ack(false)
			case mailer.Requeue:
				helpers.LogError(logger, "send failed; requeueing", err, fields)
				_ = msg.Nack(false, true)
			case mailer.Drop:
				helpers.LogError(logger, "dropping undeliverable job", err, fields)
				_ = msg.Nack(false, false)
			}
		}
	}()

	logger.Infof("notification worker listening on queue=%s", cfg.RabbitMQNotificationQueue)
	<-stop
	logger.Info("shutting down...")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
