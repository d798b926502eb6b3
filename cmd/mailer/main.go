package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/luna-backend/internal/config"
	"github.com/suPer8Hu/luna-backend/internal/email"
	"github.com/suPer8Hu/luna-backend/internal/logging"
	"github.com/suPer8Hu/luna-backend/internal/metrics"
	"github.com/suPer8Hu/luna-backend/internal/store/rabbitmq"
)

const maxAttempts = 3

func mailerConcurrency(n int) int {
	if n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	cfg := config.Load()
	l := logging.New("mailer", cfg.LogLevel)

	mailer := email.NewSMTPMailer(email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	})

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		l.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		l.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareQueues(ch, cfg.RabbitQueue, rabbitmq.DefaultRetryDelay); err != nil {
		l.Fatalf("queue declare: %v", err)
	}

	concurrency := mailerConcurrency(cfg.MailerConcurrency)
	if err := ch.Qos(concurrency, 0, false); err != nil {
		l.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		l.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.MustRegister(prometheus.DefaultRegisterer)
	if cfg.MailerMetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: cfg.MailerMetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			if err := srv.ListenAndServe(); err != nil {
				l.Errorf("metrics listener: %v", err)
			}
		}()
	}

	l.Infof("mailer started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	retries := rabbitmq.NewChannelPublisher(ch, cfg.RabbitQueue)
	deliveries := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range deliveries {
				handleDelivery(ctx, l, retries, mailer, workerID, d)
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			l.Info("mailer shutting down")
			close(deliveries)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				l.Warn("delivery channel closed")
				close(deliveries)
				wg.Wait()
				return
			}
			deliveries <- d
		}
	}
}

func handleDelivery(ctx context.Context, l *log.Logger, retries *rabbitmq.Publisher, mailer email.Mailer, workerID int, d amqp.Delivery) {
	var msg email.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil || msg.To == "" {
		l.Errorf("worker=%d bad message: %v", workerID, err)
		_ = d.Nack(false, false)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	start := time.Now()
	err := mailer.Send(sendCtx, msg)
	cancel()
	metrics.EmailsTotal.WithLabelValues(msg.Kind, metrics.Result(err)).Inc()

	if err == nil {
		l.Debugf("worker=%d sent kind=%s to=%s cost=%s", workerID, msg.Kind, msg.To, time.Since(start))
		if err := d.Ack(false); err != nil {
			l.Errorf("worker=%d ack failed: %v", workerID, err)
		}
		return
	}

	attempt := rabbitmq.Attempts(d) + 1
	l.Warnf("worker=%d send failed kind=%s to=%s attempt=%d err=%v", workerID, msg.Kind, msg.To, attempt, err)
	if attempt >= maxAttempts {
		// dead-letters to <queue>.dlq
		_ = d.Nack(false, false)
		return
	}

	perr := retries.Retry(ctx, d.Body, attempt)
	if perr != nil {
		l.Errorf("worker=%d retry publish failed: %v", workerID, perr)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
