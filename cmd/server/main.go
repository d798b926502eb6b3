package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/suPer8Hu/luna-backend/internal/ai"
	"github.com/suPer8Hu/luna-backend/internal/config"
	"github.com/suPer8Hu/luna-backend/internal/db"
	"github.com/suPer8Hu/luna-backend/internal/email"
	"github.com/suPer8Hu/luna-backend/internal/httpapi"
	"github.com/suPer8Hu/luna-backend/internal/httpapi/handlers"
	"github.com/suPer8Hu/luna-backend/internal/logging"
	"github.com/suPer8Hu/luna-backend/internal/metrics"
	"github.com/suPer8Hu/luna-backend/internal/store/rabbitmq"
	"github.com/suPer8Hu/luna-backend/internal/store/redisstore"
)

func main() {
	cfg := config.Load()
	l := logging.New("server", cfg.LogLevel)

	gdb, err := db.Connect(cfg.DBDialect, cfg.DBDSN)
	if err != nil {
		l.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(gdb, handlers.AllModels()...); err != nil {
		l.Fatalf("db migrate: %v", err)
	}

	reg := providerRegistry(cfg)
	if _, err := reg.Get(context.Background(), cfg.AIProvider, ""); err != nil {
		l.Warnf("AI_PROVIDER=%q: %v", cfg.AIProvider, err)
	}

	mailer, closeMailer := buildMailer(cfg, l)
	defer closeMailer()

	var cooldown handlers.ResetCooldown
	if cfg.ResetRequestCooldown > 0 {
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rds.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rds.Ping(pingCtx); err != nil {
			l.Warnf("redis ping failed, reset cooldown will fail open: %v", err)
		}
		cancel()
		cooldown = rds
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	h := handlers.NewHandler(gdb, cfg, l, reg, mailer, cooldown)
	r := httpapi.NewRouter(h, prometheus.DefaultGatherer)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		l.Infof("listening on %s (ai=%s email=%s)", cfg.HTTPAddr, cfg.AIProvider, cfg.EmailTransport)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	l.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Errorf("shutdown: %v", err)
	}
}

func providerRegistry(cfg config.Config) *ai.Registry {
	opts := ai.Options{MaxTokens: cfg.AIMaxTokens, Temperature: cfg.AITemperature}
	pick := func(model, def string) string {
		if m := strings.TrimSpace(model); m != "" {
			return m
		}
		return def
	}

	reg := ai.NewRegistry()
	reg.Register("groq", func(_ context.Context, model string) (ai.Provider, error) {
		return ai.NewGroqProvider(cfg.GroqBaseURL, cfg.GroqAPIKey, pick(model, cfg.GroqModel), opts), nil
	})
	reg.Register("openrouter", func(_ context.Context, model string) (ai.Provider, error) {
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, pick(model, cfg.OpenRouterModel),
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName, opts), nil
	})
	reg.Register("ollama", func(_ context.Context, model string) (ai.Provider, error) {
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, pick(model, cfg.OllamaModel), opts), nil
	})
	return reg
}

func buildMailer(cfg config.Config, l *log.Logger) (email.Mailer, func()) {
	switch cfg.EmailTransport {
	case "smtp":
		return email.NewSMTPMailer(smtpConfig(cfg)), func() {}
	case "queue":
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			l.Fatalf("rabbit publisher: %v", err)
		}
		return email.NewQueueMailer(pub), func() { _ = pub.Close() }
	default:
		return email.NewLogMailer(l), func() {}
	}
}

func smtpConfig(cfg config.Config) email.SMTPConfig {
	return email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}
}
