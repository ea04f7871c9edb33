package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"

	"github.com/habitforge/mfa-service/internal/identity"
	"github.com/habitforge/mfa-service/internal/mfa"
	"github.com/habitforge/mfa-service/internal/storage/postgres"
	transport "github.com/habitforge/mfa-service/internal/transport/http"
	"github.com/habitforge/mfa-service/migrations"
	"github.com/habitforge/mfa-service/pkg/audit"
	"github.com/habitforge/mfa-service/pkg/email"
	"github.com/habitforge/mfa-service/pkg/httpserver"
	"github.com/habitforge/mfa-service/pkg/logger"
	"github.com/habitforge/mfa-service/pkg/pg"
)

const serviceName = "mfa-service"

type appConfig struct {
	Logger   logger.Config
	Server   httpserver.Config
	Postgres pg.Config
	Email    email.Config
	Identity identity.Config
	MFA      mfa.Config
}

func main() {
	var cfg appConfig
	if err := env.Parse(&cfg); err != nil {
		logger.New().Error("failed to parse configuration", "error", err)
		os.Exit(1)
	}

	log := logger.NewFromConfig(cfg.Logger, serviceName)
	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("service exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.FS, "."); err != nil {
		return err
	}

	store := postgres.NewStore(pool)
	auditLog := audit.NewLogger(postgres.NewAuditStorage(pool))

	mailer, err := newMailer(cfg.Email, log)
	if err != nil {
		return err
	}

	svc, err := mfa.New(cfg.MFA, store, mailer, auditLog, mfa.WithLogger(log))
	if err != nil {
		return err
	}

	provider, err := identity.NewJWTProvider(cfg.Identity)
	if err != nil {
		return err
	}

	router := transport.NewRouter(svc, provider, transport.RouterOptions{
		Logger:  log,
		Metrics: transport.NewMetrics(),
		HealthChecks: []func(*http.Request) error{
			func(r *http.Request) error { return pool.Ping(r.Context()) },
		},
	})

	return httpserver.New(cfg.Server, log).Run(ctx, router)
}

// newMailer prefers Postmark and falls back to the logging dev sender
// when no server token is configured.
func newMailer(cfg email.Config, log *slog.Logger) (email.EmailSender, error) {
	if cfg.PostmarkServerToken == "" {
		log.Warn("no Postmark token configured, using dev email sender")
		return email.NewDevSender(log), nil
	}
	return email.NewPostmarkClient(cfg)
}
