package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"volunteermatching/config"
	"volunteermatching/internal/adapters/email"
	"volunteermatching/internal/domain"
	"volunteermatching/internal/repository/memory"
	"volunteermatching/internal/repository/postgres"
	"volunteermatching/internal/services"

	_ "github.com/lib/pq"
)

const app = "matchengine"

var rootCmd = &cobra.Command{
	Use:          app,
	Short:        "matchengine matches volunteers to events and sends event reminders",
	SilenceUsage: true,
}

// engine is the wired set of components shared by every subcommand.
type engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sql.DB
	matches   domain.MatchService
	scheduler *services.ReminderScheduler
}

func newEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load email templates: %w", err)
	}

	volunteers := postgres.NewVolunteerRepository(db)
	events := postgres.NewEventRepository(db)
	store, ledger := newNotificationStores(cfg.NotificationBackend, db)
	retry := services.RetryPolicy{
		Attempts: cfg.RegistryRetryAttempts,
		Delay:    cfg.RegistryRetryDelay,
		MaxDelay: 20 * cfg.RegistryRetryDelay,
		Timeout:  cfg.RegistryTimeout,
	}

	dispatcher := services.NewDispatcher(store, ledger, services.NewEmailService(mailer, renderer, logger), nil, logger)
	matches := services.NewMatchService(volunteers, events, store, dispatcher, nil, logger, services.MatchServiceConfig{
		MaxMatches: cfg.MaxMatches,
		Retry:      retry,
	})
	scheduler := services.NewReminderScheduler(events, volunteers, dispatcher, ledger, nil, logger, services.SchedulerConfig{
		Interval:   cfg.ReminderInterval,
		Window:     cfg.ReminderWindow,
		MaxMatches: cfg.MaxMatches,
		Location:   cfg.Location,
		Retry:      retry,
	})

	return &engine{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		matches:   matches,
		scheduler: scheduler,
	}, nil
}

// newNotificationStores returns the notification store and reminder ledger
// for backend. They always share a backend so a ledger entry never outlives
// the notification it guards.
func newNotificationStores(backend string, db *sql.DB) (domain.NotificationStore, domain.ReminderLedger) {
	if backend == "memory" {
		return memory.NewNotificationStore(), memory.NewReminderLedger()
	}
	return postgres.NewNotificationRepository(db), postgres.NewReminderLedgerRepository(db)
}

func (e *engine) Close() error {
	return e.db.Close()
}
