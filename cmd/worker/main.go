package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/notifier"
	"github.com/salonhq/salon-api/internal/repository/postgres"
	reminderService "github.com/salonhq/salon-api/internal/service/reminder"
	"github.com/salonhq/salon-api/pkg/logger"
	"github.com/salonhq/salon-api/pkg/metrics"
	"github.com/salonhq/salon-api/pkg/worker"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Config comes entirely from the environment; the worker runs in containers
// where a config file is more trouble than it is worth.
type Config struct {
	DatabaseURL     string        `envconfig:"DATABASE_URL" required:"true"`
	BatchSize       int           `envconfig:"BATCH_SIZE" default:"100"`
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	HealthPort      string        `envconfig:"HEALTH_PORT" default:"8081"`
	CatchupSchedule string        `envconfig:"CATCHUP_SCHEDULE" default:"0 2 * * *"`
	SMTPHost        string        `envconfig:"SMTP_HOST"`
	SMTPPort        int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername    string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword    string        `envconfig:"SMTP_PASSWORD"`
	SMTPFrom        string        `envconfig:"SMTP_FROM"`
	TwilioSID       string        `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioToken     string        `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFrom      string        `envconfig:"TWILIO_FROM_NUMBER"`
	TwilioWhatsApp  string        `envconfig:"TWILIO_WHATSAPP_FROM"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	l := logger.New(&logger.Config{Level: level})

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		l.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("salon_worker")

	userRepo := postgres.NewUserRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)

	notifiers := notifier.NewRegistry()
	notifiers.Register(model.ReminderChannelEmail, notifier.NewEmailNotifier(notifier.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}))
	twilio := notifier.NewTwilioNotifier(notifier.TwilioConfig{
		AccountSID:   cfg.TwilioSID,
		AuthToken:    cfg.TwilioToken,
		FromNumber:   cfg.TwilioFrom,
		WhatsAppFrom: cfg.TwilioWhatsApp,
	})
	notifiers.Register(model.ReminderChannelSMS, twilio)
	notifiers.Register(model.ReminderChannelWhatsApp, twilio)

	reminderSvc := reminderService.NewService(reminderRepo, userRepo, notifiers, l, m)

	processor := worker.NewReminderProcessor(
		appointmentRepo,
		reminderSvc,
		worker.ReminderProcessorConfig{
			BatchSize:    cfg.BatchSize,
			PollInterval: cfg.PollInterval,
		},
		l,
		m,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startHealthServer(cfg.HealthPort, db, l)

	// A nightly catch-up sweep picks up anything the poll loop missed while
	// the worker was down.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.CatchupSchedule, func() {
		if err := processor.ProcessDue(ctx); err != nil {
			l.Error(err, "catch-up sweep failed")
		}
	}); err != nil {
		l.Fatal(err, "invalid catch-up schedule")
	}
	scheduler.Start()
	defer scheduler.Stop()

	go processor.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down worker")
	cancel()
}

func startHealthServer(port string, db *sqlx.DB, l *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			l.ZL.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}
