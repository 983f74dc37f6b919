package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/salonhq/salon-api/internal/config"
	bookingHandler "github.com/salonhq/salon-api/internal/handler/booking"
	branchHandler "github.com/salonhq/salon-api/internal/handler/branch"
	catalogHandler "github.com/salonhq/salon-api/internal/handler/catalog"
	couponHandler "github.com/salonhq/salon-api/internal/handler/coupon"
	healthHandler "github.com/salonhq/salon-api/internal/handler/health"
	inventoryHandler "github.com/salonhq/salon-api/internal/handler/inventory"
	membershipHandler "github.com/salonhq/salon-api/internal/handler/membership"
	reminderHandler "github.com/salonhq/salon-api/internal/handler/reminder"
	staffHandler "github.com/salonhq/salon-api/internal/handler/staff"
	userHandler "github.com/salonhq/salon-api/internal/handler/user"
	"github.com/salonhq/salon-api/internal/middleware"
	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/notifier"
	"github.com/salonhq/salon-api/internal/payment"
	"github.com/salonhq/salon-api/internal/repository/postgres"
	"github.com/salonhq/salon-api/internal/router"
	bookingService "github.com/salonhq/salon-api/internal/service/booking"
	branchService "github.com/salonhq/salon-api/internal/service/branch"
	"github.com/salonhq/salon-api/internal/service/calendar"
	catalogService "github.com/salonhq/salon-api/internal/service/catalog"
	couponService "github.com/salonhq/salon-api/internal/service/coupon"
	inventoryService "github.com/salonhq/salon-api/internal/service/inventory"
	membershipService "github.com/salonhq/salon-api/internal/service/membership"
	reminderService "github.com/salonhq/salon-api/internal/service/reminder"
	staffService "github.com/salonhq/salon-api/internal/service/staff"
	userService "github.com/salonhq/salon-api/internal/service/user"
	"github.com/salonhq/salon-api/pkg/auth"
	"github.com/salonhq/salon-api/pkg/logger"
	redisBroker "github.com/salonhq/salon-api/pkg/messaging/redis"
	"github.com/salonhq/salon-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	l := logger.New(&logger.Config{Level: level, Console: cfg.Logging.Console})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		l.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisBroker.NewBroker(redisBroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &l.ZL)
	if err != nil {
		l.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.New("salon")

	// Repositories
	branchRepo := postgres.NewBranchRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	catalogRepo := postgres.NewCatalogRepository(db)
	userRepo := postgres.NewUserRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	couponRepo := postgres.NewCouponRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)
	reminderRepo := postgres.NewReminderRepository(db)

	// Notification channels
	notifiers := notifier.NewRegistry()
	notifiers.Register(model.ReminderChannelEmail, notifier.NewEmailNotifier(notifier.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}))
	twilio := notifier.NewTwilioNotifier(notifier.TwilioConfig{
		AccountSID:   cfg.Twilio.AccountSID,
		AuthToken:    cfg.Twilio.AuthToken,
		FromNumber:   cfg.Twilio.FromNumber,
		WhatsAppFrom: cfg.Twilio.WhatsAppFrom,
	})
	notifiers.Register(model.ReminderChannelSMS, twilio)
	notifiers.Register(model.ReminderChannelWhatsApp, twilio)

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	calendarSvc := calendar.NewService(branchRepo)
	reminderSvc := reminderService.NewService(reminderRepo, userRepo, notifiers, l, m)
	paymentProvider := payment.NewOfflineProvider(&l.ZL)
	bookingSvc := bookingService.NewService(
		appointmentRepo, couponRepo, membershipRepo, catalogRepo, staffRepo,
		calendarSvc, reminderSvc, paymentProvider, broker, l, m,
	)
	branchSvc := branchService.NewService(branchRepo, calendarSvc, l)
	staffSvc := staffService.NewService(staffRepo, l)
	catalogSvc := catalogService.NewService(catalogRepo, l)
	couponSvc := couponService.NewService(couponRepo, l)
	membershipSvc := membershipService.NewService(membershipRepo, l)
	inventorySvc := inventoryService.NewService(inventoryRepo, l)
	userSvc := userService.NewService(userRepo, jwtSvc, l)

	// Router
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	r := router.New(
		l,
		authMiddleware,
		healthHandler.NewHandler(db),
		userHandler.NewHandler(userSvc),
		router.Config{
			RateLimit:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:  cfg.RateLimit.Burst,
			CORSConfig: middleware.DefaultCORSConfig(),
			Timeout:    cfg.Server.RequestTimeout,
		},
		bookingHandler.NewHandler(bookingSvc),
		branchHandler.NewHandler(branchSvc, calendarSvc),
		staffHandler.NewHandler(staffSvc),
		catalogHandler.NewHandler(catalogSvc),
		couponHandler.NewHandler(couponSvc),
		membershipHandler.NewHandler(membershipSvc),
		inventoryHandler.NewHandler(inventorySvc),
		reminderHandler.NewHandler(reminderSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		l.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Fatal(err, "forced shutdown")
	}
	l.Info("server stopped")
}
