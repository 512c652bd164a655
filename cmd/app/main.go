package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/coursedesk/api"
	"github.com/Domenick1991/coursedesk/config"
	"github.com/Domenick1991/coursedesk/internal/backend"
	"github.com/Domenick1991/coursedesk/internal/bootstrap"
	"github.com/Domenick1991/coursedesk/internal/cache"
	"github.com/Domenick1991/coursedesk/internal/clock"
	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/Domenick1991/coursedesk/internal/kafka"
	"github.com/Domenick1991/coursedesk/internal/logger"
	"github.com/Domenick1991/coursedesk/internal/service/auth"
	"github.com/Domenick1991/coursedesk/internal/service/booking"
	"github.com/Domenick1991/coursedesk/internal/service/catalog"
	"github.com/Domenick1991/coursedesk/internal/service/checkout"
	"github.com/Domenick1991/coursedesk/internal/service/session"
	"github.com/gin-gonic/gin"
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
	if cfg.Log.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisCache := cache.NewRedisCache(cfg.Redis)
	defer redisCache.Close()

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), backend.WithLogger(lg))
	clk := clock.NewSystem()

	store := session.NewStore(redisCache, client, lg.Named("session"))

	catalogService := catalog.NewCatalogService(client, redisCache, lg.Named("catalog"))
	authGateway := auth.NewGateway(client, store, lg.Named("auth"))

	checkoutOpts := []checkout.CheckoutServiceOption{
		checkout.WithServiceClock(clk),
		checkout.WithDefaultCurrency(cfg.Checkout.Currency),
	}
	bookingOpts := []booking.BookingServiceOption{
		booking.WithClock(clk),
		booking.WithLocation(cfg.Booking.Location()),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, lg.Named("kafka"))
		defer producer.Close()
		checkoutOpts = append(checkoutOpts, checkout.WithEvents(producer, cfg.Kafka.CheckoutTopic))
		bookingOpts = append(bookingOpts, booking.WithProducer(producer, cfg.Kafka.BookingTopic))
	}

	checkoutService := checkout.NewCheckoutService(catalogService, store, client, lg.Named("checkout"), checkoutOpts...)
	bookingService := booking.NewBookingService(
		client,
		store,
		domain.TimeSlotCatalog(cfg.Booking.TimeSlots),
		cfg.Booking.HorizonDays,
		lg.Named("booking"),
		bookingOpts...,
	)

	router := api.NewRouter(api.Handlers{
		Session:  api.NewSessionHandler(store, client),
		Auth:     api.NewAuthHandler(authGateway),
		Packages: api.NewPackageHandler(catalogService),
		Checkout: api.NewCheckoutHandler(checkoutService),
		Bookings: api.NewBookingHandler(bookingService),
	}, cfg.RateLimit, lg)

	// The session restores in the background; /session reports loading until
	// the identity refresh settles.
	initSession := bootstrap.WithStartup(func(ctx context.Context) {
		if err := store.Initialize(ctx); err != nil {
			lg.Error("initialize session", zap.Error(err))
		}
	})
	if err := bootstrap.Run(ctx, cfg.HTTP.Address, router, lg, initSession); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
