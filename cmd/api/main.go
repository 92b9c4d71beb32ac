package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parts-and-service/internal/api"
	"parts-and-service/internal/cache"
	"parts-and-service/internal/config"
	"parts-and-service/internal/events"
	"parts-and-service/internal/modules/bookings"
	"parts-and-service/internal/modules/catalog"
	"parts-and-service/internal/modules/orders"
	"parts-and-service/internal/modules/tracking"
	"parts-and-service/internal/modules/users"
	"parts-and-service/internal/storage"
	"parts-and-service/pkg/email"
	"parts-and-service/pkg/payment"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	rdb := cache.New(cfg.RedisAddr)
	defer rdb.Close()
	trackingCache := cache.NewTrackingCache(rdb)

	var publisher events.Publisher = events.NopPublisher{}
	var kafkaPublisher *events.KafkaPublisher
	if brokers := cfg.BrokerList(); len(brokers) > 0 {
		kafkaPublisher = events.NewKafkaPublisher(brokers, 256)
		kafkaPublisher.Start(ctx)
		publisher = kafkaPublisher
	}

	var sender email.Sender = email.NopSender{}
	if cfg.EmailSender != "" {
		sesSender, err := email.NewSESSender(ctx, cfg.EmailSender, cfg.AWSRegion)
		if err != nil {
			log.Printf("SES unavailable, transactional mail disabled: %v", err)
		} else {
			sender = sesSender
		}
	}

	paymentService := payment.NewStripeService(cfg.StripeAPIKey)

	userRepo := users.NewRepository(db)
	oauthConfig := users.NewGoogleOAuthConfig(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)
	userService := users.NewService(userRepo, cfg.JWTSecret, oauthConfig)

	productRepo := catalog.NewRepository(db)
	productService := catalog.NewService(productRepo, userRepo)

	orderRepo := orders.NewRepository(db)
	orderService := orders.NewService(orderRepo, paymentService, publisher, trackingCache, sender)

	bookingRepo := bookings.NewRepository(db)
	bookingService := bookings.NewService(bookingRepo, userRepo, publisher, trackingCache, sender)

	trackingRepo := tracking.NewRepository(db)
	trackingService := tracking.NewService(trackingRepo, trackingCache)

	e := api.NewRouter(cfg, api.Handlers{
		Users:    users.NewHandler(userService),
		Catalog:  catalog.NewHandler(productService),
		Orders:   orders.NewHandler(orderService),
		Bookings: bookings.NewHandler(bookingService),
		Tracking: tracking.NewHandler(trackingService),
	})

	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()
	log.Printf("listening on :%s", cfg.ServerPort)

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if kafkaPublisher != nil {
		kafkaPublisher.WaitClosed()
	}
}
