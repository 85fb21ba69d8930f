package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/online-shop/internal/cart"
	"github.com/vasiliy-maslov/online-shop/internal/config"
	"github.com/vasiliy-maslov/online-shop/internal/db"
	handler "github.com/vasiliy-maslov/online-shop/internal/handler/http"
	"github.com/vasiliy-maslov/online-shop/internal/metrics"
	"github.com/vasiliy-maslov/online-shop/internal/notify"
	"github.com/vasiliy-maslov/online-shop/internal/order"
	"github.com/vasiliy-maslov/online-shop/internal/product"
	"github.com/vasiliy-maslov/online-shop/internal/session"
	"github.com/vasiliy-maslov/online-shop/internal/user"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "shop").Logger()

	log.Info().Msg("Shop service starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	dbConn, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	userRepo := user.NewRepository(dbConn.Pool)
	productRepo := product.NewRepository(dbConn.Pool)
	orderRepo := order.NewRepository(dbConn.Pool)

	userService := user.NewService(userRepo, orderRepo)
	productService := product.NewService(productRepo)
	cartService := cart.NewService(productService)

	var mail *notify.MailSender
	if cfg.SMTP.Enabled() {
		mail = notify.NewMailSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		log.Info().Str("host", cfg.SMTP.Host).Msg("Mail notifications enabled")
	}
	events := notify.NewEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if events.Enabled() {
		log.Info().Str("topic", cfg.Kafka.Topic).Msg("Kafka order events enabled")
	}
	defer func() {
		if err := events.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event publisher")
		}
	}()

	notifier := notify.NewService(userService, mail, events)
	orderService := order.NewService(orderRepo, notifier)

	sessions := session.NewManager(cfg.App.SessionTTL)
	defer sessions.Close()

	serverMetrics := metrics.NewServerMetrics()

	router := handler.NewRouter(handler.RouterDeps{
		Users:    userService,
		Products: productService,
		Carts:    cartService,
		Orders:   orderService,
		Sessions: sessions,
		Metrics:  serverMetrics,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}
	log.Info().Msg("Server stopped")
}
