package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-pos/internal/api"
	"restaurant-pos/internal/auth"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/database"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/services/billing"
	"restaurant-pos/internal/services/notification"
	"restaurant-pos/internal/services/orders"
	"restaurant-pos/internal/services/payments"
	"restaurant-pos/internal/services/printer"
	"restaurant-pos/internal/services/tables"
	"restaurant-pos/internal/services/tickets"
)

func main() {
	var (
		mode     = flag.String("mode", "", "Service mode (api-server, print-agent, notification-subscriber)")
		port     = flag.Int("port", 3000, "HTTP port (api-server mode)")
		prefetch = flag.Int("prefetch", 1, "RabbitMQ prefetch count (notification-subscriber mode)")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": *port,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	switch *mode {
	case "api-server":
		if err := runAPIServer(ctx, cfg, log, *port); err != nil {
			log.Error("service_failed", "API server failed", requestID, err, nil)
			os.Exit(1)
		}
	case "print-agent":
		if err := runPrintAgent(ctx, cfg, log); err != nil {
			log.Error("service_failed", "Print agent failed", requestID, err, nil)
			os.Exit(1)
		}
	case "notification-subscriber":
		if err := runNotificationSubscriber(ctx, cfg, log, *prefetch); err != nil {
			log.Error("service_failed", "Notification subscriber failed", requestID, err, nil)
			os.Exit(1)
		}
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runAPIServer runs the HTTP API with all lifecycle services.
func runAPIServer(ctx context.Context, cfg *config.Config, log *logger.Logger, port int) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	publisher := messaging.NewPublisher(conn, log)
	policy := auth.NewPolicy()
	printQueue := printer.NewQueue()

	tableSvc := tables.NewService(db, publisher, policy, log)
	orderSvc := orders.NewService(db, tableSvc, printQueue, publisher, policy, log)
	ticketSvc := tickets.NewService(db, orderSvc.Repo(), printQueue, publisher, policy, log)
	billingSvc := billing.NewService(db, orderSvc.Repo(), tableSvc, printQueue, publisher, policy, log, cfg.Billing)
	paymentSvc := payments.NewService(db, billingSvc.Repo(), orderSvc.Repo(), tableSvc, publisher, policy, log)

	mux := http.NewServeMux()
	tables.NewHandler(tableSvc, log).Register(mux)
	orders.NewHandler(orderSvc, log).Register(mux)
	tickets.NewHandler(ticketSvc, log).Register(mux)
	billing.NewHandler(billingSvc, log).Register(mux)
	payments.NewHandler(paymentSvc, log).Register(mux)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			api.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("http_listening", fmt.Sprintf("HTTP server listening on :%d", port), requestID, nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	}
}

// runPrintAgent runs the queue-draining print agent.
func runPrintAgent(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	agent := printer.NewAgent(db, log, cfg.Printer)
	return agent.Run(ctx)
}

// runNotificationSubscriber runs the event display consumer.
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	hostname, _ := os.Hostname()
	consumer := messaging.NewConsumer(conn, log, messaging.EventsQueue, "notification-"+hostname, prefetch)
	subscriber := notification.NewSubscriber(consumer, log)
	return subscriber.Start(ctx)
}
