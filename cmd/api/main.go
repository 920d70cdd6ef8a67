// Entry point for the attendance REST API.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance.service/internal/api"
	"attendance.service/internal/config"
	"attendance.service/internal/core"
	"attendance.service/internal/dispatch"
	"attendance.service/internal/ports/messaging"
	"attendance.service/internal/ports/repository"
	"attendance.service/pkg/aws"
	"attendance.service/pkg/database"
	"attendance.service/pkg/logger"
	"attendance.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup(cfg.IsLocalDev)

	// Configure OpenTelemetry Tracing
	shutdownTracer, err := telemetry.InitTracer("attendance-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// DB connection
	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	log.Info().Msg("Successfully connected to the database.")

	// AWS SDK Config
	awsCfg, err := aws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Repositories
	ledger := repository.NewAttendanceRepository(db)
	directory := repository.NewEmployeeRepository(db)

	// Notification dispatcher: in-process pool by default, or SQS hand-off
	// to the notify worker.
	var dispatcher core.Dispatcher
	var pool *dispatch.Pool
	switch cfg.NotifyMode {
	case "sqs":
		sqsClient := sqs.NewFromConfig(awsCfg)
		dispatcher = messaging.NewProducer(sqsClient, cfg.NotifyQueueURL)
		log.Info().Str("queue", cfg.NotifyQueueURL).Msg("Dispatching notifications via SQS")
	default:
		sesClient := ses.NewFromConfig(awsCfg)
		mailer := core.NewSESMailService(sesClient, cfg.NotifySender)
		pool = dispatch.NewPool(mailer, dispatch.Options{
			Workers:     cfg.NotifyWorkers,
			Capacity:    cfg.NotifyQueueCapacity,
			MaxAttempts: cfg.NotifyMaxAttempts,
		})
		dispatcher = pool
	}

	attendanceService := core.NewAttendanceService(ledger, directory, dispatcher)
	employeeService := core.NewEmployeeService(directory)

	// Setup router and server
	router := api.NewRouter(attendanceService, employeeService)

	// Middleware to inject logger with trace ID
	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.EnrichContextWithLogger(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	handler := otelhttp.NewHandler(loggerMiddleware(router), "api")

	serverAddr := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: handler,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("Attendance API starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the requests it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Drain the notification pool after the server stops accepting requests.
	if pool != nil {
		drainCtx, cancelDrain := context.WithTimeout(context.Background(),
			time.Duration(cfg.NotifyDrainSeconds)*time.Second)
		defer cancelDrain()
		if err := pool.Close(drainCtx); err != nil {
			log.Warn().Err(err).Msg("Notification pool drain timed out")
		}
	}

	log.Info().Msg("Server exiting")
}
