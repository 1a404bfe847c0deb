package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	approvalIntentHandler "github.com/m04kA/SMC-VenueBookingService/internal/api/handlers/approval_intent"
	approveRequestHandler "github.com/m04kA/SMC-VenueBookingService/internal/api/handlers/approve_request"
	cancelRequestHandler "github.com/m04kA/SMC-VenueBookingService/internal/api/handlers/cancel_request"
	createRequestHandler "github.com/m04kA/SMC-VenueBookingService/internal/api/handlers/create_request"
	getRequestHandler "github.com/m04kA/SMC-VenueBookingService/internal/api/handlers/get_request"
	listRequestsHandler "github.com/m04kA/SMC-VenueBookingService/internal/api/handlers/list_requests"
	rejectRequestHandler "github.com/m04kA/SMC-VenueBookingService/internal/api/handlers/reject_request"
	"github.com/m04kA/SMC-VenueBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-VenueBookingService/internal/clock"
	"github.com/m04kA/SMC-VenueBookingService/internal/config"
	bookingRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/booking"
	requestRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/booking_request"
	venueRepo "github.com/m04kA/SMC-VenueBookingService/internal/infra/storage/venue"
	"github.com/m04kA/SMC-VenueBookingService/internal/integrations/broadcast"
	"github.com/m04kA/SMC-VenueBookingService/internal/integrations/mailer"
	approvalService "github.com/m04kA/SMC-VenueBookingService/internal/service/approval"
	availabilityService "github.com/m04kA/SMC-VenueBookingService/internal/service/availability"
	conflictsService "github.com/m04kA/SMC-VenueBookingService/internal/service/conflicts"
	"github.com/m04kA/SMC-VenueBookingService/internal/service/notifications"
	requestsService "github.com/m04kA/SMC-VenueBookingService/internal/service/requests"
	approveRequestUC "github.com/m04kA/SMC-VenueBookingService/internal/usecase/approve_request"
	cancelRequestUC "github.com/m04kA/SMC-VenueBookingService/internal/usecase/cancel_request"
	createRequestUC "github.com/m04kA/SMC-VenueBookingService/internal/usecase/create_request"
	rejectRequestUC "github.com/m04kA/SMC-VenueBookingService/internal/usecase/reject_request"
	"github.com/m04kA/SMC-VenueBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-VenueBookingService/pkg/logger"
	"github.com/m04kA/SMC-VenueBookingService/pkg/metrics"
	"github.com/m04kA/SMC-VenueBookingService/pkg/txmanager"
)

// Канал рассылки, который умеет закрываться при остановке
type closableBroadcaster interface {
	Broadcast(ctx context.Context, message string) error
	Close() error
}

// Почтовый транспорт
type mailDeliverer interface {
	Deliver(ctx context.Context, to, subject, html string) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-VenueBookingService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Все репозитории и транзакции идут через один executor (с метриками или без)
	var executor dbmetrics.DBExecutor = db
	if cfg.Metrics.Enabled {
		executor = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")
	}

	bookingRepository := bookingRepo.NewRepository(executor)
	venueRepository := venueRepo.NewRepository(executor)
	requestRepository := requestRepo.NewRepository(executor)
	txMgr := txmanager.NewTransactionManager(executor)

	// Инициализируем интеграции: почта и канал рассылки
	var mailClient mailDeliverer
	if cfg.Mail.Enabled {
		mailClient = mailer.NewClient(
			cfg.Mail.APIKey,
			cfg.Mail.FromName,
			cfg.Mail.FromEmail,
			time.Duration(cfg.Mail.Timeout)*time.Second,
			log,
		)
		log.Info("MailerSend client initialized (from=%s)", cfg.Mail.FromEmail)
	} else {
		mailClient = mailer.NewLogClient(log)
		log.Warn("Mail disabled, emails will only be logged")
	}

	var broadcaster closableBroadcaster
	if cfg.Broadcast.Enabled {
		publisher, err := broadcast.NewPublisher(
			cfg.Broadcast.URL,
			cfg.Broadcast.Subject,
			time.Duration(cfg.Broadcast.Timeout)*time.Second,
			log,
		)
		if err != nil {
			log.Fatal("Failed to connect to broadcast channel: %v", err)
		}
		broadcaster = publisher
		log.Info("Broadcast publisher connected (url=%s, subject=%s)", cfg.Broadcast.URL, cfg.Broadcast.Subject)
	} else {
		broadcaster = broadcast.NewLogPublisher(log)
		log.Warn("Broadcast disabled, channel messages will only be logged")
	}
	defer broadcaster.Close()

	clk := clock.NewSystem(cfg.Booking.TimezoneOffsetHours)
	cutoff := time.Duration(cfg.Booking.CancellationCutoffMinutes) * time.Minute

	// Инициализируем сервисы
	availabilitySvc := availabilityService.NewService(venueRepository, bookingRepository, log)
	conflictsSvc := conflictsService.NewService(requestRepository, log)
	approvalSvc := approvalService.NewService(
		requestRepository,
		bookingRepository,
		availabilitySvc,
		conflictsSvc,
		txMgr,
		metricsCollector,
		log,
	)
	requestsSvc := requestsService.NewService(requestRepository, log)

	dispatcher := notifications.NewDispatcher(cfg.Server.PublicURL)
	sender := notifications.NewSender(
		notifications.MustNewRenderer(),
		mailClient,
		broadcaster,
		metricsCollector,
		log,
		time.Duration(cfg.Mail.Timeout)*time.Second,
	).WithBroadcastTimeout(time.Duration(cfg.Broadcast.Timeout) * time.Second)

	// Инициализируем use cases
	createRequestUseCase := createRequestUC.NewUseCase(
		requestRepository,
		availabilitySvc,
		approvalSvc,
		dispatcher,
		sender,
		txMgr,
		clk,
		log,
	)
	approveRequestUseCase := approveRequestUC.NewUseCase(
		requestRepository,
		approvalSvc,
		availabilitySvc,
		conflictsSvc,
		dispatcher,
		sender,
		log,
	)
	rejectRequestUseCase := rejectRequestUC.NewUseCase(
		requestRepository,
		venueRepository,
		dispatcher,
		sender,
		txMgr,
		metricsCollector,
		log,
	)
	cancelRequestUseCase := cancelRequestUC.NewUseCase(
		requestRepository,
		bookingRepository,
		venueRepository,
		dispatcher,
		sender,
		txMgr,
		clk,
		cutoff,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	createRequest := createRequestHandler.NewHandler(createRequestUseCase, log)
	getRequest := getRequestHandler.NewHandler(requestsSvc, log)
	listRequests := listRequestsHandler.NewHandler(requestsSvc, log)
	approveRequest := approveRequestHandler.NewHandler(approveRequestUseCase, log)
	approvalIntent := approvalIntentHandler.NewHandler(approveRequestUseCase, log)
	rejectRequest := rejectRequestHandler.NewHandler(rejectRequestUseCase, log)
	cancelRequest := cancelRequestHandler.NewHandler(cancelRequestUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (заявители)
	// ============================================================

	// Подача заявки
	api.HandleFunc("/booking-requests", createRequest.Handle).Methods(http.MethodPost)

	// Статус заявки
	api.HandleFunc("/booking-requests/{requestId}", getRequest.Handle).Methods(http.MethodGet)

	// Отмена одобренного бронирования (GET - ссылка из письма)
	api.HandleFunc("/booking-requests/{requestId}/cancel",
		cancelRequest.Handle).Methods(http.MethodGet, http.MethodPatch)

	// ============================================================
	// ADMIN ROUTES (требуют X-Admin-Token header)
	// ============================================================

	admin := api.PathPrefix("").Subrouter()
	admin.Use(middleware.AdminAuth(cfg.Admin.Token))

	// Список заявок с фильтрами
	admin.HandleFunc("/booking-requests", listRequests.Handle).Methods(http.MethodGet)

	// Предпросмотр одобрения
	admin.HandleFunc("/booking-requests/{requestId}/approval-intent",
		approvalIntent.Handle).Methods(http.MethodGet)

	// Одобрение заявки
	admin.HandleFunc("/booking-requests/{requestId}/approve",
		approveRequest.Handle).Methods(http.MethodPost)

	// Отклонение заявки
	admin.HandleFunc("/booking-requests/{requestId}/reject",
		rejectRequest.Handle).Methods(http.MethodPost)

	if cfg.Admin.Token == "" {
		log.Warn("admin.token is empty, admin routes will reject every request")
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
