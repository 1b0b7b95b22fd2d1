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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	blockedTimesHandler "github.com/m04kA/SMC-SalonScheduling/internal/api/handlers/blocked_times"
	cancelAppointmentHandler "github.com/m04kA/SMC-SalonScheduling/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-SalonScheduling/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-SalonScheduling/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SalonScheduling/internal/api/handlers/get_available_slots"
	listAppointmentsHandler "github.com/m04kA/SMC-SalonScheduling/internal/api/handlers/list_appointments"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-SalonScheduling/internal/api/handlers/reschedule_appointment"
	updateAppointmentStatusHandler "github.com/m04kA/SMC-SalonScheduling/internal/api/handlers/update_appointment_status"
	"github.com/m04kA/SMC-SalonScheduling/internal/api/middleware"
	"github.com/m04kA/SMC-SalonScheduling/internal/calendar"
	"github.com/m04kA/SMC-SalonScheduling/internal/config"
	"github.com/m04kA/SMC-SalonScheduling/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonScheduling/internal/infra/storage/appointment"
	blockedRepo "github.com/m04kA/SMC-SalonScheduling/internal/infra/storage/blocked"
	catalogRepo "github.com/m04kA/SMC-SalonScheduling/internal/infra/storage/catalog"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SalonScheduling/internal/infra/storage/migrations"
	"github.com/m04kA/SMC-SalonScheduling/internal/integrations/events"
	appointmentsService "github.com/m04kA/SMC-SalonScheduling/internal/service/appointments"
	blockedService "github.com/m04kA/SMC-SalonScheduling/internal/service/blocked"
	createAppointmentUC "github.com/m04kA/SMC-SalonScheduling/internal/usecase/create_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-SalonScheduling/internal/usecase/get_available_slots"
	rescheduleAppointmentUC "github.com/m04kA/SMC-SalonScheduling/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-SalonScheduling/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonScheduling/pkg/keylock"
	"github.com/m04kA/SMC-SalonScheduling/pkg/logger"
	"github.com/m04kA/SMC-SalonScheduling/pkg/metrics"
	"github.com/m04kA/SMC-SalonScheduling/pkg/tracing"
	"github.com/m04kA/SMC-SalonScheduling/pkg/txmanager"
)

// Хранилища собираются под выбранный драйвер, поэтому main работает с интерфейсами,
// которые закрывают контракты всех usecase и сервисов сразу
type (
	appointmentStore interface {
		createAppointmentUC.AppointmentRepository
		rescheduleAppointmentUC.AppointmentRepository
		getAvailableSlotsUC.AppointmentRepository
		appointmentsService.AppointmentRepository
	}

	blockedStore interface {
		createAppointmentUC.BlockedRepository
		blockedService.BlockedRepository
	}

	catalogStore interface {
		createAppointmentUC.CatalogRepository
		UpsertService(ctx context.Context, svc *domain.Service) error
		UpsertEmployee(ctx context.Context, emp *domain.Employee) error
	}

	txManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}

	eventPublisher interface {
		createAppointmentUC.EventPublisher
		Close() error
	}
)

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

	log.Info("Starting SMC-SalonScheduling...")
	log.Info("Configuration loaded from config.toml (storage=%s)", cfg.Storage.Driver)

	ctx := context.Background()

	// Трассировка
	shutdownTracing, err := tracing.Setup(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Metrics.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to initialize tracing: %v", err)
	}
	if cfg.Tracing.Enabled {
		log.Info("Tracing enabled, exporting to %s", cfg.Tracing.Endpoint)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Инициализируем хранилища
	var (
		appointments appointmentStore
		blockedTimes blockedStore
		catalog      catalogStore
		txMgr        txManager
	)

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db := openDatabase(ctx, cfg, log)
		defer db.Close()

		if cfg.Database.AutoMigrate {
			migrator, err := migrations.NewMigrator(db, log)
			if err != nil {
				log.Fatal("Failed to initialize migrator: %v", err)
			}
			if err := migrator.Run(ctx); err != nil {
				log.Fatal("Failed to apply migrations: %v", err)
			}
		}

		// С nil метриками обёртка работает как обычный *sql.DB
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)

		appointments = appointmentRepo.NewRepository(wrappedDB)
		blockedTimes = blockedRepo.NewRepository(wrappedDB)
		catalog = catalogRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB, cfg.Booking.MaxSerializationRetries)

	default:
		appointments = memory.NewAppointmentStore()
		blockedTimes = memory.NewBlockedStore()
		catalog = memory.NewCatalog()
		txMgr = txmanager.NewNop()
		log.Warn("Using in-memory storage, data is lost on restart")
	}

	if err := seedCatalog(ctx, catalog, cfg.Catalog); err != nil {
		log.Fatal("Failed to seed catalog: %v", err)
	}
	log.Info("Catalog seeded (services=%d, employees=%d)", len(cfg.Catalog.Services), len(cfg.Catalog.Employees))

	// Календарные политики салонов
	fallbackPolicy, tenantPolicies, err := cfg.Calendar.Policies()
	if err != nil {
		log.Fatal("Failed to build calendar policies: %v", err)
	}
	policies := calendar.NewStaticProvider(fallbackPolicy, tenantPolicies)
	log.Info("Calendar policies loaded (tenant overrides=%d)", len(tenantPolicies))

	// Блокировка области (сотрудник, дата)
	var lockOpts []keylock.Option
	if cfg.Metrics.Enabled {
		lockOpts = append(lockOpts, keylock.WithWaitObserver(metricsCollector.ObserveScopeWait))
	}
	locker := keylock.New(lockOpts...)

	// Публикация событий
	var publisher eventPublisher = events.NewNopPublisher()
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout())
		log.Info("Kafka publisher enabled (brokers=%s, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	defer publisher.Close()

	changePolicy := cfg.Booking.ChangePolicy()
	lockTimeout := cfg.Booking.LockTimeout()

	// Инициализируем сервисы
	appointmentsSvc := appointmentsService.NewService(
		appointments,
		policies,
		changePolicy,
		publisher,
		log,
	)
	blockedSvc := blockedService.NewService(
		blockedTimes,
		catalog,
		locker,
		txMgr,
		lockTimeout,
		log,
	)

	// Инициализируем use cases
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointments,
		blockedTimes,
		catalog,
		policies,
		log,
	)
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointments,
		blockedTimes,
		catalog,
		policies,
		locker,
		txMgr,
		publisher,
		lockTimeout,
		log,
	)
	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointments,
		blockedTimes,
		policies,
		changePolicy,
		locker,
		txMgr,
		publisher,
		lockTimeout,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	blockedTimesH := blockedTimesHandler.NewHandler(blockedSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Recovery(log), middleware.AccessLog(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	// API prefix, все ручки работают в рамках салона из X-Tenant-ID
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Tenant)

	// --- Доступность ---
	api.HandleFunc("/employees/{employeeId}/availability", getAvailableSlots.Handle).Methods(http.MethodGet)

	// --- Записи ---
	api.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id}", getAppointment.Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id}", cancelAppointment.Handle).Methods(http.MethodDelete)
	api.HandleFunc("/appointments/{id}/status", updateAppointmentStatus.Handle).Methods(http.MethodPut)
	api.HandleFunc("/appointments/{id}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPut)

	// --- Блокировки времени ---
	api.HandleFunc("/blocked-times", blockedTimesH.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/blocked-times", blockedTimesH.HandleAdd).Methods(http.MethodPost)
	api.HandleFunc("/blocked-times/{id}", blockedTimesH.HandleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/blocked-times/{id}", blockedTimesH.HandleRemove).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, cfg.Metrics.ServiceName),
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
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server exited")
}

func openDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) *sql.DB {
	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	return db
}

// seedCatalog загружает услуги и сотрудников из конфига
func seedCatalog(ctx context.Context, catalog catalogStore, seed config.CatalogConfig) error {
	for _, svc := range seed.Services {
		if err := catalog.UpsertService(ctx, svc.ToDomain()); err != nil {
			return fmt.Errorf("service %s/%s: %w", svc.TenantID, svc.ID, err)
		}
	}
	for _, emp := range seed.Employees {
		if err := catalog.UpsertEmployee(ctx, emp.ToDomain()); err != nil {
			return fmt.Errorf("employee %s/%s: %w", emp.TenantID, emp.ID, err)
		}
	}
	return nil
}
