package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"shopledger/internal/domain/attendance"
	"shopledger/internal/domain/audit"
	"shopledger/internal/domain/commission"
	"shopledger/internal/domain/leave"
	"shopledger/internal/domain/loans"
	"shopledger/internal/domain/notifications"
	"shopledger/internal/domain/orders"
	"shopledger/internal/domain/payroll"
	"shopledger/internal/domain/reports"
	"shopledger/internal/domain/salary"
	"shopledger/internal/domain/staff"
	"shopledger/internal/domain/stock"
	"shopledger/internal/platform/config"
	"shopledger/internal/platform/db"
	"shopledger/internal/platform/email"
	"shopledger/internal/platform/jobs"
	"shopledger/internal/platform/metrics"
	"shopledger/internal/transport/http/api"
	attendancehandler "shopledger/internal/transport/http/handlers/attendance"
	audithandler "shopledger/internal/transport/http/handlers/audit"
	commissionhandler "shopledger/internal/transport/http/handlers/commission"
	leavehandler "shopledger/internal/transport/http/handlers/leave"
	loanshandler "shopledger/internal/transport/http/handlers/loans"
	notificationshandler "shopledger/internal/transport/http/handlers/notifications"
	ordershandler "shopledger/internal/transport/http/handlers/orders"
	payrollhandler "shopledger/internal/transport/http/handlers/payroll"
	reportshandler "shopledger/internal/transport/http/handlers/reports"
	salaryhandler "shopledger/internal/transport/http/handlers/salary"
	stockhandler "shopledger/internal/transport/http/handlers/stock"
	"shopledger/internal/transport/http/middleware"
	"shopledger/internal/transport/http/shared"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector

	stopJobs context.CancelFunc
}

// New connects to the database, applies migrations when enabled and wires every service
// behind the HTTP router. Background jobs start immediately and stop on Close.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	collector := metrics.New()
	auditor := audit.New(pool)
	directory := staff.NewDirectory(pool)

	ledger := stock.NewLedger(stock.NewStore(pool), auditor)
	notifier := notifications.New(notifications.NewStore(pool), email.New(cfg))

	jobsCtx, stopJobs := context.WithCancel(context.Background())
	jobsSvc := jobs.New(pool, ledger, notifier, cfg.LowStockScanInterval)
	jobsSvc.Failures = collector
	jobsSvc.Start(jobsCtx)

	commissionSvc := commission.NewService(commission.NewStore(pool))
	orderSvc := orders.NewService(orders.NewStore(pool), ledger, commissionSvc, auditor)
	orderSvc.Metrics = collector
	orderSvc.LowStock = jobsSvc

	attendanceSvc := attendance.NewService(attendance.NewStore(pool), directory, auditor)
	salarySvc := salary.NewService(salary.NewStore(pool), directory, auditor)
	leaveSvc := leave.NewService(leave.NewStore(pool), directory, auditor)
	loanSvc := loans.NewService(loans.NewStore(pool), directory, auditor)

	calculator := payroll.NewCalculator(payroll.Policy{
		WeekendDays:        cfg.Payroll.WeekendDays,
		DailyHours:         cfg.Payroll.DailyHours,
		OvertimeMultiplier: cfg.Payroll.OvertimeMultiplier,
	})
	payrollSvc := payroll.NewService(payroll.NewStore(pool), calculator, directory, payroll.Sources{
		Attendance: attendanceSvc,
		Salary:     salarySvc,
		Leave:      leaveSvc,
	}, loanSvc, auditor)
	payrollSvc.Notifier = jobsSvc

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader, middleware.IdempotencyHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, shared.TotalCountHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.WriteRateLimit(cfg.RateLimitWrites, cfg.RateLimitWindow))

		ordershandler.NewHandler(orderSvc, middleware.NewIdempotencyStore(pool)).RegisterRoutes(r)
		stockhandler.NewHandler(ledger).RegisterRoutes(r)
		commissionhandler.NewHandler(commissionSvc).RegisterRoutes(r)
		attendancehandler.NewHandler(attendanceSvc).RegisterRoutes(r)
		salaryhandler.NewHandler(salarySvc).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc).RegisterRoutes(r)
		loanshandler.NewHandler(loanSvc).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollSvc).RegisterRoutes(r)
		audithandler.NewHandler(auditor).RegisterRoutes(r)
		notificationshandler.NewHandler(notifier).RegisterRoutes(r)
		reportshandler.NewHandler(reports.NewService(reports.NewStore(pool), ledger)).RegisterRoutes(r)
	})

	return &App{
		Config:   cfg,
		DB:       pool,
		Router:   router,
		Jobs:     jobsSvc,
		Metrics:  collector,
		stopJobs: stopJobs,
	}, nil
}

func (a *App) Close() {
	if a.stopJobs != nil {
		a.stopJobs()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests before closing the pool.
func Run() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
	}
}
