package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"itrackerAPI/handlers"
	"itrackerAPI/internal/config"
	"itrackerAPI/internal/database"
	"itrackerAPI/internal/logger"
	"itrackerAPI/internal/metrics"
	"itrackerAPI/internal/notification"
	"itrackerAPI/internal/workers"
	"itrackerAPI/middleware"
	"itrackerAPI/services"

	_ "net/http/pprof"
)

type app struct {
	cfg                *config.Config
	dbPool             *pgxpool.Pool
	userService        *services.UserService
	habitService       *services.HabitService
	achievementService *services.AchievementService
	adminService       *services.AdminService
	rateLimiter        *middleware.RateLimiter
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	clerk.SetKey(cfg.ClerkSecretKey)
	logger.Info("Clerk initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbPool, err := database.Connect(connectCtx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err == nil {
		err = database.Migrate(connectCtx, dbPool)
	}
	cancel()
	if err != nil {
		logger.Fatal("Failed to prepare database", "error", err)
	}
	defer func() {
		logger.Info("Closing database connection pool...")
		dbPool.Close()
	}()
	logger.Info("Successfully connected to database")

	metrics.Register(prometheus.DefaultRegisterer)

	achievementService := services.NewAchievementService(dbPool)
	userService := services.NewUserService(dbPool, cfg.Timezone)
	a := &app{
		cfg:                cfg,
		dbPool:             dbPool,
		userService:        userService,
		habitService:       services.NewHabitService(dbPool, achievementService, cfg.Timezone),
		achievementService: achievementService,
		adminService:       services.NewAdminService(dbPool, services.ClerkIdentity{}, cfg.Timezone),
		rateLimiter:        middleware.NewRateLimiter(rate.Limit(5), 30, cfg.TrustedProxyHops),
	}

	dispatcher := services.NewNotificationDispatcher(userService, 5)
	fcmService, err := notification.NewFCMService(ctx, cfg.FCMServiceAccount, cfg.FCMCredentialsFile)
	if err != nil {
		logger.Warn("Could not initialize FCM, pushes are logged only", "error", err)
		dispatcher.SetPushProvider(services.LogPushProvider{})
	} else {
		dispatcher.SetPushProvider(fcmService)
		logger.Info("FCM Push Provider initialized successfully")
	}
	defer dispatcher.Stop()

	watcher := workers.NewAchievementWatcher(achievementService, dispatcher, cfg.AchievementPoll)
	go watcher.Run(ctx)
	go a.rateLimiter.CleanupVisitors(ctx)

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins(cfg.AllowedOrigins),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler(a.routes()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "timezone", cfg.Timezone.String())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Error starting server", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server shutdown complete")
}

func (a *app) routes() *mux.Router {
	userHandler := handlers.NewUserHandler(a.userService)
	habitHandler := handlers.NewHabitHandler(a.habitService)
	achievementHandler := handlers.NewAchievementHandler(a.achievementService)
	adminHandler := handlers.NewAdminHandler(a.adminService)
	notificationHandler := handlers.NewNotificationHandler(a.userService)
	webhookHandler, err := handlers.NewWebhookHandler(a.userService, a.cfg.ClerkWebhookSecret)
	if err != nil {
		logger.Fatal("Failed to configure Clerk webhook", "error", err)
	}

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()
	standardRouter.Use(a.rateLimiter.Middleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(a.cfg.MetricsUser, a.cfg.MetricsPass)(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(a.cfg.PprofSecret)(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := a.dbPool.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "itracker-api"}`))
	}).Methods("GET")

	standardRouter.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/habits", habitHandler.GetDashboard).Methods("GET")
	protected.HandleFunc("/habits", habitHandler.CreateHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}", habitHandler.DeleteHabit).Methods("DELETE")
	protected.HandleFunc("/habits/{id}/complete", habitHandler.CompleteHabit).Methods("POST")
	protected.HandleFunc("/habits/{id}/complete", habitHandler.UncompleteHabit).Methods("DELETE")

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user", userHandler.DeleteAccount).Methods("DELETE")
	protected.HandleFunc("/user/stats", userHandler.GetUserStats).Methods("GET")
	protected.HandleFunc("/user/achievements", achievementHandler.GetUserAchievements).Methods("GET")
	protected.HandleFunc("/user/achievements/new", achievementHandler.GetNewAchievements).Methods("GET")
	protected.HandleFunc("/user/devices", notificationHandler.RegisterDevice).Methods("POST")

	// -------------------------------------------------------------------------
	// ADMIN ROUTES (ROLE CHECKED PER REQUEST)
	// -------------------------------------------------------------------------
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin(a.userService))

	admin.HandleFunc("/stats", adminHandler.GetStats).Methods("GET")
	admin.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{id}", adminHandler.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/achievements", achievementHandler.ListAchievements).Methods("GET")
	admin.HandleFunc("/achievements", achievementHandler.CreateAchievement).Methods("POST")

	return r
}
