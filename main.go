package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"gamifiedFitnessAPI/handlers"
	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/config"
	"gamifiedFitnessAPI/internal/metrics"
	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/notification"
	"gamifiedFitnessAPI/internal/session"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/workers"
	"gamifiedFitnessAPI/middleware"
	"gamifiedFitnessAPI/services"

	_ "net/http/pprof"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	cfg.SetupLogging()
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid config: %v", err)
	}

	if cfg.AuthMode == middleware.AuthModeClerk {
		clerk.SetKey(cfg.ClerkSecretKey)
		logrus.Info("Clerk initialized successfully")
	} else {
		logrus.Warn("Running with development JWT auth")
	}

	loc, _ := cfg.Location()
	clk := clock.System{Location: loc}
	order, _ := session.ParseWaypointOrder(cfg.WaypointOrder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startupCtx, startupCancel := context.WithTimeout(ctx, time.Minute)
	st, err := store.Open(startupCtx, store.Options{
		Backend:        cfg.StoreBackend,
		DatabaseURL:    cfg.DatabaseURL,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		ConnectRetries: cfg.StoreConnectRetries,
	})
	if err != nil {
		startupCancel()
		logrus.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		logrus.Info("Closing document store...")
		st.Close()
	}()

	catalog, err := loadCatalog(cfg.MissionCatalogPath)
	if err != nil {
		startupCancel()
		logrus.Fatalf("Failed to load mission catalog: %v", err)
	}

	metrics.Register(prometheus.DefaultRegisterer)
	middleware.InitPrometheus(prometheus.DefaultRegisterer)

	dispatcher := services.NewNotificationDispatcher(cfg.NotificationWorkers)
	defer dispatcher.Stop()

	fcmService, err := notification.NewFCMService(ctx, cfg.FCMCredentialsFile)
	if err != nil {
		logrus.Warnf("Could not initialize FCM: %v", err)
	} else {
		dispatcher.SetPushProvider(fcmService)
		logrus.Info("FCM Push Provider initialized successfully")
	}

	notificationService := services.NewNotificationService(st, dispatcher)
	userService := services.NewUserService(st, clk, notificationService)
	fitnessService := services.NewFitnessService(st, clk, order, notificationService)
	missionService := services.NewMissionService(st, clk, catalog, notificationService)
	leaderboardService := services.NewLeaderboardService(st, clk, cfg.LeaderboardSize)
	socialService := services.NewSocialService(st, clk)
	sustainabilityService := services.NewSustainabilityService(st, clk, notificationService)

	if _, err := missionService.InitDefaults(startupCtx); err != nil {
		logrus.Warnf("Failed to initialize default missions: %v", err)
	}
	startupCancel()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	fitnessHandler := handlers.NewFitnessHandler(fitnessService)
	missionHandler := handlers.NewMissionHandler(missionService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	socialHandler := handlers.NewSocialHandler(socialService)
	sustainabilityHandler := handlers.NewSustainabilityHandler(sustainabilityService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler, err := handlers.NewWebhookHandler(userService, cfg.ClerkWebhookSecret)
	if err != nil {
		logrus.Fatalf("Failed to configure webhooks: %v", err)
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rateLimiter.CleanupVisitors(ctx)

	var leaderboardWorkerDone <-chan struct{}
	if cfg.LeaderboardRefreshInterval > 0 {
		leaderboardWorkerDone = workers.StartLeaderboardWorker(ctx, leaderboardService, cfg.LeaderboardRefreshInterval, workers.DefaultBoards())
	}

	router := newRouter(cfg, st, routeHandlers{
		user:           userHandler,
		fitness:        fitnessHandler,
		mission:        missionHandler,
		leaderboard:    leaderboardHandler,
		social:         socialHandler,
		sustainability: sustainabilityHandler,
		notification:   notificationHandler,
		webhook:        webhookHandler,
	}, rateLimiter)

	addr := ":" + strconv.Itoa(cfg.Port)
	server := http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Error starting server: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logrus.Infof("Got signal: %v", sig)

	cancel()
	if leaderboardWorkerDone != nil {
		<-leaderboardWorkerDone
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	}

	logrus.Info("Server shutdown complete")
}

func loadCatalog(path string) (*mission.Catalog, error) {
	if path == "" {
		return mission.DefaultCatalog()
	}
	return mission.LoadCatalog(path)
}
