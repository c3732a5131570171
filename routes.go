package main

import (
	"context"
	"net/http"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gamifiedFitnessAPI/handlers"
	"gamifiedFitnessAPI/internal/config"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/middleware"
)

type routeHandlers struct {
	user           *handlers.UserHandler
	fitness        *handlers.FitnessHandler
	mission        *handlers.MissionHandler
	leaderboard    *handlers.LeaderboardHandler
	social         *handlers.SocialHandler
	sustainability *handlers.SustainabilityHandler
	notification   *handlers.NotificationHandler
	webhook        *handlers.WebhookHandler
}

func newRouter(cfg *config.Config, st store.Store, h routeHandlers, rateLimiter *middleware.RateLimiter) http.Handler {
	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()
	standardRouter.Use(rateLimiter.Middleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	standardRouter.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))

	standardRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "store connection failed"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "gamified-fitness-api"}`))
	}).Methods("GET")

	standardRouter.HandleFunc("/webhooks/clerk", h.webhook.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	// -------------------------------------------------------------------------
	// PROTECTED ROUTES (REQUIRE AUTH HEADER)
	// -------------------------------------------------------------------------
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.AuthMode, cfg.DevJWTSecret))

	protected.HandleFunc("/user", h.user.Register).Methods("POST")
	protected.HandleFunc("/user", h.user.GetProfile).Methods("GET")
	protected.HandleFunc("/user/profile", h.user.GetProfile).Methods("GET")
	protected.HandleFunc("/user/profile", h.user.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/user/stats", h.user.GetStats).Methods("GET")
	protected.HandleFunc("/user/public/{id}", h.user.GetPublicProfile).Methods("GET")

	protected.HandleFunc("/game/dashboard", h.user.GetDashboard).Methods("GET")
	protected.HandleFunc("/game/profile", h.user.GetGameProfile).Methods("GET")
	protected.HandleFunc("/game/daily-checkin", h.user.DailyCheckin).Methods("POST")

	protected.HandleFunc("/fitness/start", h.fitness.StartSession).Methods("POST")
	protected.HandleFunc("/fitness/sessions", h.fitness.GetSessions).Methods("GET")
	protected.HandleFunc("/fitness/sessions/{id}", h.fitness.GetSession).Methods("GET")
	protected.HandleFunc("/fitness/sessions/{id}/waypoints", h.fitness.AddWaypoints).Methods("POST")
	protected.HandleFunc("/fitness/sessions/{id}/stop", h.fitness.StopSession).Methods("POST")
	protected.HandleFunc("/fitness/active-session", h.fitness.GetActiveSession).Methods("GET")
	protected.HandleFunc("/fitness/geofence-entry", h.fitness.EnterGeofence).Methods("POST")
	protected.HandleFunc("/fitness/geofence-exit", h.fitness.ExitGeofence).Methods("POST")
	protected.HandleFunc("/fitness/live/{id}", h.fitness.LiveTracking).Methods("GET")

	protected.HandleFunc("/missions/active", h.mission.GetActiveMissions).Methods("GET")
	protected.HandleFunc("/missions/available", h.mission.GetAvailableMissions).Methods("GET")
	protected.HandleFunc("/missions/completed", h.mission.GetCompletedMissions).Methods("GET")
	protected.HandleFunc("/missions/create", h.mission.CreateMission).Methods("POST")
	protected.HandleFunc("/missions/init-defaults", h.mission.InitDefaults).Methods("POST")
	protected.HandleFunc("/missions/{id}/join", h.mission.JoinMission).Methods("POST")
	protected.HandleFunc("/missions/{id}/complete", h.mission.CompleteMission).Methods("POST")
	protected.HandleFunc("/missions/{id}/progress", h.mission.UpdateProgress).Methods("PUT")
	protected.HandleFunc("/missions/{id}/leaderboard", h.mission.GetMissionLeaderboard).Methods("GET")

	protected.HandleFunc("/leaderboard", h.leaderboard.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/leaderboard/around-me", h.leaderboard.GetAroundMe).Methods("GET")
	protected.HandleFunc("/leaderboard/update", h.leaderboard.UpdateLeaderboard).Methods("POST")
	protected.HandleFunc("/leaderboard/friends", h.leaderboard.GetFriendsLeaderboard).Methods("GET")
	protected.HandleFunc("/leaderboard/mission/{id}", h.mission.GetMissionLeaderboard).Methods("GET")
	protected.HandleFunc("/leaderboard/all", h.leaderboard.GetCurrentLeaderboards).Methods("GET")

	protected.HandleFunc("/social/add-friend", h.social.AddFriend).Methods("POST")
	protected.HandleFunc("/social/friends", h.social.GetFriends).Methods("GET")
	protected.HandleFunc("/social/remove-friend/{id}", h.social.RemoveFriend).Methods("DELETE")
	protected.HandleFunc("/social/friend-code", h.social.GetFriendCode).Methods("GET")

	protected.HandleFunc("/sustainability/plant-tree", h.sustainability.PlantTree).Methods("POST")
	protected.HandleFunc("/sustainability/log-green-travel", h.sustainability.LogGreenTravel).Methods("POST")
	protected.HandleFunc("/sustainability/cleanup-mission", h.sustainability.RecordCleanup).Methods("POST")
	protected.HandleFunc("/sustainability/stats", h.sustainability.GetStats).Methods("GET")
	protected.HandleFunc("/sustainability/leaderboard", h.sustainability.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/sustainability/challenges", h.sustainability.GetChallenges).Methods("GET")

	protected.HandleFunc("/notifications/register-device", h.notification.RegisterDevice).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	return corsHandler(r)
}
