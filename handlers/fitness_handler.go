package handlers

import (
	"context"
	"net/http"

	"gamifiedFitnessAPI/internal/session"
	"gamifiedFitnessAPI/middleware"
	"gamifiedFitnessAPI/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type FitnessHandler struct {
	fitnessService *services.FitnessService
}

func NewFitnessHandler(fitnessService *services.FitnessService) *FitnessHandler {
	return &FitnessHandler{
		fitnessService: fitnessService,
	}
}

// POST /api/v1/fitness/start
func (h *FitnessHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req session.StartSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.fitnessService.StartSession(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sess)
}

// GET /api/v1/fitness/sessions?status=&page=&limit=
func (h *FitnessHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	status := session.Status(r.URL.Query().Get("status"))
	page := queryInt(r, "page", 1, 1, 1<<20)
	limit := queryInt(r, "limit", 20, 1, 100)

	res, err := h.fitnessService.GetSessions(ctx, clerkID, status, page, limit)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// GET /api/v1/fitness/sessions/{id}
func (h *FitnessHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sess, err := h.fitnessService.GetSession(ctx, clerkID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, sess)
}

// POST /api/v1/fitness/sessions/{id}/waypoints
func (h *FitnessHandler) AddWaypoints(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req session.AddWaypointsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.fitnessService.AddWaypoints(ctx, clerkID, mux.Vars(r)["id"], req.All())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sess.ID,
		"stats":     sess.Stats,
		"waypoints": len(sess.Waypoints),
	})
}

// POST /api/v1/fitness/sessions/{id}/stop
func (h *FitnessHandler) StopSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req session.StopSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.fitnessService.StopSession(ctx, clerkID, mux.Vars(r)["id"], &req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// GET /api/v1/fitness/active-session
func (h *FitnessHandler) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sess, err := h.fitnessService.GetActiveSession(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"activeSession": sess,
	})
}

// POST /api/v1/fitness/geofence-entry
func (h *FitnessHandler) EnterGeofence(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req session.GeofenceEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := h.fitnessService.EnterGeofence(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, g)
}

// POST /api/v1/fitness/geofence-exit
func (h *FitnessHandler) ExitGeofence(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req session.GeofenceExitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	spent, err := h.fitnessService.ExitGeofence(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"geofenceId": req.GeofenceID,
		"timeSpent":  spent,
	})
}

// GET /api/v1/fitness/live/{id} - Stream waypoints into an active session
func (h *FitnessHandler) LiveTracking(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sessionID := mux.Vars(r)["id"]
	sess, err := h.fitnessService.GetSession(ctx, clerkID, sessionID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if !sess.IsActive() {
		respondWithServiceError(w, r, services.ErrSessionNotActive)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("Could not upgrade live tracking connection")
		return
	}

	logrus.WithFields(logrus.Fields{"session": sessionID}).Debug("Live tracking connected")
	services.NewLiveClient(conn, h.fitnessService, clerkID, sessionID).Run()
}
