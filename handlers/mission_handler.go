package handlers

import (
	"context"
	"net/http"

	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/middleware"
	"gamifiedFitnessAPI/services"

	"github.com/gorilla/mux"
)

type MissionHandler struct {
	missionService *services.MissionService
}

func NewMissionHandler(missionService *services.MissionService) *MissionHandler {
	return &MissionHandler{
		missionService: missionService,
	}
}

type progressRequest struct {
	ProgressData mission.ProgressDelta `json:"progressData"`
}

// GET /api/v1/missions/active
func (h *MissionHandler) GetActiveMissions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	missions, err := h.missionService.GetActiveMissions(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, missions)
}

// GET /api/v1/missions/available?category=&type=&difficulty=
func (h *MissionHandler) GetAvailableMissions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	q := r.URL.Query()
	filter := mission.AvailableFilter{
		Category:   mission.Category(q.Get("category")),
		Type:       mission.Type(q.Get("type")),
		Difficulty: mission.Difficulty(q.Get("difficulty")),
	}

	missions, err := h.missionService.GetAvailableMissions(ctx, clerkID, filter)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, missions)
}

// POST /api/v1/missions/{id}/join
func (h *MissionHandler) JoinMission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	um, err := h.missionService.JoinMission(ctx, clerkID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, um)
}

// POST /api/v1/missions/{id}/complete
func (h *MissionHandler) CompleteMission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	res, err := h.missionService.CompleteMission(ctx, clerkID, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// PUT /api/v1/missions/{id}/progress
func (h *MissionHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req progressRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.missionService.UpdateProgress(ctx, clerkID, mux.Vars(r)["id"], req.ProgressData)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// GET /api/v1/missions/completed
func (h *MissionHandler) GetCompletedMissions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	missions, err := h.missionService.GetCompletedMissions(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, missions)
}

// POST /api/v1/missions/create
func (h *MissionHandler) CreateMission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var tmpl mission.Template
	if err := decodeJSON(r, &tmpl); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	m, err := h.missionService.CreateMission(ctx, clerkID, &tmpl)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, m)
}

// GET /api/v1/missions/{id}/leaderboard
// GET /api/v1/leaderboard/mission/{id}
func (h *MissionHandler) GetMissionLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.missionService.GetMissionLeaderboard(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// POST /api/v1/missions/init-defaults
func (h *MissionHandler) InitDefaults(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	created, err := h.missionService.InitDefaults(ctx)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{"created": created})
}
