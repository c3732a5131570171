package handlers

import (
	"context"
	"net/http"

	"gamifiedFitnessAPI/internal/sustainability"
	"gamifiedFitnessAPI/middleware"
	"gamifiedFitnessAPI/services"
)

type SustainabilityHandler struct {
	sustainabilityService *services.SustainabilityService
}

func NewSustainabilityHandler(sustainabilityService *services.SustainabilityService) *SustainabilityHandler {
	return &SustainabilityHandler{
		sustainabilityService: sustainabilityService,
	}
}

// POST /api/v1/sustainability/plant-tree
func (h *SustainabilityHandler) PlantTree(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	res, err := h.sustainabilityService.PlantTree(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// POST /api/v1/sustainability/log-green-travel
func (h *SustainabilityHandler) LogGreenTravel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req sustainability.LogGreenTravelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.sustainabilityService.LogGreenTravel(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// POST /api/v1/sustainability/cleanup-mission
func (h *SustainabilityHandler) RecordCleanup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req sustainability.CleanupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.sustainabilityService.RecordCleanup(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// GET /api/v1/sustainability/stats
func (h *SustainabilityHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	summary, err := h.sustainabilityService.GetStats(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GET /api/v1/sustainability/leaderboard?type=
func (h *SustainabilityHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	metric := sustainability.Metric(r.URL.Query().Get("type"))
	if metric == "" {
		metric = sustainability.MetricEcoScore
	}

	res, err := h.sustainabilityService.GetLeaderboard(ctx, clerkID, metric)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// GET /api/v1/sustainability/challenges
func (h *SustainabilityHandler) GetChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challenges, err := h.sustainabilityService.GetChallenges(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}
