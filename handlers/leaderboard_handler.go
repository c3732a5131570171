package handlers

import (
	"context"
	"net/http"

	"gamifiedFitnessAPI/internal/leaderboard"
	"gamifiedFitnessAPI/middleware"
	"gamifiedFitnessAPI/services"
)

const (
	defaultLeaderboardLimit = 50
	defaultAroundRange      = 5
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

type updateLeaderboardRequest struct {
	Type     string `json:"type"`
	Category string `json:"category"`
}

// parseBoard resolves type and category, defaulting to the weekly XP board.
func parseBoard(typ, category string) (leaderboard.Type, leaderboard.Category, error) {
	if typ == "" {
		typ = string(leaderboard.TypeWeekly)
	}
	if category == "" {
		category = string(leaderboard.CategoryXP)
	}
	t, err := leaderboard.ParseType(typ)
	if err != nil {
		return "", "", err
	}
	c, err := leaderboard.ParseCategory(category)
	if err != nil {
		return "", "", err
	}
	return t, c, nil
}

// GET /api/v1/leaderboard?type=&category=&limit=
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	q := r.URL.Query()
	t, c, err := parseBoard(q.Get("type"), q.Get("category"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := queryInt(r, "limit", defaultLeaderboardLimit, 1, 1000)

	view, err := h.leaderboardService.GetLeaderboard(ctx, clerkID, t, c, limit)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, view)
}

// GET /api/v1/leaderboard/around-me?type=&category=&range=
func (h *LeaderboardHandler) GetAroundMe(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	q := r.URL.Query()
	t, c, err := parseBoard(q.Get("type"), q.Get("category"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	rng := queryInt(r, "range", defaultAroundRange, 0, 100)

	res, err := h.leaderboardService.GetAroundMe(ctx, clerkID, t, c, rng)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, res)
}

// POST /api/v1/leaderboard/update
func (h *LeaderboardHandler) UpdateLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var req updateLeaderboardRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	t, c, err := parseBoard(req.Type, req.Category)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.leaderboardService.UpdateLeaderboard(ctx, t, c)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// GET /api/v1/leaderboard/friends?category=
func (h *LeaderboardHandler) GetFriendsLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	_, c, err := parseBoard("", r.URL.Query().Get("category"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := h.leaderboardService.GetFriendsLeaderboard(ctx, clerkID, c)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
		"category":    c,
	})
}

// GET /api/v1/leaderboard/all
func (h *LeaderboardHandler) GetCurrentLeaderboards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	boards, err := h.leaderboardService.GetCurrentLeaderboards(ctx)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, boards)
}
