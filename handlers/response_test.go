package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/services"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"wrapped not found", fmt.Errorf("user not found: %w", store.ErrNotFound), http.StatusNotFound},
		{"invalid input", fmt.Errorf("%w: username is required", services.ErrInvalidInput), http.StatusBadRequest},
		{"mission rule", services.ErrRequirementsNotMet, http.StatusBadRequest},
		{"geofence rule", services.ErrGeofenceNotEntered, http.StatusBadRequest},
		{"duplicate user", services.ErrUserExists, http.StatusConflict},
		{"private profile", services.ErrProfilePrivate, http.StatusForbidden},
		{"anything else", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRespondWithServiceError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	respondWithServiceError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("dial tcp 10.0.0.1:6379: refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	respondWithServiceError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), services.ErrAlreadyFriends)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"already friends with this user"}`, rec.Body.String())
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?limit=25&page=abc&range=-3", nil)

	assert.Equal(t, 25, queryInt(r, "limit", 50, 1, 100))
	assert.Equal(t, 1, queryInt(r, "page", 1, 1, 1000))
	assert.Equal(t, 5, queryInt(r, "range", 5, 0, 100))
	assert.Equal(t, 7, queryInt(r, "missing", 7, 0, 100))
}
