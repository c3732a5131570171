package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/services"

	"github.com/sirupsen/logrus"
)

const requestTimeout = 5 * time.Second

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

var badRequestErrors = []error{
	services.ErrInvalidInput,
	services.ErrActiveSessionExists,
	services.ErrSessionNotActive,
	services.ErrAlreadyFriends,
	services.ErrSelfFriend,
	services.ErrAlreadyCheckedIn,
	services.ErrAlreadyParticipating,
	services.ErrMissionExpired,
	services.ErrNotParticipating,
	services.ErrRequirementsNotMet,
	services.ErrInsufficientGreenMiles,
	services.ErrNotEcoFriendly,
	services.ErrGeofenceAlreadyEntered,
	services.ErrGeofenceNotEntered,
}

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrProfilePrivate):
		return http.StatusForbidden
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// respondWithServiceError reports client errors verbatim and hides the
// details of everything else.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	switch code {
	case http.StatusNotFound:
		respondWithError(w, code, "Not found")
	case http.StatusInternalServerError:
		logrus.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		respondWithError(w, code, "Internal server error")
	default:
		respondWithError(w, code, err.Error())
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// queryInt reads an integer query parameter, falling back to def when it is
// missing, malformed or outside [min, max].
func queryInt(r *http.Request, key string, def, min, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < min || v > max {
		return def
	}
	return v
}
