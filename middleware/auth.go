package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2/jwt"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

type contextKey string

const ClerkIDKey contextKey = "clerkID"

const (
	AuthModeClerk = "clerk"
	AuthModeDev   = "dev"
)

// Auth returns the authentication middleware for mode. Dev mode accepts HS256
// tokens signed with devSecret and must never run in production.
func Auth(mode, devSecret string) func(http.Handler) http.Handler {
	if mode == AuthModeDev {
		return DevAuthMiddleware(devSecret)
	}
	return ClerkAuthMiddleware
}

// ClerkAuthMiddleware validates Clerk JWT tokens and stores the subject as the
// Clerk user ID.
func ClerkAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, problem := bearerToken(r)
		if problem != "" {
			respondWithError(w, http.StatusUnauthorized, problem)
			return
		}

		claims, err := jwt.Verify(r.Context(), &jwt.VerifyParams{
			Token: token,
		})
		if err != nil {
			logrus.WithError(err).Debug("Token verification failed")
			respondWithError(w, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClerkID(r.Context(), claims.Subject)))
	})
}

// DevAuthMiddleware verifies locally signed HS256 tokens. The sub claim is
// used as the Clerk user ID.
func DevAuthMiddleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	parser := jwtv5.NewParser(jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r)
			if problem != "" {
				respondWithError(w, http.StatusUnauthorized, problem)
				return
			}

			parsed, err := parser.Parse(token, func(*jwtv5.Token) (interface{}, error) { return key, nil })
			if err != nil {
				logrus.WithError(err).Debug("Dev token verification failed")
				respondWithError(w, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
				return
			}

			sub, err := parsed.Claims.GetSubject()
			if err != nil || sub == "" {
				respondWithError(w, http.StatusUnauthorized, "Invalid token: missing subject")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClerkID(r.Context(), sub)))
		})
	}
}

// bearerToken reads the Authorization header. Websocket clients cannot set
// headers, so an access_token query parameter is accepted on upgrade requests.
// The second result is the client-facing reason when no token is usable.
func bearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if t := r.URL.Query().Get("access_token"); t != "" && strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			return t, ""
		}
		return "", "Authorization header required"
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader || token == "" {
		return "", "Invalid authorization format. Use 'Bearer <token>'"
	}
	return token, ""
}

func WithClerkID(ctx context.Context, clerkID string) context.Context {
	return context.WithValue(ctx, ClerkIDKey, clerkID)
}

// GetClerkID extracts Clerk user ID from context
func GetClerkID(ctx context.Context) (string, bool) {
	clerkID, ok := ctx.Value(ClerkIDKey).(string)
	return clerkID, ok && clerkID != ""
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
