package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/user"
	"gamifiedFitnessAPI/services"

	"github.com/sirupsen/logrus"
)

const (
	maxWebhookBody      = int64(65536)
	webhookTolerance    = 5 * time.Minute
	webhookSecretPrefix = "whsec_"
)

type clerkWebhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type clerkEmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type clerkUserData struct {
	ID                    string              `json:"id"`
	Username              string              `json:"username"`
	FirstName             string              `json:"first_name"`
	LastName              string              `json:"last_name"`
	ImageURL              string              `json:"image_url"`
	PrimaryEmailAddressID string              `json:"primary_email_address_id"`
	EmailAddresses        []clerkEmailAddress `json:"email_addresses"`
}

func (d clerkUserData) primaryEmail() string {
	for _, e := range d.EmailAddresses {
		if e.ID == d.PrimaryEmailAddressID {
			return e.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

// displayName falls back from the username to the full name and then to the
// local part of the email.
func (d clerkUserData) displayName() string {
	if d.Username != "" {
		return d.Username
	}
	if name := strings.TrimSpace(d.FirstName + " " + d.LastName); name != "" {
		return name
	}
	if email := d.primaryEmail(); email != "" {
		return strings.SplitN(email, "@", 2)[0]
	}
	return d.ID
}

// WebhookHandler keeps local users in sync with Clerk.
type WebhookHandler struct {
	userService *services.UserService
	secret      []byte
	now         func() time.Time
}

// NewWebhookHandler accepts the signing secret as shown in the Clerk
// dashboard, with or without the whsec_ prefix.
func NewWebhookHandler(userService *services.UserService, signingSecret string) (*WebhookHandler, error) {
	h := &WebhookHandler{userService: userService, now: time.Now}
	if signingSecret == "" {
		return h, nil
	}

	secret, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(signingSecret, webhookSecretPrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to decode webhook secret: %w", err)
	}
	h.secret = secret
	return h, nil
}

// POST /webhooks/clerk
func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	if len(h.secret) == 0 {
		respondWithError(w, http.StatusServiceUnavailable, "Webhook not configured")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if err := h.verifySignature(r.Header, body); err != nil {
		logrus.WithError(err).Warn("Rejected Clerk webhook")
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event clerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	log := logrus.WithField("event", event.Type)
	switch event.Type {
	case "user.created":
		err = h.handleUserCreated(ctx, event.Data)
	case "user.updated":
		err = h.handleUserUpdated(ctx, event.Data)
	default:
		log.Debug("Unhandled webhook event type")
	}
	if err != nil {
		log.WithError(err).Error("Error processing webhook")
		respondWithError(w, http.StatusInternalServerError, "Error processing webhook")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WebhookHandler) handleUserCreated(ctx context.Context, data json.RawMessage) error {
	var d clerkUserData
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	_, err := h.userService.CreateUser(ctx, d.ID, &user.CreateUserRequest{
		Email:     d.primaryEmail(),
		Username:  d.displayName(),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		ImageURL:  d.ImageURL,
	})
	if errors.Is(err, services.ErrUserExists) {
		return nil
	}
	return err
}

func (h *WebhookHandler) handleUserUpdated(ctx context.Context, data json.RawMessage) error {
	var d clerkUserData
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	username := d.displayName()
	_, err := h.userService.UpdateProfile(ctx, d.ID, &user.UpdateProfileRequest{
		Username: &username,
		ImageURL: &d.ImageURL,
	})
	if errors.Is(err, store.ErrNotFound) {
		logrus.WithField("clerk", d.ID).Debug("Update for unregistered user ignored")
		return nil
	}
	return err
}

// verifySignature checks the svix headers Clerk signs its deliveries with.
// The header may carry several space separated v1 signatures during secret
// rotation; any match is accepted.
func (h *WebhookHandler) verifySignature(header http.Header, body []byte) error {
	msgID := header.Get("svix-id")
	timestamp := header.Get("svix-timestamp")
	signatures := header.Get("svix-signature")
	if msgID == "" || timestamp == "" || signatures == "" {
		return errors.New("missing signature headers")
	}

	sec, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	sent := time.Unix(sec, 0)
	if d := h.now().Sub(sent); d > webhookTolerance || d < -webhookTolerance {
		return errors.New("timestamp outside tolerance")
	}

	expected := h.sign(msgID, timestamp, body)
	for _, sig := range strings.Fields(signatures) {
		version, value, ok := strings.Cut(sig, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(value), []byte(expected)) {
			return nil
		}
	}
	return errors.New("no matching signature")
}

func (h *WebhookHandler) sign(msgID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(msgID + "." + timestamp + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
