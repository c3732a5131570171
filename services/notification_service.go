package services

import (
	"context"
	"fmt"
	"strings"

	"gamifiedFitnessAPI/internal/notification"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/user"
)

// Notifier is how the game services announce level-ups, achievements and
// completed missions. A nil Notifier is valid and sends nothing.
type Notifier interface {
	Notify(u *user.User, n *notification.Notification)
}

type NotificationService struct {
	store      store.UserStore
	dispatcher *NotificationDispatcher
}

func NewNotificationService(st store.UserStore, dispatcher *NotificationDispatcher) *NotificationService {
	return &NotificationService{store: st, dispatcher: dispatcher}
}

func (s *NotificationService) Notify(u *user.User, n *notification.Notification) {
	if len(u.DeviceTokens) == 0 {
		return
	}
	s.dispatcher.Dispatch(n, append([]string(nil), u.DeviceTokens...))
}

func (s *NotificationService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return fmt.Errorf("%w: device token is required", ErrInvalidInput)
	}

	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return err
	}
	if !u.AddDeviceToken(token) {
		return nil
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func notify(n Notifier, u *user.User, msgs ...*notification.Notification) {
	if n == nil {
		return
	}
	for _, m := range msgs {
		n.Notify(u, m)
	}
}
