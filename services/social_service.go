package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gamifiedFitnessAPI/internal/clock"
	"gamifiedFitnessAPI/internal/store"
	"gamifiedFitnessAPI/internal/user"
)

type SocialService struct {
	store store.Store
	clock clock.Clock
}

func NewSocialService(st store.Store, c clock.Clock) *SocialService {
	return &SocialService{store: st, clock: c}
}

// AddFriend links both users. The two documents are saved one after the
// other, not atomically.
func (s *SocialService) AddFriend(ctx context.Context, clerkID, friendCode string) (*user.FriendSummary, error) {
	friendCode = strings.ToUpper(strings.TrimSpace(friendCode))
	if friendCode == "" {
		return nil, fmt.Errorf("%w: friend code is required", ErrInvalidInput)
	}

	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	friend, err := s.store.GetUserByFriendCode(ctx, friendCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("friend not found with this code: %w", err)
		}
		return nil, fmt.Errorf("failed to find friend: %w", err)
	}

	if friend.ID == u.ID {
		return nil, ErrSelfFriend
	}
	if u.HasFriend(friend.ID) {
		return nil, ErrAlreadyFriends
	}

	u.AddFriend(friend.ID)
	friend.AddFriend(u.ID)

	now := s.clock.Now()
	if err := saveUser(ctx, s.store, u, now); err != nil {
		return nil, err
	}
	if err := saveUser(ctx, s.store, friend, now); err != nil {
		return nil, err
	}

	summary := friend.FriendSummary()
	return &summary, nil
}

func (s *SocialService) RemoveFriend(ctx context.Context, clerkID, friendID string) error {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return err
	}

	friend, err := s.store.GetUser(ctx, friendID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("friend not found: %w", err)
		}
		return fmt.Errorf("failed to get friend: %w", err)
	}

	u.RemoveFriend(friend.ID)
	friend.RemoveFriend(u.ID)

	now := s.clock.Now()
	if err := saveUser(ctx, s.store, u, now); err != nil {
		return err
	}
	return saveUser(ctx, s.store, friend, now)
}

func (s *SocialService) GetFriends(ctx context.Context, clerkID string) ([]user.FriendSummary, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return nil, err
	}

	friends, err := s.store.GetUsersByIDs(ctx, u.SocialStats.Friends)
	if err != nil {
		return nil, fmt.Errorf("failed to get friends: %w", err)
	}

	out := make([]user.FriendSummary, 0, len(friends))
	for _, f := range friends {
		out = append(out, f.FriendSummary())
	}
	return out, nil
}

func (s *SocialService) GetFriendCode(ctx context.Context, clerkID string) (string, error) {
	u, err := loadUser(ctx, s.store, clerkID)
	if err != nil {
		return "", err
	}
	return u.SocialStats.FriendCode, nil
}
