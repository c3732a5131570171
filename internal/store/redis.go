package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gamifiedFitnessAPI/internal/leaderboard"
	"gamifiedFitnessAPI/internal/mission"
	"gamifiedFitnessAPI/internal/session"
	"gamifiedFitnessAPI/internal/user"

	"github.com/go-redis/redis/v8"
)

// KeyPrefix namespaces every key the store writes.
const KeyPrefix = "fitness:"

// RedisStore keeps each record as a JSON string, with sets and sorted sets as
// secondary indexes. Index updates go through MULTI with the document write.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}))
}

func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func userKey(id string) string { return KeyPrefix + "user:" + id }

func clerkIndexKey(clerkID string) string { return KeyPrefix + "user:clerk:" + clerkID }

func friendCodeKey(code string) string { return KeyPrefix + "user:friendcode:" + code }

func usersSetKey() string { return KeyPrefix + "users" }

func sessionKey(id string) string { return KeyPrefix + "session:" + id }

func userSessionsKey(userID string) string { return KeyPrefix + "user_sessions:" + userID }

func activeSessionKey(userID string) string { return KeyPrefix + "active_session:" + userID }

func missionKey(id string) string { return KeyPrefix + "mission:" + id }

func missionNameKey(name string) string { return KeyPrefix + "mission:name:" + name }

func missionsSetKey() string { return KeyPrefix + "missions" }

func leaderboardKey(key string) string { return KeyPrefix + "leaderboard:" + key }

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SaveUser(ctx context.Context, u *user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKey(u.ID), data, 0)
		pipe.Set(ctx, clerkIndexKey(u.ClerkID), u.ID, 0)
		if u.SocialStats.FriendCode != "" {
			pipe.Set(ctx, friendCodeKey(u.SocialStats.FriendCode), u.ID, 0)
		}
		pipe.SAdd(ctx, usersSetKey(), u.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *RedisStore) GetUser(ctx context.Context, id string) (*user.User, error) {
	return getJSON[user.User](ctx, s.client, userKey(id))
}

func (s *RedisStore) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	id, err := s.lookup(ctx, clerkIndexKey(clerkID))
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *RedisStore) GetUserByFriendCode(ctx context.Context, code string) (*user.User, error) {
	id, err := s.lookup(ctx, friendCodeKey(code))
	if err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

func (s *RedisStore) GetUsersByIDs(ctx context.Context, ids []string) ([]*user.User, error) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, userKey(id))
	}
	return mgetJSON[user.User](ctx, s.client, keys)
}

func (s *RedisStore) ListUsers(ctx context.Context) ([]*user.User, error) {
	ids, err := s.client.SMembers(ctx, usersSetKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users, err := s.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sortByCreated(users)
	return users, nil
}

func (s *RedisStore) SaveSession(ctx context.Context, sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	activeKey := activeSessionKey(sess.UserID)
	current, err := s.client.Get(ctx, activeKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to read active session: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(sess.ID), data, 0)
		pipe.ZAdd(ctx, userSessionsKey(sess.UserID), &redis.Z{
			Score:  float64(sess.StartTime.UnixNano()),
			Member: sess.ID,
		})
		switch {
		case sess.IsActive():
			pipe.Set(ctx, activeKey, sess.ID, 0)
		case current == sess.ID:
			pipe.Del(ctx, activeKey)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisStore) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return getJSON[session.Session](ctx, s.client, sessionKey(id))
}

func (s *RedisStore) GetActiveSession(ctx context.Context, userID string) (*session.Session, error) {
	id, err := s.lookup(ctx, activeSessionKey(userID))
	if err != nil {
		return nil, err
	}
	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive() {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *RedisStore) ListSessions(ctx context.Context, userID string, f SessionFilter) ([]*session.Session, int, error) {
	ids, err := s.client.ZRevRange(ctx, userSessionsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	all, err := mgetJSON[session.Session](ctx, s.client, keys)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*session.Session, 0, len(all))
	for _, sess := range all {
		if matchesFilter(sess, f) {
			matched = append(matched, sess)
		}
	}
	return page(matched, f.Offset, f.Limit), len(matched), nil
}

func (s *RedisStore) SaveMission(ctx context.Context, m *mission.Mission) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal mission: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, missionKey(m.ID), data, 0)
		pipe.SetNX(ctx, missionNameKey(m.Name), m.ID, 0)
		pipe.SAdd(ctx, missionsSetKey(), m.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save mission: %w", err)
	}
	return nil
}

func (s *RedisStore) GetMission(ctx context.Context, id string) (*mission.Mission, error) {
	return getJSON[mission.Mission](ctx, s.client, missionKey(id))
}

func (s *RedisStore) GetMissionByName(ctx context.Context, name string) (*mission.Mission, error) {
	id, err := s.lookup(ctx, missionNameKey(name))
	if err != nil {
		return nil, err
	}
	return s.GetMission(ctx, id)
}

func (s *RedisStore) ListMissions(ctx context.Context) ([]*mission.Mission, error) {
	ids, err := s.client.SMembers(ctx, missionsSetKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, missionKey(id))
	}
	missions, err := mgetJSON[mission.Mission](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}
	sortMissionsNewestFirst(missions)
	return missions, nil
}

func (s *RedisStore) SaveLeaderboard(ctx context.Context, lb *leaderboard.Leaderboard) error {
	data, err := json.Marshal(lb)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	if err := s.client.Set(ctx, leaderboardKey(lb.Key()), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save leaderboard: %w", err)
	}
	return nil
}

func (s *RedisStore) GetLeaderboard(ctx context.Context, t leaderboard.Type, c leaderboard.Category, missionID string) (*leaderboard.Leaderboard, error) {
	return getJSON[leaderboard.Leaderboard](ctx, s.client, leaderboardKey(leaderboard.Key(t, c, missionID)))
}

func (s *RedisStore) lookup(ctx context.Context, key string) (string, error) {
	id, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read index %s: %w", key, err)
	}
	return id, nil
}

func getJSON[T any](ctx context.Context, client *redis.Client, key string) (*T, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}

	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return out, nil
}

// mgetJSON loads keys in order, skipping ones that no longer exist.
func mgetJSON[T any](ctx context.Context, client *redis.Client, keys []string) ([]*T, error) {
	out := []*T{}
	if len(keys) == 0 {
		return out, nil
	}

	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}

	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		item := new(T)
		if err := json.Unmarshal([]byte(str), item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", keys[i], err)
		}
		out = append(out, item)
	}
	return out, nil
}
