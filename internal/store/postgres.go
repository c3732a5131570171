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

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps each record as a JSONB document. A few fields are
// copied into columns so they can be indexed and filtered on.
type PostgresStore struct {
	db *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	clerk_id    TEXT UNIQUE NOT NULL,
	friend_code TEXT UNIQUE NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	doc         JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	status     TEXT NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	doc        JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_user_start_idx ON sessions (user_id, start_time DESC);

CREATE TABLE IF NOT EXISTS missions (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	doc        JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS missions_name_idx ON missions (name);

CREATE TABLE IF NOT EXISTS leaderboards (
	key  TEXT PRIMARY KEY,
	doc  JSONB NOT NULL
);
`

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return &PostgresStore{db: pool}, nil
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func (s *PostgresStore) SaveUser(ctx context.Context, u *user.User) error {
	doc, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	query := `
	INSERT INTO users (id, clerk_id, friend_code, created_at, doc)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc
	`
	if _, err := s.db.Exec(ctx, query, u.ID, u.ClerkID, u.SocialStats.FriendCode, u.CreatedAt, doc); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*user.User, error) {
	return getDoc[user.User](ctx, s.db, `SELECT doc FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	return getDoc[user.User](ctx, s.db, `SELECT doc FROM users WHERE clerk_id = $1`, clerkID)
}

func (s *PostgresStore) GetUserByFriendCode(ctx context.Context, code string) (*user.User, error) {
	return getDoc[user.User](ctx, s.db, `SELECT doc FROM users WHERE friend_code = $1`, code)
}

func (s *PostgresStore) GetUsersByIDs(ctx context.Context, ids []string) ([]*user.User, error) {
	if len(ids) == 0 {
		return []*user.User{}, nil
	}
	return listDocs[user.User](ctx, s.db, `SELECT doc FROM users WHERE id = ANY($1) ORDER BY created_at`, ids)
}

func (s *PostgresStore) ListUsers(ctx context.Context) ([]*user.User, error) {
	return listDocs[user.User](ctx, s.db, `SELECT doc FROM users ORDER BY created_at`)
}

func (s *PostgresStore) SaveSession(ctx context.Context, sess *session.Session) error {
	doc, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	query := `
	INSERT INTO sessions (id, user_id, status, start_time, doc)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, doc = EXCLUDED.doc
	`
	if _, err := s.db.Exec(ctx, query, sess.ID, sess.UserID, string(sess.Status), sess.StartTime, doc); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return getDoc[session.Session](ctx, s.db, `SELECT doc FROM sessions WHERE id = $1`, id)
}

func (s *PostgresStore) GetActiveSession(ctx context.Context, userID string) (*session.Session, error) {
	query := `
	SELECT doc FROM sessions
	WHERE user_id = $1 AND status = $2
	ORDER BY start_time DESC
	LIMIT 1
	`
	return getDoc[session.Session](ctx, s.db, query, userID, string(session.StatusActive))
}

func (s *PostgresStore) ListSessions(ctx context.Context, userID string, f SessionFilter) ([]*session.Session, int, error) {
	var since *time.Time
	if !f.Since.IsZero() {
		since = &f.Since
	}
	where := `WHERE user_id = $1 AND ($2 = '' OR status = $2) AND ($3::timestamptz IS NULL OR start_time >= $3)`

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM sessions `+where, userID, string(f.Status), since).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	var limit *int
	if f.Limit > 0 {
		limit = &f.Limit
	}
	query := `SELECT doc FROM sessions ` + where + ` ORDER BY start_time DESC LIMIT $4 OFFSET $5`
	sessions, err := listDocs[session.Session](ctx, s.db, query, userID, string(f.Status), since, limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (s *PostgresStore) SaveMission(ctx context.Context, m *mission.Mission) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal mission: %w", err)
	}

	query := `
	INSERT INTO missions (id, name, created_at, doc)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, doc = EXCLUDED.doc
	`
	if _, err := s.db.Exec(ctx, query, m.ID, m.Name, m.CreatedAt, doc); err != nil {
		return fmt.Errorf("failed to save mission: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetMission(ctx context.Context, id string) (*mission.Mission, error) {
	return getDoc[mission.Mission](ctx, s.db, `SELECT doc FROM missions WHERE id = $1`, id)
}

func (s *PostgresStore) GetMissionByName(ctx context.Context, name string) (*mission.Mission, error) {
	return getDoc[mission.Mission](ctx, s.db, `SELECT doc FROM missions WHERE name = $1 ORDER BY created_at LIMIT 1`, name)
}

func (s *PostgresStore) ListMissions(ctx context.Context) ([]*mission.Mission, error) {
	return listDocs[mission.Mission](ctx, s.db, `SELECT doc FROM missions ORDER BY created_at DESC`)
}

func (s *PostgresStore) SaveLeaderboard(ctx context.Context, lb *leaderboard.Leaderboard) error {
	doc, err := json.Marshal(lb)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}

	query := `
	INSERT INTO leaderboards (key, doc) VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET doc = EXCLUDED.doc
	`
	if _, err := s.db.Exec(ctx, query, lb.Key(), doc); err != nil {
		return fmt.Errorf("failed to save leaderboard: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetLeaderboard(ctx context.Context, t leaderboard.Type, c leaderboard.Category, missionID string) (*leaderboard.Leaderboard, error) {
	return getDoc[leaderboard.Leaderboard](ctx, s.db, `SELECT doc FROM leaderboards WHERE key = $1`, leaderboard.Key(t, c, missionID))
}

func getDoc[T any](ctx context.Context, db *pgxpool.Pool, query string, args ...any) (*T, error) {
	var raw []byte
	if err := db.QueryRow(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return out, nil
}

func listDocs[T any](ctx context.Context, db *pgxpool.Pool, query string, args ...any) ([]*T, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	out := []*T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		item := new(T)
		if err := json.Unmarshal(raw, item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal document: %w", err)
		}
		out = append(out, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return out, nil
}
