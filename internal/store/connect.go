package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Options struct {
	Backend        string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ConnectRetries uint64
}

// Open builds the configured backend and waits for it to answer a ping,
// retrying with exponential backoff.
func Open(ctx context.Context, opts Options) (Store, error) {
	var s Store

	switch opts.Backend {
	case BackendPostgres:
		pg, err := NewPostgresStore(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s = pg
	case BackendRedis:
		s = NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}

	if err := waitForStore(ctx, s, opts.ConnectRetries); err != nil {
		s.Close()
		return nil, err
	}

	if pg, ok := s.(*PostgresStore); ok {
		if err := pg.EnsureSchema(ctx); err != nil {
			s.Close()
			return nil, err
		}
	}

	logrus.WithField("backend", opts.Backend).Info("document store connected")
	return s, nil
}

func waitForStore(ctx context.Context, s Store, retries uint64) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)

	err := backoff.RetryNotify(
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			return s.Ping(pingCtx)
		},
		policy,
		func(err error, next time.Duration) {
			logrus.Warnf("store ping failed: %v, retrying in %v...", err, next)
		},
	)
	if err != nil {
		return fmt.Errorf("failed to reach store: %w", err)
	}
	return nil
}
