// Package redis provides a keyed lock shared between processes through
// Redis, for deployments where several servers share one clone root.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

const (
	// KeyPrefix namespaces lock keys.
	KeyPrefix = "policy-reader:lock:"

	// DefaultTTL bounds how long a crashed holder can keep a key. A live
	// holder extends it every third of the TTL until it releases.
	DefaultTTL = 5 * time.Minute

	// DefaultRetryInterval is the polling interval while waiting.
	DefaultRetryInterval = 50 * time.Millisecond

	releaseTimeout = 5 * time.Second
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = goredis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// renewScript extends the key only if it still holds our token.
var renewScript = goredis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	end
	return 0
`)

// Ensure Locker implements the interface.
var _ driven.KeyedLocker = (*Locker)(nil)

// Config configures the Redis locker.
type Config struct {
	Addr          string
	Password      string
	DB            int
	TTL           time.Duration
	RetryInterval time.Duration
}

// Locker acquires keys with SET NX PX, keeps them alive while held and
// releases them with a compare-and-delete script.
type Locker struct {
	client *goredis.Client
	ttl    time.Duration
	retry  time.Duration
	logger *zap.Logger
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Locker, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewWithClient(client, cfg, logger), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, cfg Config, logger *zap.Logger) *Locker {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locker{
		client: client,
		ttl:    cfg.TTL,
		retry:  cfg.RetryInterval,
		logger: logger.With(zap.String("component", "lock")),
	}
}

// Lock polls until key is acquired or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := KeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			renewCtx, stop := context.WithCancel(context.Background())
			done := make(chan struct{})
			go l.renew(renewCtx, redisKey, token, done)
			return l.releaser(redisKey, token, stop, done), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// renew extends the key every third of the TTL until ctx is cancelled or
// the key no longer holds token.
func (l *Locker) renew(ctx context.Context, redisKey, token string, done chan<- struct{}) {
	defer close(done)

	interval := l.ttl / 3
	if interval <= 0 {
		interval = l.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n, err := renewScript.Run(ctx, l.client, []string{redisKey}, token, l.ttl.Milliseconds()).Int64()
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			l.logger.Warn("lock renewal failed", zap.String("key", redisKey), zap.Error(err))
		case n == 0:
			l.logger.Warn("lock lost while held", zap.String("key", redisKey))
			return
		}
	}
}

func (l *Locker) releaser(redisKey, token string, stop context.CancelFunc, done <-chan struct{}) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			<-done

			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			n, err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Int64()
			switch {
			case err != nil && !errors.Is(err, goredis.Nil):
				l.logger.Warn("lock release failed", zap.String("key", redisKey), zap.Error(err))
			case n == 0:
				l.logger.Warn("lock expired before release", zap.String("key", redisKey))
			}
		})
	}
}

// Close closes the Redis client.
func (l *Locker) Close() error {
	return l.client.Close()
}
