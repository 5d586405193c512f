// Package redis stores snapshots as plain string values in Redis, one key per
// snapshot under a habitquest: prefix.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/storage"
)

const keyPrefix = constants.AppName + ":"

var ErrInvalidConnectionString = errors.New("invalid Redis connection string")

type Store struct {
	connStr string
	timeout time.Duration
	client  *redis.Client
}

// New returns a Store for a redis:// or rediss:// URL. Each call to the
// server is bounded by timeout.
func New(connStr string, timeout time.Duration) *Store {
	return &Store{connStr: connStr, timeout: timeout}
}

// ValidateConnString checks that connStr is a redis:// or rediss:// URL.
// Unlike Postgres there is no password file to fall back on, so a password
// is allowed here and the whole URL is expected to live in the keyring.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := redis.ParseURL(connStr); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	return true, nil
}

// HasPassword reports whether the URL carries a password.
func HasPassword(connStr string) bool {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return false
	}
	_, isSet := u.User.Password()
	return isSet
}

func (s *Store) connect() error {
	if s.client != nil {
		return nil
	}
	opts, err := redis.ParseURL(s.connStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	opts.DialTimeout = s.timeout
	opts.ReadTimeout = s.timeout
	opts.WriteTimeout = s.timeout
	s.client = redis.NewClient(opts)
	return nil
}

func (s *Store) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Store) ping() error {
	ctx, cancel := s.ctx()
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

func (s *Store) Init() error {
	if err := s.connect(); err != nil {
		return err
	}
	return s.ping()
}

func (s *Store) Load() error {
	return s.Init()
}

func (s *Store) Close() error {
	if s.client != nil {
		err := s.client.Close()
		s.client = nil
		return err
	}
	return nil
}

func (s *Store) Get(key string) ([]byte, error) {
	if s.client == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	ctx, cancel := s.ctx()
	defer cancel()

	val, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrKeyNotFound
		}
		return nil, err
	}
	return val, nil
}

func (s *Store) Put(key string, value []byte) error {
	if s.client == nil {
		return fmt.Errorf("storage not loaded")
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Set(ctx, keyPrefix+key, value, 0).Err()
}

func (s *Store) Delete(key string) error {
	if s.client == nil {
		return fmt.Errorf("storage not loaded")
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Del(ctx, keyPrefix+key).Err()
}

func (s *Store) GetConfigPath() string {
	return "redis"
}
