package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Alturino/kickshopping/internal/config"
	"github.com/Alturino/kickshopping/internal/errors"
	"github.com/Alturino/kickshopping/internal/infra"
	"github.com/Alturino/kickshopping/internal/log"
)

// Store is the client-side key/value storage holding token, user_id and user_type.
// Get returns errors.ErrStoreKeyNotFound for a key that was never set.
type Store interface {
	Get(c context.Context, key string) (string, error)
	Set(c context.Context, key string, value string) error
	Delete(c context.Context, keys ...string) error
	Clear(c context.Context) error
}

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// NewStore builds the store selected by cfg.Driver. Stores that hold a connection
// also implement io.Closer.
func NewStore(c context.Context, cfg config.Session, cacheCfg config.Cache) (Store, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "session NewStore").
		Str(log.KeyStoreDriver, cfg.Driver).
		Logger()

	logger.Info().Msg("initializing token store")
	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile, "":
		return NewFileStore(cfg.Path), nil
	case DriverRedis:
		c = logger.WithContext(c)
		client, err := infra.NewCacheClient(c, cacheCfg)
		if err != nil {
			err = fmt.Errorf("failed initializing redis token store with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		return NewRedisStore(client, cfg.Namespace), nil
	default:
		err := fmt.Errorf("driver=%s with error=%w", cfg.Driver, errors.ErrUnknownDriver)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
}

// CloseStore releases the store's connection when it has one.
func CloseStore(store Store) error {
	if closer, ok := store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return "", errors.ErrStoreKeyNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = map[string]string{}
	return nil
}
