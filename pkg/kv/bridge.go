package kv

import (
	"context"
	"log/slog"
	"sync"
)

// Well-known keys.
const (
	KeySelectedUser = "paqs-selected-user"
	KeyTheme        = "paqs-theme"
)

// Bridge is the best-effort front for a Storage. Its methods never return
// errors.
type Bridge struct {
	storage Storage
	logger  *slog.Logger

	mu       sync.Mutex
	degraded bool
	shadow   map[string]string
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithLogger sets the logger used to report storage failures.
func WithLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBridge wraps storage. A nil storage behaves like NoopStorage.
func NewBridge(storage Storage, opts ...BridgeOption) *Bridge {
	if storage == nil {
		storage = NoopStorage{}
	}
	b := &Bridge{
		storage: storage,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Read returns the value stored under key. Errors are logged and reported as
// a missing key.
func (b *Bridge) Read(key string) (string, bool) {
	b.mu.Lock()
	if b.degraded {
		value, ok := b.shadow[key]
		b.mu.Unlock()
		return value, ok
	}
	b.mu.Unlock()

	value, ok, err := b.storage.Get(context.Background(), key)
	if err != nil {
		b.logger.Warn("kv: read failed", "key", key, "error", err)
		return "", false
	}
	return value, ok
}

// Write stores value under key.
func (b *Bridge) Write(key, value string) {
	b.commit(key, &value)
}

// Remove deletes key.
func (b *Bridge) Remove(key string) {
	b.commit(key, nil)
}

// Degraded reports whether a write failure switched the bridge to memory-only
// mode.
func (b *Bridge) Degraded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.degraded
}

func (b *Bridge) commit(key string, value *string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.degraded {
		b.shadowWrite(key, value)
		return
	}

	var err error
	if value == nil {
		err = b.storage.Delete(context.Background(), key)
	} else {
		err = b.storage.Set(context.Background(), key, *value)
	}
	if err == nil {
		return
	}

	b.logger.Warn("kv: write failed, continuing in memory", "key", key, "error", err)
	b.degraded = true
	b.shadow = map[string]string{}
	b.shadowWrite(key, value)
}

func (b *Bridge) shadowWrite(key string, value *string) {
	if value == nil {
		delete(b.shadow, key)
		return
	}
	b.shadow[key] = *value
}
