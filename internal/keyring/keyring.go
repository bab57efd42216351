package keyring

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bintang/pkg/auth"
	"bintang/pkg/core"
)

// KeyRing rotates requests across several API keys. Each key is an
// immutable signer; the ring only tracks usage and availability.
type KeyRing struct {
	mu       sync.RWMutex
	keys     []*APIKey
	current  int
	strategy RotationStrategy
	logger   zerolog.Logger
}

type APIKey struct {
	ID         string
	Signer     *auth.Signer
	Disabled   bool
	LastUsed   time.Time
	ErrorCount int
}

type RotationStrategy int

const (
	// RotationRoundRobin moves to the next key on every Acquire.
	RotationRoundRobin RotationStrategy = iota
	// RotationOnError moves to the next key after any failed request.
	RotationOnError
	// RotationOnRateLimit moves to the next key only after a rate limit error.
	RotationOnRateLimit
)

type Option func(*KeyRing)

func WithLogger(l zerolog.Logger) Option {
	return func(k *KeyRing) {
		k.logger = l
	}
}

func NewKeyRing(keys []*APIKey, strategy RotationStrategy, opts ...Option) *KeyRing {
	keysCopy := make([]*APIKey, 0, len(keys))
	for _, k := range keys {
		c := *k
		keysCopy = append(keysCopy, &c)
	}

	kr := &KeyRing{
		keys:     keysCopy,
		strategy: strategy,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(kr)
	}
	return kr
}

// Len returns the number of keys, enabled or not.
func (k *KeyRing) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys)
}

// Current returns the active key without marking it used, or nil when every
// key is disabled.
func (k *KeyRing) Current() *APIKey {
	k.mu.RLock()
	defer k.mu.RUnlock()

	idx, ok := k.activeLocked()
	if !ok {
		return nil
	}
	return k.keys[idx]
}

// Acquire returns the signer to use for the next request and marks its key
// used. With RotationRoundRobin the ring then advances.
func (k *KeyRing) Acquire() (*auth.Signer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	idx, ok := k.activeLocked()
	if !ok {
		return nil, core.WrapError(core.ErrorTypeAuthentication, core.ErrCodeNoAPIKey, core.ErrNoAPIKey)
	}
	k.current = idx
	key := k.keys[idx]
	key.LastUsed = time.Now()

	if k.strategy == RotationRoundRobin {
		k.rotateLocked()
	}
	return key.Signer, nil
}

func (k *KeyRing) activeLocked() (int, bool) {
	for i := 0; i < len(k.keys); i++ {
		idx := (k.current + i) % len(k.keys)
		if !k.keys[idx].Disabled {
			return idx, true
		}
	}
	return 0, false
}

func (k *KeyRing) Rotate() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.rotateLocked()
}

func (k *KeyRing) rotateLocked() {
	if len(k.keys) == 0 {
		return
	}

	start := k.current
	for {
		k.current = (k.current + 1) % len(k.keys)
		if !k.keys[k.current].Disabled || k.current == start {
			return
		}
	}
}

// OnError records a failed request against the key that signed it and
// rotates according to the strategy.
func (k *KeyRing) OnError(signer *auth.Signer, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, key := range k.keys {
		if key.Signer != signer {
			continue
		}
		key.ErrorCount++

		rotate := k.strategy == RotationOnError ||
			(k.strategy == RotationOnRateLimit && core.IsRateLimitError(err))
		if rotate && i == k.current {
			k.rotateLocked()
			k.logger.Warn().
				Str("key", key.ID).
				Int("errors", key.ErrorCount).
				Msg("rotating api key")
		}
		return
	}
}

func (k *KeyRing) Disable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, key := range k.keys {
		if key.ID == id {
			key.Disabled = true
			return
		}
	}
}

func (k *KeyRing) Enable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, key := range k.keys {
		if key.ID == id {
			key.Disabled = false
			key.ErrorCount = 0
			return
		}
	}
}

func (k *KeyRing) Add(key *APIKey) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, existing := range k.keys {
		if existing.ID == key.ID {
			return
		}
	}

	k.keys = append(k.keys, &APIKey{
		ID:     key.ID,
		Signer: key.Signer,
	})
}

func (k *KeyRing) Remove(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, key := range k.keys {
		if key.ID == id {
			k.keys = append(k.keys[:i], k.keys[i+1:]...)
			if i < k.current {
				k.current--
			}
			if k.current >= len(k.keys) {
				k.current = 0
			}
			return
		}
	}
}

func (k *APIKey) String() string {
	return fmt.Sprintf("APIKey{ID:%s, %s}", k.ID, k.Signer)
}
