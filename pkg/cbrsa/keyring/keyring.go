// Package keyring stores derived key pairs under random identifiers in a
// bounded LRU cache with optional expiry.
package keyring

import (
	"context"
	"sort"
	"sync"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/Code-Hex/go-generics-cache/policy/lru"
	"github.com/google/uuid"

	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/internal/errs"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/keys"
	"github.com/coinbase/cb-rsa-go/pkg/cbrsa/logging"
)

// DefaultCapacity is used when Config.Capacity is not positive.
const DefaultCapacity = 128

// ErrKeyNotFound is returned for unknown, evicted or expired ids.
var ErrKeyNotFound = errs.ErrKeyNotFound

// KeyID identifies a key pair in a Keyring.
type KeyID uuid.UUID

func (id KeyID) String() string {
	return uuid.UUID(id).String()
}

// ParseKeyID parses the canonical UUID form produced by KeyID.String.
func ParseKeyID(s string) (KeyID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return KeyID{}, errs.Errorf("ParseKeyID", errs.ErrInvalidArgument, "%v", err)
	}
	return KeyID(u), nil
}

// Config sizes a Keyring.
type Config struct {
	// Capacity is the number of key pairs kept before the least recently
	// used one is evicted.
	Capacity int
	// TTL expires entries after the given duration. Zero keeps them until
	// evicted.
	TTL time.Duration
	// OnChange, when set, receives the number of live entries after every
	// Put or Delete.
	OnChange func(n int)
	Logger   logging.Logger
}

// Keyring is safe for concurrent use.
type Keyring struct {
	mu    sync.Mutex
	cache *cache.Cache[KeyID, *keys.KeyPair]
	// expires mirrors the cache entries' deadlines so that counting live
	// entries does not touch their LRU position.
	expires  map[KeyID]time.Time
	ttl      time.Duration
	onChange func(int)
	logger   logging.Logger
}

// New returns an empty Keyring. The cache janitor that purges expired entries
// stops when ctx is done.
func New(ctx context.Context, cfg Config) *Keyring {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Keyring{
		cache: cache.NewContext(ctx,
			cache.AsLRU[KeyID, *keys.KeyPair](lru.WithCapacity(capacity)),
		),
		expires:  make(map[KeyID]time.Time),
		ttl:      cfg.TTL,
		onChange: cfg.OnChange,
		logger:   logger.With("component", "keyring"),
	}
}

// Put stores kp under a fresh random id.
func (k *Keyring) Put(ctx context.Context, kp *keys.KeyPair) (KeyID, error) {
	if kp == nil {
		return KeyID{}, errs.Errorf("Keyring.Put", errs.ErrInvalidArgument, "nil key pair")
	}
	id := KeyID(uuid.New())

	k.mu.Lock()
	if k.ttl > 0 {
		k.cache.Set(id, kp, cache.WithExpiration(k.ttl))
		k.expires[id] = time.Now().Add(k.ttl)
	} else {
		k.cache.Set(id, kp)
		k.expires[id] = time.Time{}
	}
	n := k.lenLocked()
	k.mu.Unlock()

	k.logger.Debug(ctx, "key stored", "key_id", id.String(), logging.BitLen("n_bits", kp.N()), "keys", n)
	k.notify(n)
	return id, nil
}

// Get returns the key pair stored under id.
func (k *Keyring) Get(id KeyID) (*keys.KeyPair, error) {
	k.mu.Lock()
	kp, ok := k.cache.Get(id)
	if ok && expired(k.expires[id], time.Now()) {
		kp, ok = nil, false
	}
	k.mu.Unlock()
	if !ok {
		return nil, errs.Errorf("Keyring.Get", errs.ErrKeyNotFound, "%s", id)
	}
	return kp, nil
}

// Delete removes id. Deleting an unknown id is not an error.
func (k *Keyring) Delete(ctx context.Context, id KeyID) {
	k.mu.Lock()
	k.cache.Delete(id)
	delete(k.expires, id)
	n := k.lenLocked()
	k.mu.Unlock()

	k.logger.Debug(ctx, "key deleted", "key_id", id.String(), "keys", n)
	k.notify(n)
}

// Len returns the number of live (unexpired) entries.
func (k *Keyring) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lenLocked()
}

// IDs returns the live ids in lexical order.
func (k *Keyring) IDs() []KeyID {
	k.mu.Lock()
	defer k.mu.Unlock()
	ids := k.liveLocked()
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func (k *Keyring) lenLocked() int {
	return len(k.liveLocked())
}

// liveLocked lists the cached ids that have not expired and drops deadlines
// of ids the cache has already evicted.
func (k *Keyring) liveLocked() []KeyID {
	now := time.Now()
	all := k.cache.Keys()
	present := make(map[KeyID]struct{}, len(all))
	live := make([]KeyID, 0, len(all))
	for _, id := range all {
		present[id] = struct{}{}
		if !expired(k.expires[id], now) {
			live = append(live, id)
		}
	}
	for id := range k.expires {
		if _, ok := present[id]; !ok {
			delete(k.expires, id)
		}
	}
	return live
}

func expired(deadline, now time.Time) bool {
	return !deadline.IsZero() && !now.Before(deadline)
}

func (k *Keyring) notify(n int) {
	if k.onChange != nil {
		k.onChange(n)
	}
}
