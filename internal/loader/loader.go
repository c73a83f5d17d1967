package loader

import (
	"context"
	"sync"
)

// BatchFunc fetches values for a batch of keys in one round trip. Keys with
// no value are simply absent from the returned map.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Loader batches and caches lookups for the lifetime of a single request.
// Concurrent loads of the same key share one fetch; repeated loads hit the
// cache. Loaders are cheap, build a fresh set per request and throw it away.
type Loader[K comparable, V any] struct {
	fetch BatchFunc[K, V]

	mu      sync.Mutex
	entries map[K]*entry[V]
}

type entry[V any] struct {
	done  chan struct{}
	value V
	found bool
	err   error
}

// New creates a loader around fetch.
func New[K comparable, V any](fetch BatchFunc[K, V]) *Loader[K, V] {
	return &Loader[K, V]{fetch: fetch, entries: make(map[K]*entry[V])}
}

// Load returns the value for key, fetching it if no earlier load already has.
// found is false when the backing fetch had no value for the key.
func (l *Loader[K, V]) Load(ctx context.Context, key K) (value V, found bool, err error) {
	values, err := l.LoadMany(ctx, []K{key})
	if err != nil {
		var zero V
		return zero, false, err
	}
	value, found = values[key]
	return value, found, nil
}

// LoadMany returns values for keys, fetching only the keys no earlier load
// covered, in a single batch. The result map omits keys with no value.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) (map[K]V, error) {
	owned, waiting := l.claim(keys)

	if len(owned) > 0 {
		fetched, err := l.fetch(ctx, owned)
		l.mu.Lock()
		for _, key := range owned {
			e := l.entries[key]
			if err != nil {
				e.err = err
			} else if value, ok := fetched[key]; ok {
				e.value = value
				e.found = true
			}
			close(e.done)
		}
		l.mu.Unlock()
	}

	for _, e := range waiting {
		select {
		case <-e.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	results := make(map[K]V, len(keys))
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range keys {
		e := l.entries[key]
		if e.err != nil {
			return nil, e.err
		}
		if e.found {
			results[key] = e.value
		}
	}
	return results, nil
}

// Prime seeds the cache with a value already in hand, so later loads skip the
// fetch entirely.
func (l *Loader[K, V]) Prime(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.entries[key]; exists {
		return
	}
	e := &entry[V]{done: make(chan struct{}), value: value, found: true}
	close(e.done)
	l.entries[key] = e
}

// claim partitions keys into those this call must fetch and entries another
// in-flight call already owns.
func (l *Loader[K, V]) claim(keys []K) (owned []K, waiting []*entry[V]) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[K]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if e, exists := l.entries[key]; exists {
			waiting = append(waiting, e)
			continue
		}
		l.entries[key] = &entry[V]{done: make(chan struct{})}
		owned = append(owned, key)
	}
	return owned, waiting
}
