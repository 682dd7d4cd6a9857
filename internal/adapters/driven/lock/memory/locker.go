// Package memory provides an in-process keyed lock.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/policy-reader/internal/core/ports/driven"
)

// Ensure Locker implements the interface.
var _ driven.KeyedLocker = (*Locker)(nil)

// Locker serialises holders of the same key within one process.
// Waiting for a key can be abandoned by cancelling the context.
type Locker struct {
	mu   sync.Mutex
	keys map[string]*slot
}

type slot struct {
	held chan struct{}
	refs int
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{keys: make(map[string]*slot)}
}

// Lock blocks until key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.keys[key]
	if !ok {
		s = &slot{held: make(chan struct{}, 1)}
		l.keys[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.held <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.held
			l.release(key, s)
		})
	}, nil
}

func (l *Locker) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.keys, key)
	}
}

// Len returns the number of keys currently held or waited on.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
