package domain

import (
	"context"
	"sync"
)

// keyedLock serializes work per key, e.g. per hotel.
type keyedLock struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{slots: make(map[string]*lockSlot)}
}

// Lock blocks until key is free or ctx is done. The returned func releases
// the key.
func (l *keyedLock) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
		return func() {
			<-slot.ch
			l.release(key, slot)
		}, nil
	case <-ctx.Done():
		l.release(key, slot)
		return nil, ctx.Err()
	}
}

func (l *keyedLock) release(key string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *keyedLock) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
