package gateway

import "sync"

// BusLock serialises transactions on one physical bus. Every gateway on the
// same bus id holds the same *BusLock.
type BusLock struct {
	mu sync.Mutex
	id string
}

func (l *BusLock) ID() string { return l.id }

func (l *BusLock) claim()   { l.mu.Lock() }
func (l *BusLock) release() { l.mu.Unlock() }

// Locks hands out one BusLock per bus id.
type Locks struct {
	mu sync.Mutex
	m  map[string]*BusLock
}

func NewLocks() *Locks { return &Locks{m: map[string]*BusLock{}} }

// For returns the lock for id, creating it on first use.
func (ls *Locks) For(id string) *BusLock {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if l, ok := ls.m[id]; ok {
		return l
	}
	l := &BusLock{id: id}
	ls.m[id] = l
	return l
}
