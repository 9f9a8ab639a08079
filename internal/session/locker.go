package session

import "sync"

// Locker serializes turns for the same session id. Chat turns from one user
// are sequential in practice, but nothing stops a client from firing two
// requests at once, and interleaved turns would corrupt the stored session.
type Locker struct {
	mu sync.Map // session id -> *sync.Mutex
}

// Lock blocks until the session is free and returns the matching unlock.
// Mutexes are retained for the life of the process.
func (l *Locker) Lock(id string) (unlock func()) {
	v, _ := l.mu.LoadOrStore(id, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
