package progression

import "sync"

// topicLocks hands out one mutex per topic id. Entries are dropped once no
// goroutine holds or waits on them.
type topicLocks struct {
	mu    sync.Mutex
	locks map[string]*topicLock
}

type topicLock struct {
	mu   sync.Mutex
	refs int
}

func newTopicLocks() *topicLocks {
	return &topicLocks{locks: make(map[string]*topicLock)}
}

// Lock blocks until the caller owns topicID and returns the release func.
func (l *topicLocks) Lock(topicID string) func() {
	l.mu.Lock()
	tl, ok := l.locks[topicID]
	if !ok {
		tl = &topicLock{}
		l.locks[topicID] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.mu.Lock()
	return func() {
		tl.mu.Unlock()
		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, topicID)
		}
		l.mu.Unlock()
	}
}

func (l *topicLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
