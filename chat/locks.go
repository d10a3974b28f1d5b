package chat

import "sync"

// threadLocks hands out one mutex per thread ID, serializing workflow
// executions for the same thread. Entries are never evicted; the map is
// bounded by the number of live threads.
type threadLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newThreadLocks() *threadLocks {
	return &threadLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *threadLocks) forThread(threadID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[threadID] = lock
	}
	return lock
}
