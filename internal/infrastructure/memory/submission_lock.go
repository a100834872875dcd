package memory

import (
	"context"
	"sync"
)

// SubmissionLock is the in-process counterpart of the Redis submission lock.
type SubmissionLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewSubmissionLock() *SubmissionLock {
	return &SubmissionLock{held: make(map[string]struct{})}
}

func (l *SubmissionLock) Acquire(_ context.Context, deviceID, op string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := deviceID + ":" + op
	if _, ok := l.held[k]; ok {
		return false, nil
	}
	l.held[k] = struct{}{}
	return true, nil
}

func (l *SubmissionLock) Release(_ context.Context, deviceID, op string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, deviceID+":"+op)
	return nil
}
