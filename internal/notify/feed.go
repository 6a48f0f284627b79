package notify

import (
	"context"
	"sync"
)

// Feed keeps the most recent notifications in memory for polling clients.
type Feed struct {
	mu    sync.RWMutex
	items []Notification
	limit int
}

func NewFeed(limit int) *Feed {
	if limit < 1 {
		limit = 1
	}
	return &Feed{limit: limit, items: make([]Notification, 0, limit)}
}

func (f *Feed) Notify(_ context.Context, n Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == f.limit {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, n)
}

// Recent returns up to n notifications, newest first. n <= 0 returns all.
func (f *Feed) Recent(n int) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if n <= 0 || n > len(f.items) {
		n = len(f.items)
	}
	out := make([]Notification, 0, n)
	for i := len(f.items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, f.items[i])
	}
	return out
}

func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = f.items[:0]
}
