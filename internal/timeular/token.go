package timeular

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// tokenHolder owns the current bearer token for one Client. Concurrent
// requests that both need a fresh token share a single in-flight sign-in via
// the singleflight group instead of issuing duplicates.
type tokenHolder struct {
	mu     sync.RWMutex
	token  string
	flight singleflight.Group
}

func (h *tokenHolder) current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *tokenHolder) set(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}
