package invoice

import (
	"errors"
	"strings"
	"sync"
)

// ErrEmptyURL is returned when subscribing without a URL
var ErrEmptyURL = errors.New("webhook url is required")

// Registry is the set of webhook subscriber URLs. A URL is present at most
// once; re-subscribing is a no-op. Subscriptions never expire and carry no
// per-subscriber delivery state.
type Registry struct {
	mu   sync.RWMutex
	urls []string
	seen map[string]struct{}
}

// NewRegistry creates a new empty Registry
func NewRegistry() *Registry {
	return &Registry{
		seen: make(map[string]struct{}),
	}
}

// Subscribe adds a URL to the subscriber set if absent and returns the
// current full subscriber list
func (r *Registry) Subscribe(url string) ([]string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrEmptyURL
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[url]; !ok {
		r.seen[url] = struct{}{}
		r.urls = append(r.urls, url)
	}

	urls := make([]string, len(r.urls))
	copy(urls, r.urls)
	return urls, nil
}

// List returns a snapshot of the current subscriber set
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]string, len(r.urls))
	copy(urls, r.urls)
	return urls
}
