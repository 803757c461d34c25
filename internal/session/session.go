// Package session owns the bearer credential for the current user. Absence of
// a credential is the normal logged-out state, never an error.
package session

import (
	"os"
	"strings"
	"sync"
)

// Holder stores the bearer token, optionally mirrored to a file so a restart
// picks up the previous session. Clear is idempotent.
type Holder struct {
	mu    sync.RWMutex
	token string
	path  string
}

// New returns an empty in-memory holder.
func New() *Holder {
	return &Holder{}
}

// NewFromFile returns a holder mirrored to the given file, seeded with the
// file's current contents when it exists. A missing or unreadable file just
// means no session.
func NewFromFile(path string) *Holder {
	h := &Holder{path: path}
	if data, err := os.ReadFile(path); err == nil {
		h.token = strings.TrimSpace(string(data))
	}
	return h
}

// Token returns the current credential and whether one is present.
func (h *Holder) Token() (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token, h.token != ""
}

// Set replaces the credential.
func (h *Holder) Set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
	if h.path != "" && token != "" {
		_ = os.WriteFile(h.path, []byte(token), 0600)
	}
}

// Clear discards the credential. Safe to call repeatedly and when no
// credential is held.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = ""
	if h.path != "" {
		_ = os.Remove(h.path)
	}
}
