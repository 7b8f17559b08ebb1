package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/patients"
)

// Event notifies observers of credential changes.
type Event string

const (
	EventLogin  Event = "login"
	EventLogout Event = "logout"
)

// Observer receives session events. Observers are called synchronously under
// no lock, in subscription order.
type Observer func(Event)

// Session holds the bearer credential and patient identity for the running
// client. It replaces the original's ambient localStorage reads: every
// component that needs the credential gets handed a *Session explicitly.
type Session struct {
	mu        sync.RWMutex
	token     string
	profile   *patients.Profile
	path      string // token file, empty disables persistence
	observers []Observer
}

// New creates an in-memory session.
func New() *Session { return &Session{} }

// NewPersistent loads any previously saved identity from path and keeps the
// file in sync on login/logout.
func NewPersistent(path string) (*Session, error) {
	s := &Session{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	var saved struct {
		Token   string            `json:"token"`
		Profile *patients.Profile `json:"profile,omitempty"`
	}
	if err := json.Unmarshal(data, &saved); err != nil {
		// A corrupt token file is treated as logged out.
		return s, nil
	}
	s.token = saved.Token
	s.profile = saved.Profile
	return s, nil
}

// Subscribe registers an observer for login/logout events.
func (s *Session) Subscribe(o Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Token returns the current bearer credential, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Profile returns the cached identity, nil when logged out.
func (s *Session) Profile() *patients.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Authenticated reports whether a credential is present.
func (s *Session) Authenticated() bool { return s.Token() != "" }

// SetIdentity stores a fresh credential after login and notifies observers.
func (s *Session) SetIdentity(id patients.Identity) {
	s.mu.Lock()
	s.token = id.Token
	p := id.Profile
	s.profile = &p
	s.persistLocked()
	obs := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range obs {
		o(EventLogin)
	}
}

// Clear drops the credential. Callers invoke it on explicit logout and when
// any component surfaces an auth error.
func (s *Session) Clear() {
	s.mu.Lock()
	wasAuthed := s.token != ""
	s.token = ""
	s.profile = nil
	s.persistLocked()
	obs := append([]Observer(nil), s.observers...)
	s.mu.Unlock()

	if !wasAuthed {
		return
	}
	for _, o := range obs {
		o(EventLogout)
	}
}

func (s *Session) persistLocked() {
	if s.path == "" {
		return
	}
	if s.token == "" {
		os.Remove(s.path)
		return
	}
	saved := struct {
		Token   string            `json:"token"`
		Profile *patients.Profile `json:"profile,omitempty"`
	}{Token: s.token, Profile: s.profile}
	data, err := json.Marshal(saved)
	if err != nil {
		return
	}
	os.MkdirAll(filepath.Dir(s.path), 0o700)
	os.WriteFile(s.path, data, 0o600)
}
