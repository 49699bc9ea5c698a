package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long a stored session stays valid after login.
const DefaultSessionTTL = 12 * time.Hour

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithTTL sets the session lifetime. Non-positive values keep the default.
func WithTTL(ttl time.Duration) SessionOption {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

type storedSession struct {
	Session
	expires time.Time
}

// SessionStore keeps sessions by opaque token. Entries expire ttl after they
// were last saved. It is safe for concurrent use.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]storedSession
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		sessions: map[string]storedSession{},
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New returns a fresh logged-out session with a random token. It is not
// stored until Save is called.
func (s *SessionStore) New() *Session {
	return &Session{Token: uuid.NewString()}
}

// Get returns a copy of the live session stored under token. Expired
// sessions are removed.
func (s *SessionStore) Get(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[token]
	if !ok {
		return nil, false
	}
	if !s.now().Before(stored.expires) {
		delete(s.sessions, token)
		return nil, false
	}
	sess := stored.Session
	return &sess, true
}

// Save stores sess under its token and restarts its lifetime. Logged-out
// sessions are dropped, and so is every expired entry.
func (s *SessionStore) Save(sess *Session) {
	if sess == nil || sess.Token == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, stored := range s.sessions {
		if !now.Before(stored.expires) {
			delete(s.sessions, token)
		}
	}
	if !sess.LoggedIn {
		delete(s.sessions, sess.Token)
		return
	}
	s.sessions[sess.Token] = storedSession{Session: *sess, expires: now.Add(s.ttl)}
}

// Delete removes the session stored under token.
func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
