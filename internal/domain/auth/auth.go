// Package auth gates administrative operations behind a login.
package auth

import "crypto/subtle"

// Session is the login state of one client.
type Session struct {
	Token    string
	Username string
	LoggedIn bool
}

// Authenticator decides whether a session may perform admin operations.
type Authenticator interface {
	IsLoggedIn(s *Session) bool
	// Login marks s as logged in when the credentials match.
	Login(s *Session, username, password string) bool
	Logout(s *Session)
}

var _ Authenticator = (*AdminAuthenticator)(nil)

// AdminAuthenticator checks credentials against a configured map of
// username to password.
//
// Passwords are kept and compared in plain text. This is not a hardened
// scheme and must not be exposed beyond a trusted deployment.
type AdminAuthenticator struct {
	credentials map[string]string
}

// NewAdminAuthenticator copies credentials into a new AdminAuthenticator.
func NewAdminAuthenticator(credentials map[string]string) *AdminAuthenticator {
	creds := make(map[string]string, len(credentials))
	for u, p := range credentials {
		creds[u] = p
	}
	return &AdminAuthenticator{credentials: creds}
}

func (a *AdminAuthenticator) IsLoggedIn(s *Session) bool {
	return s != nil && s.LoggedIn
}

func (a *AdminAuthenticator) Login(s *Session, username, password string) bool {
	if s == nil {
		return false
	}
	want, ok := a.credentials[username]
	if !ok || subtle.ConstantTimeCompare([]byte(want), []byte(password)) != 1 {
		return false
	}
	s.LoggedIn = true
	s.Username = username
	return true
}

func (a *AdminAuthenticator) Logout(s *Session) {
	if s == nil {
		return
	}
	s.LoggedIn = false
	s.Username = ""
}
