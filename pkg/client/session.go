package client

import "sync"

// SessionState tracks where a session is in the Kite login flow.
type SessionState int

const (
	// StateUnauthenticated is the initial state: no login requested, no
	// session id held.
	StateUnauthenticated SessionState = iota

	// StatePendingLogin means a login URL has been handed to the user and
	// the client is waiting for the post-login callback.
	StatePendingLogin

	// StateAuthenticated means the callback has been processed and the
	// session id is held.
	StateAuthenticated
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StatePendingLogin:
		return "pending_login"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session holds the authentication state of one client. The id and state
// always change together under the lock, so a reader can never observe a
// session id without the authenticated state, or the reverse.
type Session struct {
	mu    sync.Mutex
	id    string
	state SessionState
}

// BeginLogin records that a login URL was issued. Any previously held
// session id stays until the next callback or reset replaces it.
func (s *Session) BeginLogin() {
	s.mu.Lock()
	s.state = StatePendingLogin
	s.mu.Unlock()
}

// Authenticate stores the session id and marks the session authenticated
// in one step.
func (s *Session) Authenticate(id string) {
	s.mu.Lock()
	s.id = id
	s.state = StateAuthenticated
	s.mu.Unlock()
}

// Reset clears the session id and returns to the unauthenticated state.
// Resetting an already clean session is a no-op.
func (s *Session) Reset() {
	s.mu.Lock()
	s.id = ""
	s.state = StateUnauthenticated
	s.mu.Unlock()
}

// ID returns the held session id, empty until authenticated.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Authenticated reports whether a session id is held.
func (s *Session) Authenticated() bool {
	return s.State() == StateAuthenticated
}
