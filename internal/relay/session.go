package relay

import (
	"time"

	"github.com/flemzord/relaybot/pkg/message"
)

// Window is the fixed relay window opened by a trigger.
const Window = 60 * time.Second

// Session is the active relay: replies from the responder are echoed into
// Origin until ExpiresAt.
type Session struct {
	Origin    message.ChannelRef
	ExpiresAt time.Time
}

// Store holds at most one Session. It is not safe for concurrent use: the
// ingress consumer goroutine is its only caller.
type Store struct {
	current *Session
	window  time.Duration

	// observe, if set, is called after every transition with the session
	// concerned and whether it is now active.
	observe func(s Session, active bool)
}

// NewStore creates an empty store with the fixed relay window.
func NewStore() *Store {
	return &Store{window: Window}
}

// Start opens a session on origin, replacing any existing one whether or not
// it was still active.
func (s *Store) Start(origin message.ChannelRef, now time.Time) Session {
	sess := Session{Origin: origin, ExpiresAt: now.Add(s.window)}
	s.current = &sess
	if s.observe != nil {
		s.observe(sess, true)
	}
	return sess
}

// CheckAndMaybeExpire returns the session if it is still valid at now.
// An expired session is cleared and (zero, false) is returned.
func (s *Store) CheckAndMaybeExpire(now time.Time) (Session, bool) {
	if s.current == nil {
		return Session{}, false
	}
	if now.Before(s.current.ExpiresAt) {
		return *s.current, true
	}

	expired := *s.current
	s.current = nil
	if s.observe != nil {
		s.observe(expired, false)
	}
	return Session{}, false
}

// Current returns the stored session without checking its expiry.
func (s *Store) Current() (Session, bool) {
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}
