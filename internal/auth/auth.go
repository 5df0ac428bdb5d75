// Package auth provides the signed-in user capability consumed by the
// summarizer workflow, the contact form and the landing site.
package auth

import (
	"errors"
	"sync"
	"time"
)

// ErrNotSignedIn is returned when a gated operation runs without a user
var ErrNotSignedIn = errors.New("sign in first: run `docsum login`")

// User is the identity of the signed-in account
type User struct {
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	ExpiresAt     time.Time `json:"expires_at,omitempty"`
}

// Name returns the display name, falling back to "User"
func (u *User) Name() string {
	if u == nil || u.DisplayName == "" {
		return "User"
	}
	return u.DisplayName
}

// Context exposes the current user and change notifications
type Context interface {
	// CurrentUser returns the signed-in user, if any
	CurrentUser() (*User, bool)

	// Subscribe registers fn for sign-in and sign-out changes.
	// fn receives nil on sign-out. The returned func unsubscribes.
	Subscribe(fn func(*User)) (unsubscribe func())
}

// Require returns the current user or ErrNotSignedIn
func Require(ctx Context) (*User, error) {
	if ctx == nil {
		return nil, ErrNotSignedIn
	}
	user, ok := ctx.CurrentUser()
	if !ok {
		return nil, ErrNotSignedIn
	}
	return user, nil
}

// subscribers is a registry of change callbacks
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(*User)
}

func (s *subscribers) add(fn func(*User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[int]func(*User))
	}
	id := s.next
	s.next++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.fns, id)
		})
	}
}

// notify calls every subscriber outside the lock
func (s *subscribers) notify(user *User) {
	s.mu.Lock()
	fns := make([]func(*User), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}

// StaticContext is an in-memory Context
type StaticContext struct {
	mu   sync.RWMutex
	user *User
	subs subscribers
}

// NewStaticContext creates a context holding user; nil means signed out
func NewStaticContext(user *User) *StaticContext {
	return &StaticContext{user: user}
}

// CurrentUser implements Context
func (c *StaticContext) CurrentUser() (*User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user, c.user != nil
}

// Subscribe implements Context
func (c *StaticContext) Subscribe(fn func(*User)) func() {
	return c.subs.add(fn)
}

// SetUser replaces the user and notifies subscribers
func (c *StaticContext) SetUser(user *User) {
	c.mu.Lock()
	c.user = user
	c.mu.Unlock()
	c.subs.notify(user)
}
