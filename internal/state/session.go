// Package state holds the process-wide views the UI renders from: who is
// signed in, and the cached post lists.
package state

import (
	"context"
	"sync"

	"inkflow/internal/models"
)

type SessionService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
}

type SessionSnapshot struct {
	User    *models.User
	Loading bool
	Error   string
}

type Session struct {
	svc SessionService

	mu       sync.RWMutex
	user     *models.User
	inflight int
	err      string
}

// NewSession restores any persisted session before returning.
func NewSession(ctx context.Context, svc SessionService) (*Session, error) {
	u, err := svc.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{svc: svc, user: u}, nil
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionSnapshot{User: copyUser(s.user), Loading: s.inflight > 0, Error: s.err}
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	return s.authenticate(func() (*models.User, error) { return s.svc.Login(ctx, email, password) })
}

func (s *Session) Signup(ctx context.Context, name, email, password string) error {
	return s.authenticate(func() (*models.User, error) { return s.svc.Signup(ctx, name, email, password) })
}

func (s *Session) authenticate(call func() (*models.User, error)) error {
	s.mu.Lock()
	s.inflight++
	s.err = ""
	s.mu.Unlock()

	u, err := call()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.user = u
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	err := s.svc.Logout(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	if err != nil {
		s.err = err.Error()
	}
	return err
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
