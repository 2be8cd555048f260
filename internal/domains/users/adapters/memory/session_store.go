package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	userports "github.com/Apurer/go-gin-commerce-api/internal/domains/users/ports"
)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	session sync.Map
	now     func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, session userports.Session) error {
	if strings.TrimSpace(session.ID) == "" || strings.TrimSpace(session.UserID) == "" {
		return errors.New("session id and user id are required")
	}
	s.session.Store(session.ID, session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (userports.Session, error) {
	value, ok := s.session.Load(id)
	if !ok {
		return userports.Session{}, userports.ErrSessionNotFound
	}
	session := value.(userports.Session)
	if !session.ExpiresAt.IsZero() && !session.ExpiresAt.After(s.now()) {
		s.session.Delete(id)
		return userports.Session{}, userports.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.session.Delete(id)
	return nil
}

func (s *SessionStore) DeleteByUser(_ context.Context, userID string) error {
	s.session.Range(func(key, value any) bool {
		if value.(userports.Session).UserID == userID {
			s.session.Delete(key)
		}
		return true
	})
	return nil
}

// PurgeExpired drops every expired session and reports how many were dropped.
func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	now := s.now()
	var purged int64
	s.session.Range(func(key, value any) bool {
		if exp := value.(userports.Session).ExpiresAt; !exp.IsZero() && !exp.After(now) {
			s.session.Delete(key)
			purged++
		}
		return true
	})
	return purged, nil
}

var _ userports.SessionStore = (*SessionStore)(nil)
