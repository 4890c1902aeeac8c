package oauth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/entativa/eid/internal/errs"
	"github.com/entativa/eid/internal/store"
)

// SessionTTL is the default session lifetime (spec §6, "1h" idle default
// reused here as the hard cap; sliding activity extends last_active_at
// without extending expires_at).
const SessionTTL = time.Hour

// SessionManager owns Session lifecycle, grounded on the teacher's
// shared/middleware/auth.go device/claims shape (JWTMiddleware +
// SetUserContext), generalized from a bare user/username/email context
// value into the full device descriptor from spec §3.
type SessionManager struct {
	sessions *store.SessionRepo
}

func NewSessionManager(sessions *store.SessionRepo) *SessionManager {
	return &SessionManager{sessions: sessions}
}

func (s *SessionManager) Open(ctx context.Context, identityID uuid.UUID, clientID string, device store.DeviceDescriptor) (*store.Session, error) {
	now := time.Now().UTC()
	sess := &store.Session{
		ID:           uuid.New(),
		IdentityID:   identityID,
		ClientID:     clientID,
		Device:       device,
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    now.Add(SessionTTL),
		IsActive:     true,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionManager) Touch(ctx context.Context, id uuid.UUID) error {
	return s.sessions.Touch(ctx, id, time.Now().UTC())
}

func (s *SessionManager) AssertMFA(ctx context.Context, id, methodID uuid.UUID) error {
	return s.sessions.MarkMFAAsserted(ctx, id, methodID, time.Now().UTC())
}

func (s *SessionManager) Validate(ctx context.Context, id uuid.UUID) (*store.Session, error) {
	sess, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive {
		return nil, errs.New(errs.Unauthenticated, "session revoked")
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		return nil, errs.New(errs.Unauthenticated, "session expired")
	}
	return sess, nil
}

func (s *SessionManager) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.sessions.Revoke(ctx, id)
}
