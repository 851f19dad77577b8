package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
	"github.com/ositahq/cbam-gateway/internal/core/ports"
)

// SessionManager owns the authentication state. Sign-in exchanges
// credentials with the identity provider and persists the resulting
// session; Resolve turns a bearer token back into an identity on every
// protected request.
type SessionManager struct {
	provider ports.IdentityProvider
	store    ports.SessionStore
	now      func() time.Time
}

func NewSessionManager(provider ports.IdentityProvider, store ports.SessionStore) *SessionManager {
	return &SessionManager{provider: provider, store: store, now: time.Now}
}

func (m *SessionManager) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "sign in", fmt.Errorf("email and password are required"))
	}

	session, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if err := m.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

func (m *SessionManager) SignOut(ctx context.Context, token string) error {
	if err := m.provider.SignOut(ctx, token); err != nil {
		// Provider-side revocation failing must not strand the local session.
		slog.Warn("provider_sign_out_failed", "error", err)
	}
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Resolve validates a token against the local store first and falls back
// to the identity provider for tokens issued elsewhere (the companion
// web app shares the provider).
func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve session", fmt.Errorf("missing token"))
	}

	session, err := m.store.GetByToken(ctx, token)
	if err == nil {
		if session.Expired(m.now()) {
			_ = m.store.Delete(ctx, token)
			return nil, domain.WrapError(domain.ErrUnauthorized, "resolve session", fmt.Errorf("session expired"))
		}
		return session, nil
	}
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	user, err := m.provider.UserFromToken(ctx, token)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "resolve session", err)
	}
	session = &domain.Session{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: m.now().UTC(),
		ExpiresAt: m.now().UTC().Add(24 * time.Hour),
	}
	if err := m.store.Save(ctx, session); err != nil {
		slog.Warn("session_persist_failed", "error", err)
	}
	return session, nil
}

// PurgeExpired removes expired sessions; called periodically by the web
// binary.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now().UTC())
}
