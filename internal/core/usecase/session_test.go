package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

type fakeSessionStore struct {
	sessions map[string]*domain.Session
	saveErr  error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*domain.Session{}}
}

func (s *fakeSessionStore) Save(_ context.Context, session *domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[session.Token] = session
	return nil
}

func (s *fakeSessionStore) GetByToken(_ context.Context, token string) (*domain.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", fmt.Errorf("token %q", token))
	}
	return session, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, token string) error {
	delete(s.sessions, token)
	return nil
}

func (s *fakeSessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var purged int64
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged, nil
}

type fakeIdentityProvider struct {
	signInFn    func(email, password string) (*domain.Session, error)
	userFn      func(token string) (*domain.User, error)
	signOutErr  error
	userCalls   int
	signInCalls int
}

func (p *fakeIdentityProvider) SignIn(_ context.Context, email, password string) (*domain.Session, error) {
	p.signInCalls++
	return p.signInFn(email, password)
}

func (p *fakeIdentityProvider) SignOut(context.Context, string) error {
	return p.signOutErr
}

func (p *fakeIdentityProvider) UserFromToken(_ context.Context, token string) (*domain.User, error) {
	p.userCalls++
	return p.userFn(token)
}

func newSessionSetup() (*SessionManager, *fakeSessionStore, *fakeIdentityProvider) {
	provider := &fakeIdentityProvider{
		signInFn: func(email, _ string) (*domain.Session, error) {
			return &domain.Session{
				Token:     "tok-1",
				UserID:    "user-1",
				Email:     email,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
		userFn: func(string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: "filer@example.com"}, nil
		},
	}
	store := newFakeSessionStore()
	return NewSessionManager(provider, store), store, provider
}

func TestSignInPersistsSession(t *testing.T) {
	manager, store, _ := newSessionSetup()

	session, err := manager.SignIn(context.Background(), "filer@example.com", "secret")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if _, ok := store.sessions[session.Token]; !ok {
		t.Fatalf("session not persisted")
	}
}

func TestSignInRequiresCredentials(t *testing.T) {
	manager, _, provider := newSessionSetup()

	_, err := manager.SignIn(context.Background(), "", "secret")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if provider.signInCalls != 0 {
		t.Fatalf("missing credentials must not reach the provider")
	}
}

func TestResolvePrefersLocalStore(t *testing.T) {
	manager, store, provider := newSessionSetup()
	store.sessions["tok-1"] = &domain.Session{
		Token:     "tok-1",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	session, err := manager.Resolve(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if session.UserID != "user-1" {
		t.Fatalf("unexpected session %+v", session)
	}
	if provider.userCalls != 0 {
		t.Fatalf("locally known token must not hit the provider")
	}
}

func TestResolveExpiredSessionIsUnauthorized(t *testing.T) {
	manager, store, _ := newSessionSetup()
	store.sessions["tok-1"] = &domain.Session{
		Token:     "tok-1",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	_, err := manager.Resolve(context.Background(), "tok-1")
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, ok := store.sessions["tok-1"]; ok {
		t.Fatalf("expired session must be deleted")
	}
}

func TestResolveFallsBackToProvider(t *testing.T) {
	manager, store, provider := newSessionSetup()

	session, err := manager.Resolve(context.Background(), "provider-token")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if provider.userCalls != 1 {
		t.Fatalf("unknown token must be checked with the provider")
	}
	if session.UserID != "user-1" {
		t.Fatalf("unexpected session %+v", session)
	}
	if _, ok := store.sessions["provider-token"]; !ok {
		t.Fatalf("provider-issued session must be persisted locally")
	}
}

func TestResolveRejectsBadProviderToken(t *testing.T) {
	manager, _, provider := newSessionSetup()
	provider.userFn = func(string) (*domain.User, error) {
		return nil, fmt.Errorf("invalid token")
	}

	_, err := manager.Resolve(context.Background(), "garbage")
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestPurgeExpiredRemovesOnlyExpired(t *testing.T) {
	manager, store, _ := newSessionSetup()
	store.sessions["old"] = &domain.Session{Token: "old", ExpiresAt: time.Now().Add(-time.Hour)}
	store.sessions["live"] = &domain.Session{Token: "live", ExpiresAt: time.Now().Add(time.Hour)}

	purged, err := manager.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}
	if _, ok := store.sessions["live"]; !ok {
		t.Fatalf("live session must survive the purge")
	}
}
