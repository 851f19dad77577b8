package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ositahq/cbam-gateway/internal/core/domain"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func TestSaveUpsertsSession(t *testing.T) {
	store, mock := newMockStore(t)
	session := &domain.Session{
		Token:     "tok-1",
		UserID:    "user-1",
		Email:     "filer@example.com",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WithArgs(session.Token, session.UserID, session.Email, session.CreatedAt, session.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.Save(context.Background(), session); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByTokenReturnsSession(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Now().UTC()
	expires := created.Add(time.Hour)

	rows := sqlmock.NewRows([]string{"token", "user_id", "email", "created_at", "expires_at"}).
		AddRow("tok-1", "user-1", "filer@example.com", created, expires)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT token, user_id, email, created_at, expires_at")).
		WithArgs("tok-1").
		WillReturnRows(rows)

	session, err := store.GetByToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if session.UserID != "user-1" || session.Email != "filer@example.com" {
		t.Fatalf("unexpected session %+v", session)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByTokenMissingIsSessionNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT token, user_id, email, created_at, expires_at")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "email", "created_at", "expires_at"}))

	_, err := store.GetByToken(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestDeleteExpiredReportsCount(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE expires_at < $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := store.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if purged != 3 {
		t.Fatalf("purged = %d, want 3", purged)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureSchemaRunsInOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(int64(2026083001)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS sessions").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
