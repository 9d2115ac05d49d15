package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/shared"
)

type stubRepo struct {
	accounts map[string]*Account
	sessions map[string]int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{accounts: map[string]*Account{}, sessions: map[string]int64{}}
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*Account, error) {
	acc, ok := s.accounts[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return acc, nil
}

func (s *stubRepo) CreateSession(_ context.Context, id string, userID int64, _ time.Time, _, _ string) error {
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func seedAccount(t *testing.T, repo *stubRepo, email, password string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo.accounts[email] = &Account{ID: 1, Email: email, Name: "Test User", PasswordHash: string(hash), IsActive: active}
}

func TestAuthenticate(t *testing.T) {
	repo := newStubRepo()
	seedAccount(t, repo, "user@example.com", "correct horse", true)
	svc := NewService(repo)

	acc, err := svc.Authenticate(context.Background(), "user@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, int64(1), acc.ID)

	_, err = svc.Authenticate(context.Background(), "user@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := newStubRepo()
	seedAccount(t, repo, "gone@example.com", "correct horse", false)
	svc := NewService(repo)

	_, err := svc.Authenticate(context.Background(), "gone@example.com", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSessionLifecycle(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	require.NoError(t, svc.RegisterSession(context.Background(), "sess-1", 42, time.Now().Add(time.Hour), "127.0.0.1", "go-test"))
	require.Equal(t, int64(42), repo.sessions["sess-1"])

	require.NoError(t, svc.RemoveSession(context.Background(), "sess-1"))
	require.NotContains(t, repo.sessions, "sess-1")
}
