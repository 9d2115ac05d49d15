package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/auth"
	"github.com/mahesh42646/SkylithAdmin-sub001/internal/shared"
	_ "github.com/mahesh42646/SkylithAdmin-sub001/testing"
)

type stubRepo struct {
	account  *auth.Account
	sessions map[string]int64
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	if s.account == nil || s.account.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.account, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	if s.sessions == nil {
		s.sessions = map[string]int64{}
	}
	s.sessions[id] = userID
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager
}

func withSession(t *testing.T, sm *shared.SessionManager, req *http.Request) (*http.Request, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	return req.WithContext(ctx), sess
}

func seededRepo(t *testing.T, password string) *stubRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &stubRepo{account: &auth.Account{
		ID:           1,
		Email:        "admin@skylith.local",
		Name:         "Skylith Admin",
		PasswordHash: string(hash),
		IsActive:     true,
	}}
}

func TestLoginIssuesSessionAndToken(t *testing.T) {
	repo := seededRepo(t, "admin12345")
	handler, sessionManager := newAuthHandler(t, repo)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		req, sess := withSession(t, sessionManager, r)
		rr := httptest.NewRecorder()
		handlerServe(handler, rr, req)
		if err := sessionManager.Commit(req.Context(), rr, req, sess); err != nil {
			t.Fatalf("commit session: %v", err)
		}
		for k, vv := range rr.Header() {
			for _, v := range vv {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(rr.Code)
		_, _ = w.Write(rr.Body.Bytes())
	})

	body := `{"email":"admin@skylith.local","password":"admin12345"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	mux.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	var decoded struct {
		UserID    int64  `json:"user_id"`
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded.UserID != 1 {
		t.Fatalf("expected user id 1, got %d", decoded.UserID)
	}
	if decoded.CSRFToken == "" {
		t.Fatal("expected csrf token in response")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("expected one registered session, got %d", len(repo.sessions))
	}
	cookies := res.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == "test_session" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected session cookie to be set")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := seededRepo(t, "admin12345")
	handler, sessionManager := newAuthHandler(t, repo)

	body := `{"email":"admin@skylith.local","password":"wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req, _ = withSession(t, sessionManager, req)

	res := httptest.NewRecorder()
	handlerServe(handler, res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if len(repo.sessions) != 0 {
		t.Fatal("expected no session registration on failed login")
	}
}

// handlerServe routes a request through the handler's mounted routes.
func handlerServe(h *auth.Handler, w http.ResponseWriter, r *http.Request) {
	router := chi.NewRouter()
	router.Route("/auth", h.MountRoutes)
	router.ServeHTTP(w, r)
}
