package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/agent-recruitment/internal/config"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
	"github.com/fairyhunter13/agent-recruitment/internal/usecase"
)

// stubUserRepo serves GetByUsername for the auth middleware tests.
type stubUserRepo struct {
	users map[string]domain.User
}

func (r *stubUserRepo) Create(domain.Context, domain.User) (int64, error) { return 0, nil }
func (r *stubUserRepo) Get(domain.Context, int64) (domain.User, error) {
	return domain.User{}, domain.ErrNotFound
}
func (r *stubUserRepo) List(domain.Context) ([]domain.User, error)          { return nil, nil }
func (r *stubUserRepo) SetActive(domain.Context, int64, bool) error         { return nil }
func (r *stubUserRepo) SetPasswordHash(domain.Context, int64, string) error { return nil }
func (r *stubUserRepo) Delete(domain.Context, int64) error                  { return nil }

func (r *stubUserRepo) GetByUsername(_ domain.Context, username string) (domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func testServer(users map[string]domain.User) *Server {
	cfg := config.Config{
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
		AgentToken:  "agent-secret",
		MaxUploadMB: 10,
	}
	return &Server{
		cfg:    cfg,
		Users:  usecase.UserService{Users: &stubUserRepo{users: users}},
		Tokens: NewTokenManager(cfg),
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-password", DefaultArgon2Params)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "argon2id$"))

	assert.True(t, VerifyPassword("s3cret-password", hash))
	assert.False(t, VerifyPassword("wrong-password", hash))
	assert.False(t, VerifyPassword("s3cret-password", "not-a-hash"))
	assert.False(t, VerifyPassword("s3cret-password", "argon2id$3$65536$2$bad!salt$bad!hash"))
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same", DefaultArgon2Params)
	require.NoError(t, err)
	h2, err := HashPassword("same", DefaultArgon2Params)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword("same", h1))
	assert.True(t, VerifyPassword("same", h2))
}

func TestTokenRoundtrip(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(config.Config{TokenSecret: "k", TokenTTL: time.Hour})
	token, err := tm.CreateToken("alice")
	require.NoError(t, err)

	data, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", data.Username)
	assert.True(t, data.ExpiresAt.After(time.Now()))
}

func TestTokenValidation_Rejects(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(config.Config{TokenSecret: "k", TokenTTL: time.Hour})
	token, err := tm.CreateToken("alice")
	require.NoError(t, err)

	_, err = tm.ValidateToken("")
	assert.Error(t, err)
	_, err = tm.ValidateToken("no-signature")
	assert.Error(t, err)
	_, err = tm.ValidateToken(token + "x")
	assert.Error(t, err)

	// A token signed with another secret never validates.
	other := NewTokenManager(config.Config{TokenSecret: "other", TokenTTL: time.Hour})
	stolen, err := other.CreateToken("alice")
	require.NoError(t, err)
	_, err = tm.ValidateToken(stolen)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager(config.Config{TokenSecret: "k", TokenTTL: -time.Minute})
	token, err := tm.CreateToken("alice")
	require.NoError(t, err)
	_, err = tm.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func authedHandler(t *testing.T, wantUser string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r)
		require.True(t, ok)
		assert.Equal(t, wantUser, u.Username)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRequired(t *testing.T) {
	t.Parallel()

	srv := testServer(map[string]domain.User{
		"alice":   {ID: 1, Username: "alice", Role: domain.RoleHR, IsActive: true},
		"mallory": {ID: 2, Username: "mallory", Role: domain.RoleHR, IsActive: false},
	})

	mw := srv.AuthRequired(authedHandler(t, "alice"))

	// No token.
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/candidates", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token, active user.
	token, err := srv.Tokens.CreateToken("alice")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/candidates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Valid token, disabled account.
	token, err = srv.Tokens.CreateToken("mallory")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/v1/candidates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Valid token, user deleted since issuance.
	token, err = srv.Tokens.CreateToken("ghost")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/v1/candidates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRequired(t *testing.T) {
	t.Parallel()

	srv := testServer(map[string]domain.User{
		"admin": {ID: 1, Username: "admin", Role: domain.RoleHRAdmin, IsActive: true},
		"hr":    {ID: 2, Username: "hr", Role: domain.RoleHR, IsActive: true},
	})

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	chain := srv.AuthRequired(srv.AdminRequired(ok))

	for name, want := range map[string]int{
		"admin": http.StatusOK,
		"hr":    http.StatusForbidden,
	} {
		token, err := srv.Tokens.CreateToken(name)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/jobs", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, name)
	}
}

func TestAgentAuth(t *testing.T) {
	t.Parallel()

	srv := testServer(nil)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mw := srv.AgentAuth(ok)

	// Correct token.
	req := httptest.NewRequest(http.MethodPost, "/recruitment/core/extract_candidate_cv", nil)
	req.Header.Set("Authorization", "Bearer agent-secret")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Wrong and missing tokens.
	req = httptest.NewRequest(http.MethodPost, "/recruitment/core/extract_candidate_cv", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/recruitment/core/extract_candidate_cv", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAgentAuth_UnconfiguredTokenRejectsAll(t *testing.T) {
	t.Parallel()

	srv := &Server{cfg: config.Config{AgentToken: ""}}
	mw := srv.AgentAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodPost, "/recruitment/core/extract_candidate_cv", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
