package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luzza07/artist-management-backend/internal/auth"
	"github.com/luzza07/artist-management-backend/internal/catalog"
	"github.com/luzza07/artist-management-backend/internal/config"
	"github.com/luzza07/artist-management-backend/internal/users"
)

const testUserID = "9a0e1b4c-7d2f-4e55-8c1a-000000000001"

type testServer struct {
	handler http.Handler
	mock    pgxmock.PgxPoolIface
	tokens  *auth.TokenService
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	if mutate != nil {
		mutate(&cfg)
	}
	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), time.Minute, time.Hour)
	require.NoError(t, err)

	logger := log.New(io.Discard)
	userStore := users.NewPostgresStore(mock)
	catalogStore := catalog.NewPostgresStore(mock)

	h := NewRouter(Deps{
		Config:     cfg,
		Logger:     logger,
		Tokens:     tokens,
		Identities: userStore,
		Users:      users.NewService(userStore, tokens, nil, logger),
		Albums:     catalog.NewService(catalogStore, nil, logger),
		Artists:    catalog.NewArtists(catalogStore, nil, logger),
	})
	return &testServer{handler: h, mock: mock, tokens: tokens}
}

func (s *testServer) bearer(t *testing.T, role auth.Role) string {
	t.Helper()
	pair, err := s.tokens.Issue(testUserID)
	require.NoError(t, err)
	s.mock.ExpectQuery(`SELECT id, email, role_type, is_approved FROM users WHERE id = \$1`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role_type", "is_approved"}).
			AddRow(testUserID, "someone@example.com", string(role), true))
	return "Bearer " + pair.AccessToken
}

func (s *testServer) do(method, path, authz string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:4321"
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRoleGates(t *testing.T) {
	tests := []struct {
		name   string
		role   auth.Role
		method string
		path   string
	}{
		{"manager cannot reach albums", auth.RoleArtistManager, http.MethodGet, "/api/albums"},
		{"artist cannot manage users", auth.RoleArtist, http.MethodGet, "/api/users"},
		{"artist cannot manage artists", auth.RoleArtist, http.MethodGet, "/api/artists"},
		{"manager cannot approve", auth.RoleArtistManager, http.MethodGet, "/api/users/admin/pending-users"},
		{"super admin has no profile", auth.RoleSuperAdmin, http.MethodGet, "/api/users/artists/profile"},
		{"artist cannot see admin dashboard", auth.RoleArtist, http.MethodGet, "/api/users/dashboard/super-admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			rec := s.do(tt.method, tt.path, s.bearer(t, tt.role), "")
			assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
			assert.NoError(t, s.mock.ExpectationsWereMet())
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/api/albums", "/api/users", "/api/artists", "/api/users/dashboard/artist"} {
		rec := s.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := s.do(http.MethodGet, "/api/albums", "Bearer not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	s := newTestServer(t, nil)
	pair, err := s.tokens.Issue(testUserID)
	require.NoError(t, err)

	rec := s.do(http.MethodGet, "/api/albums", "Bearer "+pair.RefreshToken, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestArtistReachesOwnDashboard(t *testing.T) {
	s := newTestServer(t, nil)
	authz := s.bearer(t, auth.RoleArtist)
	s.mock.ExpectQuery(`SELECT COUNT\(\*\)::int\s+FROM tracks t`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	s.mock.ExpectQuery(`SELECT t.title`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"title"}))

	rec := s.do(http.MethodGet, "/api/users/dashboard/artist", authz, "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"total_works":0,"recent_works":[]}`, rec.Body.String())
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestLoginRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.LoginRatePerSec = 0.001
		c.LoginBurst = 1
	})
	s.mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ghost@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	body := `{"email":"ghost@example.com","password":"whatever1"}`
	rec := s.do(http.MethodPost, "/api/users/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/users/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.NoError(t, s.mock.ExpectationsWereMet())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.CORSAllowedOrigin = "https://admin.example.com" })
	rec := s.do(http.MethodOptions, "/api/albums", "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestBodyTooLarge(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.MaxBodyBytes = 16 })
	rec := s.do(http.MethodPost, "/api/users/auth/signup", "", strings.Repeat("x", 64))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestWSTokenMiddleware(t *testing.T) {
	var got string
	h := wsTokenMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws?access_token=abc", nil))
	assert.Equal(t, "Bearer abc", got)
}
