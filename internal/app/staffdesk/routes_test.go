package staffdesk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/staffdesk/internal/lib/jwt"
	"github.com/magabrotheeeer/staffdesk/internal/lib/ratelimit"
	"github.com/magabrotheeeer/staffdesk/internal/lib/sl"
	"github.com/magabrotheeeer/staffdesk/internal/lib/validation"
	"github.com/magabrotheeeer/staffdesk/internal/models"
	"github.com/magabrotheeeer/staffdesk/internal/permissions"
	"github.com/magabrotheeeer/staffdesk/internal/storage"
)

type userStore map[string]*models.User

func (s userStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

func newRouter(t *testing.T) (http.Handler, *permissions.Registry, *jwt.MakerImpl) {
	t.Helper()
	tokens := jwt.NewJWTMaker("secret", time.Hour)
	r := chi.NewRouter()
	registry, err := RegisterRoutes(r, Deps{
		Log:    sl.Discard(),
		Tokens: tokens,
		UserStore: userStore{
			"ceo-id": {ID: "ceo-id", Username: "boss", Role: models.RoleCEO},
			"emp-id": {ID: "emp-id", Username: "worker", Role: models.RoleEmployee},
		},
		Limiter:   ratelimit.New(1, time.Minute),
		Validator: validation.New(),
	})
	require.NoError(t, err)
	return r, registry, tokens
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRegistryMatchesRoutes(t *testing.T) {
	_, registry, _ := newRouter(t)

	mods := registry.Modules()
	names := make([]string, 0, len(mods))
	total := 0
	for _, m := range mods {
		names = append(names, m.Module)
		total += len(m.Endpoints)
		assert.NotEmpty(t, m.Description, m.Module)
	}
	assert.Equal(t, []string{"auth", "permissions", "upload", "users"}, names)
	assert.Equal(t, 13, total)

	ep, ok := registry.Lookup(http.MethodPut, "/api/v1/user/update/{id}")
	require.True(t, ok)
	assert.Equal(t, "update", ep.Name)
	assert.Contains(t, ep.Dependencies, permissions.Dependency{Module: "users", Endpoint: "get-one"})
}

func TestRoutes(t *testing.T) {
	h, _, tokens := newRouter(t)
	ceoToken, err := tokens.GenerateToken("ceo-id")
	require.NoError(t, err)
	empToken, err := tokens.GenerateToken("emp-id")
	require.NoError(t, err)
	ghostToken, err := tokens.GenerateToken("ghost-id")
	require.NoError(t, err)

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantCode: http.StatusOK},
		{name: "me without token", method: http.MethodGet, path: "/api/v1/auth/me", wantCode: http.StatusUnauthorized},
		{name: "me with garbage token", method: http.MethodGet, path: "/api/v1/auth/me", token: "garbage", wantCode: http.StatusUnauthorized},
		{name: "me for removed user", method: http.MethodGet, path: "/api/v1/auth/me", token: ghostToken, wantCode: http.StatusNotFound},
		{name: "me", method: http.MethodGet, path: "/api/v1/auth/me", token: empToken, wantCode: http.StatusOK},
		{name: "permissions as employee", method: http.MethodGet, path: "/api/v1/permissions", token: empToken, wantCode: http.StatusForbidden},
		{name: "user list as employee", method: http.MethodGet, path: "/api/v1/user/get-all", token: empToken, wantCode: http.StatusForbidden},
		{name: "get-one with bad id", method: http.MethodGet, path: "/api/v1/user/get-one/nope", token: ceoToken, wantCode: http.StatusUnprocessableEntity},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nope", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestPermissionsRoute(t *testing.T) {
	h, _, tokens := newRouter(t)
	token, err := tokens.GenerateToken("ceo-id")
	require.NoError(t, err)

	w := do(t, h, http.MethodGet, "/api/v1/permissions", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool                 `json:"success"`
		Data    []permissions.Module `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data, 4)
}

func TestLoginIsRateLimited(t *testing.T) {
	h, _, _ := newRouter(t)

	first := do(t, h, http.MethodPost, "/api/v1/auth/login", "", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, first.Code)

	second := do(t, h, http.MethodPost, "/api/v1/auth/login", "", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "Too many requests (1) from IP 192.0.2.1")
}
