package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository/memrepo"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	user := &domain.User{ID: "u-1", Username: "alice", Role: domain.RoleTester}

	token, exp, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID())
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleTester, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_Rejects(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)
	user := &domain.User{ID: "u-1", Username: "alice", Role: domain.RoleTester}

	other := NewTokenManager("other", time.Minute)
	token, _, err := other.GenerateToken(user)
	require.NoError(t, err)
	_, err = tm.ParseToken(token)
	assert.Error(t, err, "wrong secret")

	expired := NewTokenManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err = expired.GenerateToken(user)
	require.NoError(t, err)
	_, err = tm.ParseToken(token)
	assert.Error(t, err, "expired")

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	})
	signed, err := noRole.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(signed)
	assert.Error(t, err, "missing role")
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "hunter2"))
	assert.Error(t, ComparePassword(hash, "wrong"))

	hash, err = HashPassword("x", 1000)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "x"))
}

func TestMemoryDenylist(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDenylist()

	revoked, err := d.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, d.Revoke(ctx, "a", time.Now().Add(time.Minute)))
	revoked, _ = d.IsRevoked(ctx, "a")
	assert.True(t, revoked)

	require.NoError(t, d.Revoke(ctx, "b", time.Now().Add(-time.Minute)))
	revoked, _ = d.IsRevoked(ctx, "b")
	assert.False(t, revoked)
}

func newTestApp(m *AuthMiddleware, gates ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).SendString(de.Code)
		},
	})
	handlers := append([]fiber.Handler{m.Handle}, gates...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		caller, _ := CallerFromContext(c)
		return c.SendString(caller.UserID + ":" + string(caller.Role))
	})
	app.Get("/me", handlers...)
	return app
}

func TestAuthMiddleware(t *testing.T) {
	store := memrepo.New()
	admin := store.SeedUser("root", domain.RoleAdmin)
	tester := store.SeedUser("alice", domain.RoleTester)
	tm := NewTokenManager("secret", time.Minute)
	denylist := NewMemoryDenylist()
	m := NewAuthMiddleware(tm, store.Users, denylist)

	adminToken, _, err := tm.GenerateToken(&admin)
	require.NoError(t, err)
	testerToken, exp, err := tm.GenerateToken(&tester)
	require.NoError(t, err)
	ghostToken, _, err := tm.GenerateToken(&domain.User{ID: "ghost", Username: "ghost", Role: domain.RoleAdmin})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		gates  []fiber.Handler
		status int
	}{
		{"missing header", "", nil, http.StatusUnauthorized},
		{"bad scheme", "Basic abc", nil, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", nil, http.StatusUnauthorized},
		{"unknown user", "Bearer " + ghostToken, nil, http.StatusUnauthorized},
		{"valid", "Bearer " + testerToken, nil, http.StatusOK},
		{"admin gate denies tester", "Bearer " + testerToken, []fiber.Handler{RequireAdmin()}, http.StatusForbidden},
		{"admin gate allows admin", "Bearer " + adminToken, []fiber.Handler{RequireAdmin()}, http.StatusOK},
		{"role gate", "Bearer " + testerToken, []fiber.Handler{RequireRole(domain.RoleTester, domain.RoleDeveloper)}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(m, tt.gates...)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	claims, err := tm.ParseToken(testerToken)
	require.NoError(t, err)
	require.NoError(t, denylist.Revoke(context.Background(), claims.ID, exp))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+testerToken)
	resp, err := newTestApp(m).Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
