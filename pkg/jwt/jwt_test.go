package jwt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-cms/config"
	"news-cms/internal/model"
	"news-cms/pkg/apperr"
)

func testService() *JWTService {
	return NewJWTService(config.JWTConfig{Secret: "test-secret-0123456789", Issuer: "news-cms-test"})
}

func TestGenerateAndValidate(t *testing.T) {
	s := testService()
	now := time.Now()

	token, err := s.GenerateToken(42, model.RoleAdmin, "sess-1", now, now.Add(time.Hour))
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
	assert.Equal(t, "sess-1", claims.ID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestValidate_Rejects(t *testing.T) {
	s := testService()
	now := time.Now()

	expired, err := s.GenerateToken(1, "", "sess", now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = s.ValidateToken(expired)
	assert.Error(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret-000000", Issuer: "news-cms-test"})
	foreign, err := other.GenerateToken(1, "", "sess", now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = s.ValidateToken(foreign)
	assert.Error(t, err)

	_, err = s.ValidateToken("")
	assert.Error(t, err)

	_, err = s.GenerateToken(0, "", "sess", now, now.Add(time.Hour))
	assert.Error(t, err)
	_, err = s.GenerateToken(1, "", "", now, now.Add(time.Hour))
	assert.Error(t, err)
}

type stubResolver struct {
	active map[string]model.Actor
}

func (r stubResolver) ResolveSession(_ context.Context, userID uint, token string) (model.Actor, error) {
	actor, ok := r.active[token]
	if !ok || actor.UserID != userID {
		return model.Actor{}, apperr.Unauthenticated("session is no longer active")
	}
	return actor, nil
}

func TestAuthenticator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := testService()
	now := time.Now()
	resolver := stubResolver{active: map[string]model.Actor{
		"live":  {UserID: 1, Role: model.RoleUser},
		"admin": {UserID: 2, Role: model.RoleAdmin},
	}}
	auth := NewAuthenticator(s, resolver, "session")

	r := gin.New()
	r.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		actor, _ := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"id": actor.UserID, "session": GetSessionToken(c)})
	})
	r.GET("/admin", auth.RequireAuth(), auth.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/open", auth.OptionalAuth(), func(c *gin.Context) {
		_, ok := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"user": ok})
	})

	mint := func(uid uint, sess string) string {
		tok, err := s.GenerateToken(uid, "", sess, now, now.Add(time.Hour))
		require.NoError(t, err)
		return tok
	}
	do := func(path string, setup func(*http.Request)) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if setup != nil {
			setup(req)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, do("/me", nil).Code)

	w := do("/me", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+mint(1, "live")) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"session":"live"`)

	w = do("/me", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "session", Value: mint(1, "live")}) })
	assert.Equal(t, http.StatusOK, w.Code)

	// 令牌签名有效但会话已失效
	w = do("/me", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+mint(1, "revoked")) })
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do("/admin", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+mint(1, "live")) })
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = do("/admin", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+mint(2, "admin")) })
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, do("/open", nil).Body.String(), `"user":false`)
	w = do("/open", func(req *http.Request) { req.Header.Set("Authorization", "Bearer garbage") })
	assert.Contains(t, w.Body.String(), `"user":false`)
	w = do("/open?token="+mint(1, "live"), nil)
	assert.Contains(t, w.Body.String(), `"user":true`)
}
