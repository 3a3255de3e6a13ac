package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"news-cms/config"
	"news-cms/internal/model"
	"news-cms/internal/repository"
	"news-cms/internal/service"
	"news-cms/internal/testutil"
	"news-cms/pkg/jwt"
	"news-cms/pkg/websocket"
)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	cfg := config.DefaultConfig()
	cfg.RateLimit = config.RateLimitConfig{}
	cfg.JWT.Secret = "handler-test-secret"

	gdb := testutil.NewDB(t)
	repos := repository.New(gdb)
	hub := websocket.NewHub()
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	authSvc := service.NewAuthService(repos, jwtSvc, nil, hub, cfg.Session, cfg.Verification)

	r := &Router{
		Config:        cfg,
		Auth:          jwt.NewAuthenticator(jwtSvc, authSvc, cfg.Session.CookieName),
		Hub:           hub,
		AuthH:         NewAuthHandler(authSvc, cfg.Session, cfg.Server),
		Users:         NewUserHandler(service.NewUserService(repos, hub)),
		News:          NewNewsHandler(service.NewNewsService(repos, nil)),
		Comments:      NewCommentHandler(service.NewCommentService(repos, cfg.Comment)),
		Categories:    NewCategoryHandler(service.NewCategoryService(repos)),
		Sharing:       NewSharingHandler(service.NewSharingService(repos, hub)),
		Subscriptions: NewSubscriptionHandler(service.NewSubscriptionService(repos)),
		Health:        NewHealthHandler(gdb, nil),
	}
	engine, err := r.Setup()
	require.NoError(t, err)
	return &testServer{engine: engine, db: gdb, auth: authSvc}
}

type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Kind    string            `json:"kind"`
	Data    json.RawMessage   `json:"data"`
	Fields  map[string]string `json:"fields"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// signUp 注册并登录，返回令牌
func (s *testServer) signUp(t *testing.T, email string, admin bool) string {
	t.Helper()
	w, _ := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"fullName": "Test User", "email": email, "password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	if admin {
		require.NoError(t, s.db.Model(&model.User{}).Where("email = ?", email).Update("role", model.RoleAdmin).Error)
	}
	w, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	return login.AccessToken
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_SetsCookieAndRevokesPreviousSession(t *testing.T) {
	s := newTestServer(t)
	first := s.signUp(t, "ann@example.com", false)

	w, _ := s.do(t, http.MethodGet, "/api/v1/users/me", first, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ann@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	var cookieSet bool
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "session" && ck.Value != "" {
			cookieSet = true
			assert.True(t, ck.HttpOnly)
		}
	}
	assert.True(t, cookieSet)

	w, env := s.do(t, http.MethodGet, "/api/v1/users/me", first, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication", env.Kind)

	w, _ = s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "ann@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_DuplicateIsConflict(t *testing.T) {
	s := newTestServer(t)
	s.signUp(t, "ann@example.com", false)

	w, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"fullName": "Other", "email": "ann@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", env.Kind)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp(t, "ann@example.com", false)

	w, _ := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNewsAndComments_EndToEnd(t *testing.T) {
	s := newTestServer(t)
	admin := s.signUp(t, "admin@example.com", true)
	writer := s.signUp(t, "writer@example.com", false)

	w, env := s.do(t, http.MethodPost, "/api/v1/news", writer, gin.H{"title": "Local story", "content": "body"})
	require.Equal(t, http.StatusCreated, w.Code)
	var news model.News
	require.NoError(t, json.Unmarshal(env.Data, &news))
	assert.False(t, news.IsApproved)
	path := fmt.Sprintf("/api/v1/news/%d", news.ID)

	w, _ = s.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, http.MethodGet, path, writer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, path+"/approve", writer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, env = s.do(t, http.MethodPost, path+"/archive", admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", env.Kind)
	w, _ = s.do(t, http.MethodPost, path+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/v1/news", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(1), page.Total)

	w, env = s.do(t, http.MethodPost, "/api/v1/comments", "", gin.H{
		"newsId": news.ID, "content": "first!", "guestName": "Guest", "guestEmail": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Fields, "guestEmail")

	w, env = s.do(t, http.MethodPost, "/api/v1/comments", "", gin.H{
		"newsId": news.ID, "content": "first!", "guestName": "Guest", "guestEmail": "guest@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var root CommentView
	require.NoError(t, json.Unmarshal(env.Data, &root))
	assert.Empty(t, root.GuestEmail)

	w, _ = s.do(t, http.MethodPost, "/api/v1/comments", writer, gin.H{
		"newsId": news.ID, "content": "reply", "parentId": root.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/comments/%d/hide", root.ID), writer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/comments/%d/hide", root.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 父评论被隐藏后，回复提升为顶层
	w, env = s.do(t, http.MethodGet, path+"/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listing struct {
		Comments []CommentView `json:"comments"`
		Total    int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	require.Len(t, listing.Comments, 1)
	assert.Equal(t, "reply", listing.Comments[0].Content)
	require.NotNil(t, listing.Comments[0].ParentID)
	assert.Equal(t, root.ID, *listing.Comments[0].ParentID)

	w, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/news/%d/comments", news.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &listing))
	assert.Equal(t, 2, listing.Total)
	require.Len(t, listing.Comments, 1)
	assert.True(t, listing.Comments[0].IsHidden)
	assert.Equal(t, "guest@example.com", listing.Comments[0].GuestEmail)

	w, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/news/%d/comments", news.ID), writer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = s.do(t, http.MethodPost, path+"/read", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"counted":true}`, string(env.Data))
}

func TestInvalidIDIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/v1/news/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", env.Kind)
}

func TestSubscriptions_Endpoints(t *testing.T) {
	s := newTestServer(t)
	admin := s.signUp(t, "admin@example.com", true)

	w, _ := s.do(t, http.MethodPost, "/api/v1/subscriptions", "", gin.H{"email": "fan@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/v1/subscriptions", "", gin.H{"email": "fan@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/v1/admin/subscriptions", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/subscriptions", "", gin.H{"email": "fan@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/v1/subscriptions", "", gin.H{"email": "fan@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
