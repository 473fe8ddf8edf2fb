package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tetsu-is/social-graph/internal/auth"
	"github.com/Tetsu-is/social-graph/internal/domain"
	"github.com/Tetsu-is/social-graph/internal/mailer"
	"github.com/Tetsu-is/social-graph/internal/repository/memory"
	"github.com/Tetsu-is/social-graph/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t      *testing.T
	router http.Handler
	logs   *observer.ObservedLogs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	store := memory.New()
	svc := service.New(service.Stores{
		Accounts:  store,
		Profiles:  store,
		Relations: store,
		Posts:     store,
		Comments:  store,
		Likes:     store,
		Sessions:  store,
	}, service.Options{
		Hasher:        auth.NewPasswordHasher(bcrypt.MinCost),
		Tokens:        auth.NewTokenIssuer("test-secret", time.Hour),
		Mailer:        mailer.NewLogMailer(logger),
		ResetTokenTTL: time.Hour,
		Logger:        logger,
	})

	return &testServer{
		t:      t,
		router: New(svc, logger).Routes([]string{"http://localhost:8081"}),
		logs:   logs,
	}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// signup registers username and logs it in.
func (s *testServer) signup(username string) (domain.Account, string) {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/auth/register", "", domain.RegisterRequest{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/auth/login", "", domain.LoginRequest{Username: username, Password: "password123"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[domain.LoginResponse](s.t, rec)
	return *resp.Account, resp.Token
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	account, _ := s.signup("alice")
	assert.Equal(t, "alice", account.Username)

	rec := s.do(http.MethodPost, "/auth/register", "", domain.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "pw", ConfirmPassword: "pw",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[domain.ErrorResponse](t, rec)
	assert.Equal(t, domain.CodeUsernameTaken, resp.Fields["username"])

	rec = s.do(http.MethodPost, "/auth/register", "", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	rec := s.do(http.MethodPost, "/auth/login", "", domain.LoginRequest{Username: "alice", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout_RevokesToken(t *testing.T) {
	s := newTestServer(t)
	_, token := s.signup("alice")

	rec := s.do(http.MethodPost, "/posts", token, domain.PostRequest{Caption: "before logout"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/posts", token, domain.PostRequest{Caption: "after logout"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/posts"},
		{http.MethodPut, "/posts/p1"},
		{http.MethodDelete, "/posts/p1"},
		{http.MethodPost, "/posts/p1/comments"},
		{http.MethodPost, "/posts/p1/comments/c1/replies"},
		{http.MethodPost, "/posts/p1/like"},
		{http.MethodPost, "/accounts/a1/follow"},
		{http.MethodPost, "/accounts/a1/unfollow"},
		{http.MethodPut, "/accounts/a1/profile"},
		{http.MethodDelete, "/accounts/me"},
		{http.MethodPost, "/auth/logout"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := s.do(rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestPostLifecycle(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.signup("alice")
	_, bobToken := s.signup("bob")

	rec := s.do(http.MethodPost, "/posts", aliceToken, domain.PostRequest{Caption: "Hello World"})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decode[domain.Post](t, rec)
	assert.Equal(t, "hello-world", post.Slug)

	rec = s.do(http.MethodGet, "/posts/"+post.ID+"/hello-world", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/posts/"+post.ID+"/other-slug", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPut, "/posts/"+post.ID, bobToken, domain.PostRequest{Caption: "hijack"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, "/posts/"+post.ID, aliceToken, domain.PostRequest{Caption: "Goodbye World"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "goodbye-world", decode[domain.Post](t, rec).Slug)

	rec = s.do(http.MethodGet, "/posts?search=goodbye", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[domain.GetPostsResponse](t, rec).Posts, 1)

	rec = s.do(http.MethodPost, "/posts/"+post.ID+"/comments", bobToken, domain.CommentRequest{Body: "nice"})
	require.Equal(t, http.StatusCreated, rec.Code)
	comment := decode[domain.Comment](t, rec)

	rec = s.do(http.MethodPost, "/posts/"+post.ID+"/comments/"+comment.ID+"/replies", aliceToken, domain.CommentRequest{Body: "thanks"})
	require.Equal(t, http.StatusCreated, rec.Code)
	reply := decode[domain.Comment](t, rec)
	assert.True(t, reply.IsReply)

	rec = s.do(http.MethodPost, "/posts/"+post.ID+"/like", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.Liked, decode[domain.ToggleLikeResponse](t, rec).State)

	rec = s.do(http.MethodGet, "/posts/"+post.ID+"/goodbye-world", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[domain.PostDetail](t, rec)
	assert.Len(t, detail.Comments, 2)
	assert.Equal(t, int64(1), detail.LikesCount)
	assert.True(t, detail.IsLiked)

	rec = s.do(http.MethodDelete, "/posts/"+post.ID, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, "/posts/"+post.ID, aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/posts/"+post.ID+"/goodbye-world", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFollowRoutes(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.signup("alice")
	bob, _ := s.signup("bob")

	rec := s.do(http.MethodPost, "/accounts/"+bob.ID+"/follow", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[domain.FollowResponse](t, rec).IsFollowing)

	rec = s.do(http.MethodPost, "/accounts/"+bob.ID+"/follow", aliceToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/accounts/"+bob.ID, aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[domain.ProfileView](t, rec)
	assert.True(t, view.IsFollowing)
	assert.Equal(t, int64(1), view.FollowersCount)

	rec = s.do(http.MethodGet, "/accounts/"+bob.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[domain.ProfileView](t, rec).IsFollowing)

	rec = s.do(http.MethodGet, "/accounts/"+bob.ID+"/followers", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	followers := decode[domain.GetAccountsResponse](t, rec).Accounts
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)

	rec = s.do(http.MethodPost, "/accounts/"+bob.ID+"/unfollow", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[domain.FollowResponse](t, rec).IsFollowing)

	rec = s.do(http.MethodPost, "/accounts/"+bob.ID+"/unfollow", aliceToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/accounts/missing/follow", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditProfileRoute(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.signup("alice")
	_, bobToken := s.signup("bob")

	age := 28
	req := domain.EditProfileRequest{FirstName: "Alice", Email: "alice@example.com", Age: &age}

	rec := s.do(http.MethodPut, "/accounts/"+alice.ID+"/profile", bobToken, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, "/accounts/"+alice.ID+"/profile", aliceToken, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[editProfileResponse](t, rec)
	assert.Equal(t, "Alice", resp.Account.FirstName)
	assert.Equal(t, 28, resp.Profile.Age)
}

func TestDeleteAccountRoute(t *testing.T) {
	s := newTestServer(t)
	alice, aliceToken := s.signup("alice")

	rec := s.do(http.MethodDelete, "/accounts/me", aliceToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/accounts/"+alice.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/posts", aliceToken, domain.PostRequest{Caption: "ghost"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPasswordResetRoutes(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice")

	rec := s.do(http.MethodPost, "/auth/password/reset", "", domain.PasswordResetRequest{Email: "alice@example.com"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	sent := s.logs.FilterMessage("password reset link").All()
	require.Len(t, sent, 1)
	path := sent[0].ContextMap()["reset_path"].(string)

	rec = s.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, path, "", domain.PasswordResetCompleteRequest{Password: "fresh-pass", ConfirmPassword: "fresh-pass"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/auth/login", "", domain.LoginRequest{Username: "alice", Password: "fresh-pass"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/auth/password/reset", "", domain.PasswordResetRequest{Email: "ghost@example.com"})
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRequestsAreLogged(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/posts/missing/slug", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	entries := s.logs.FilterMessage("request rejected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/posts/missing/slug", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.FieldError("x", domain.CodeRequired), http.StatusBadRequest},
		{errBadRequest, http.StatusBadRequest},
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrPostNotFound, http.StatusNotFound},
		{domain.ErrAlreadyFollowing, http.StatusConflict},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}

func TestPublicReadsOmitEmail(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.signup("alice")
	bob, _ := s.signup("bob")

	rec := s.do(http.MethodPost, "/accounts/"+bob.ID+"/follow", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, path := range []string{
		"/accounts/" + bob.ID,
		"/accounts/" + bob.ID + "/followers",
		"/accounts/" + bob.ID + "/following",
	} {
		rec = s.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "email", path)
		assert.NotContains(t, rec.Body.String(), "@example.com", path)
	}

	rec = s.do(http.MethodGet, "/accounts/"+bob.ID+"/followers", "", nil)
	followers := decode[domain.GetAccountsResponse](t, rec).Accounts
	require.Len(t, followers, 1)
	assert.Equal(t, "alice", followers[0].Username)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}
