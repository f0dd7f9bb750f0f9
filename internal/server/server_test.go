package server

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	t   *testing.T
	srv *Server
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Env:          "test",
		CookieSecret: "test-cookie-secret",
		DBDriver:     "sqlite",
		SQLitePath:   ":memory:",
		DBSchemaMode: database.SchemaModeAuto,
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, database.ApplySchema(context.Background(), db, cfg))

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &testEnv{t: t, srv: srv, app: srv.app, db: db}
}

func (e *testEnv) do(method, path string, form url.Values, cookie *http.Cookie) *http.Response {
	e.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) get(path string, cookie *http.Cookie) *http.Response {
	return e.do(http.MethodGet, path, nil, cookie)
}

func (e *testEnv) post(path string, form url.Values, cookie *http.Cookie) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	return e.do(http.MethodPost, path, form, cookie)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get("Location"))
}

// signup registers username and returns its session cookie.
func (e *testEnv) signup(username string) *http.Cookie {
	e.t.Helper()
	resp := e.post("/blog/signup", url.Values{
		"username":     {username},
		"password":     {"secret"},
		"confirmation": {"secret"},
	}, nil)
	assertRedirect(e.t, resp, "/blog")
	cookie := sessionCookie(resp)
	require.NotNil(e.t, cookie)
	return cookie
}

// createPost publishes a post as the cookie's user and returns its id.
func (e *testEnv) createPost(cookie *http.Cookie, subject string) uint {
	e.t.Helper()
	resp := e.post("/blog/new_post", url.Values{"subject": {subject}, "content": {"body of " + subject}}, cookie)
	require.Equal(e.t, fiber.StatusFound, resp.StatusCode)
	var id uint
	_, err := fmt.Sscanf(resp.Header.Get("Location"), "/blog/%d", &id)
	require.NoError(e.t, err)
	return id
}

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get("/blog/signup", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	t.Run("invalid form re-renders with field errors", func(t *testing.T) {
		resp := env.post("/blog/signup", url.Values{
			"username":     {"a1"},
			"password":     {"secret"},
			"confirmation": {"other"},
			"email":        {"nope"},
		}, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Nil(t, sessionCookie(resp))
		body := readBody(t, resp)
		assert.Contains(t, body, html.EscapeString(service.MsgInvalidUsername))
		assert.Contains(t, body, html.EscapeString(service.MsgPasswordMismatch))
		assert.Contains(t, body, html.EscapeString(service.MsgInvalidEmail))
		assert.Contains(t, body, `value="nope"`)
	})

	t.Run("success logs the user in", func(t *testing.T) {
		cookie := env.signup("alice")
		body := readBody(t, env.get("/blog", cookie))
		assert.Contains(t, body, "Signed in as alice")
	})

	t.Run("duplicate username", func(t *testing.T) {
		resp := env.post("/blog/signup", url.Values{
			"username":     {"alice"},
			"password":     {"secret"},
			"confirmation": {"secret"},
		}, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), html.EscapeString(service.MsgUsernameTaken))
	})
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)
	env.signup("alice")

	t.Run("wrong password", func(t *testing.T) {
		resp := env.post("/blog/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Nil(t, sessionCookie(resp))
		assert.Contains(t, readBody(t, resp), service.MsgInvalidLogin)
	})

	t.Run("unknown user", func(t *testing.T) {
		resp := env.post("/blog/login", url.Values{"username": {"nobody"}, "password": {"secret"}}, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), service.MsgInvalidLogin)
	})

	t.Run("session cookie without remember", func(t *testing.T) {
		resp := env.post("/blog/login", url.Values{"username": {"alice"}, "password": {"secret"}}, nil)
		assertRedirect(t, resp, "/blog")
		cookie := sessionCookie(resp)
		require.NotNil(t, cookie)
		assert.True(t, cookie.Expires.IsZero())
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("remember me sets a far expiry", func(t *testing.T) {
		resp := env.post("/blog/login", url.Values{
			"username": {"alice"}, "password": {"secret"}, "remember": {"on"},
		}, nil)
		cookie := sessionCookie(resp)
		require.NotNil(t, cookie)
		assert.Equal(t, 9999, cookie.Expires.Year())
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		cookie := env.signup("bob")
		for _, method := range []string{http.MethodGet, http.MethodPost} {
			resp := env.do(method, "/blog/logout", url.Values{}, cookie)
			assertRedirect(t, resp, "/blog")
			cleared := sessionCookie(resp)
			require.NotNil(t, cleared)
			assert.Empty(t, cleared.Value)
		}
	})
}

func TestLoginRequired(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signup("alice")

	for _, path := range []string{"/blog/new_post", "/blog/my_posts", "/blog/liked_posts", "/blog/edit_post/1"} {
		assertRedirect(t, env.get(path, nil), "/blog/login")
	}
	assertRedirect(t, env.post("/blog/like/1", nil, nil), "/blog/login")

	tampered := &http.Cookie{Name: middleware.SessionCookieName, Value: cookie.Value + "0"}
	assertRedirect(t, env.get("/blog/new_post", tampered), "/blog/login")

	assert.Equal(t, fiber.StatusOK, env.get("/blog/new_post", cookie).StatusCode)
	assert.Equal(t, fiber.StatusOK, env.get("/blog/login", nil).StatusCode)
}

func TestPostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup("alice")
	bob := env.signup("bob")

	resp := env.post("/blog/new_post", url.Values{"subject": {"  "}, "content": {"text"}}, alice)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), service.MsgPostFieldsRequired)

	id := env.createPost(alice, "Hello")
	body := readBody(t, env.get(fmt.Sprintf("/blog/%d", id), nil))
	assert.Contains(t, body, "Hello")
	assert.Contains(t, body, "by alice")

	t.Run("non-owner cannot edit", func(t *testing.T) {
		assertRedirect(t, env.get(fmt.Sprintf("/blog/edit_post/%d", id), bob), "/blog")
		resp := env.post(fmt.Sprintf("/blog/edit_post/%d", id), url.Values{"subject": {"Hijacked"}, "content": {"x"}}, bob)
		assertRedirect(t, resp, "/blog")

		var post models.Post
		require.NoError(t, env.db.First(&post, id).Error)
		assert.Equal(t, "Hello", post.Subject)
	})

	t.Run("owner edits", func(t *testing.T) {
		assert.Equal(t, fiber.StatusOK, env.get(fmt.Sprintf("/blog/edit_post/%d", id), alice).StatusCode)

		resp := env.post(fmt.Sprintf("/blog/edit_post/%d", id), url.Values{"subject": {""}, "content": {"x"}}, alice)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = env.post(fmt.Sprintf("/blog/edit_post/%d", id), url.Values{"subject": {"Hello again"}, "content": {"new"}}, alice)
		assertRedirect(t, resp, fmt.Sprintf("/blog/%d", id))
		assert.Contains(t, readBody(t, env.get(fmt.Sprintf("/blog/%d", id), nil)), "Hello again")
	})

	t.Run("non-owner cannot delete", func(t *testing.T) {
		assertRedirect(t, env.post(fmt.Sprintf("/blog/delete_post/%d", id), nil, bob), "/blog")
		assert.Equal(t, fiber.StatusOK, env.get(fmt.Sprintf("/blog/%d", id), nil).StatusCode)
	})

	t.Run("missing post redirects", func(t *testing.T) {
		assertRedirect(t, env.get("/blog/9999", nil), "/blog")
		assertRedirect(t, env.get("/blog/edit_post/9999", alice), "/blog")
	})
}

func TestLikes(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup("alice")
	bob := env.signup("bob")
	id := env.createPost(alice, "Likeable")

	countLikes := func() int64 {
		var n int64
		require.NoError(t, env.db.Model(&models.Like{}).Where("post_id = ?", id).Count(&n).Error)
		return n
	}

	assertRedirect(t, env.post(fmt.Sprintf("/blog/like/%d", id), nil, alice), "/blog")
	assert.Zero(t, countLikes())

	for i := 0; i < 2; i++ {
		assertRedirect(t, env.post(fmt.Sprintf("/blog/like/%d", id), nil, bob), fmt.Sprintf("/blog/%d", id))
	}
	assert.Equal(t, int64(1), countLikes())

	body := readBody(t, env.get(fmt.Sprintf("/blog/%d", id), bob))
	assert.Contains(t, body, "1 likes")
	assert.Contains(t, body, "/blog/unlike/")

	assert.Contains(t, readBody(t, env.get("/blog/liked_posts", bob)), "Likeable")

	assertRedirect(t, env.post(fmt.Sprintf("/blog/unlike/%d", id), nil, bob), fmt.Sprintf("/blog/%d", id))
	assert.Zero(t, countLikes())

	assertRedirect(t, env.post("/blog/like/9999", nil, bob), "/blog")
}

func TestDeletePostRemovesLikesKeepsComments(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup("alice")
	bob := env.signup("bob")
	id := env.createPost(alice, "Doomed")

	env.post(fmt.Sprintf("/blog/like/%d", id), nil, bob)
	env.post("/blog/new_comment", url.Values{"post_id": {fmt.Sprint(id)}, "content": {"nice"}}, bob)

	assertRedirect(t, env.post(fmt.Sprintf("/blog/delete_post/%d", id), nil, alice), "/blog")
	assertRedirect(t, env.get(fmt.Sprintf("/blog/%d", id), nil), "/blog")

	var likes, comments int64
	require.NoError(t, env.db.Model(&models.Like{}).Where("post_id = ?", id).Count(&likes).Error)
	require.NoError(t, env.db.Model(&models.Comment{}).Where("post_id = ?", id).Count(&comments).Error)
	assert.Zero(t, likes)
	assert.Equal(t, int64(1), comments)
}

func TestComments(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup("alice")
	bob := env.signup("bob")
	postID := env.createPost(alice, "Discuss")
	postPath := fmt.Sprintf("/blog/%d", postID)

	resp := env.post("/blog/new_comment", url.Values{"post_id": {fmt.Sprint(postID)}, "content": {"  "}}, bob)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), service.MsgCommentRequired)

	assertRedirect(t, env.post("/blog/new_comment", url.Values{"post_id": {"abc"}, "content": {"x"}}, bob), "/blog")
	assertRedirect(t, env.post("/blog/new_comment", url.Values{"post_id": {"9999"}, "content": {"x"}}, bob), "/blog")

	assertRedirect(t, env.post("/blog/new_comment", url.Values{"post_id": {fmt.Sprint(postID)}, "content": {"first!"}}, bob), postPath)

	var comment models.Comment
	require.NoError(t, env.db.Where("post_id = ?", postID).First(&comment).Error)
	assert.Contains(t, readBody(t, env.get(postPath, nil)), "first!")

	t.Run("non-owner edit is ignored", func(t *testing.T) {
		field := fmt.Sprintf("content-%d", comment.ID)
		assertRedirect(t, env.post(fmt.Sprintf("/blog/edit_comment/%d", comment.ID), url.Values{field: {"defaced"}}, alice), "/blog")

		var got models.Comment
		require.NoError(t, env.db.First(&got, comment.ID).Error)
		assert.Equal(t, "first!", got.Content)
	})

	t.Run("owner edit", func(t *testing.T) {
		field := fmt.Sprintf("content-%d", comment.ID)
		assertRedirect(t, env.post(fmt.Sprintf("/blog/edit_comment/%d", comment.ID), url.Values{field: {"second!"}}, bob), postPath)

		var got models.Comment
		require.NoError(t, env.db.First(&got, comment.ID).Error)
		assert.Equal(t, "second!", got.Content)
	})

	t.Run("non-owner delete returns to the post", func(t *testing.T) {
		assertRedirect(t, env.post(fmt.Sprintf("/blog/delete_comment/%d", comment.ID), nil, alice), postPath)
		var n int64
		require.NoError(t, env.db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&n).Error)
		assert.Equal(t, int64(1), n)
	})

	t.Run("owner delete", func(t *testing.T) {
		assertRedirect(t, env.post(fmt.Sprintf("/blog/delete_comment/%d", comment.ID), nil, bob), postPath)
		assertRedirect(t, env.post(fmt.Sprintf("/blog/delete_comment/%d", comment.ID), nil, bob), "/blog")
	})
}

func TestPagination(t *testing.T) {
	env := newTestEnv(t)
	alice := env.signup("alice")
	bob := env.signup("bob")
	for i := 1; i <= 7; i++ {
		env.createPost(alice, fmt.Sprintf("Post number %d", i))
	}
	env.createPost(bob, "Bobs only post")

	tests := []struct {
		name    string
		path    string
		present []string
		absent  []string
	}{
		{"first page is newest", "/blog", []string{"Bobs only post", "Post number 4"}, []string{"Post number 3"}},
		{"second page", "/blog?page=2", []string{"Post number 3", "Post number 1"}, []string{"Post number 4"}},
		{"non-numeric page falls back to first", "/blog?page=abc", []string{"Bobs only post"}, nil},
		{"page past the end is empty", "/blog?page=99", []string{"No posts yet."}, []string{"Post number"}},
		{"negative page is empty", "/blog?page=-1", []string{"No posts yet."}, []string{"Post number"}},
		{"huge page is empty", "/blog?page=1844674407370955163", []string{"No posts yet."}, []string{"Post number"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.get(tt.path, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			body := readBody(t, resp)
			for _, s := range tt.present {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, body, s)
			}
		})
	}

	t.Run("my posts lists only the viewer's posts", func(t *testing.T) {
		body := readBody(t, env.get("/blog/my_posts", bob))
		assert.Contains(t, body, "Bobs only post")
		assert.NotContains(t, body, "Post number")
	})
}

func TestStaticPages(t *testing.T) {
	env := newTestEnv(t)
	assertRedirect(t, env.get("/", nil), "/blog")
	assert.Equal(t, fiber.StatusOK, env.get("/blog/about", nil).StatusCode)
	assert.Equal(t, fiber.StatusNotFound, env.get("/blog/nowhere", nil).StatusCode)
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get("/health/live", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.get("/health/ready", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `"database":"healthy"`)
	assert.Contains(t, body, `"redis":"disabled"`)
}

func TestParsePage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(fmt.Sprint(parsePage(c)))
	})

	tests := map[string]string{
		"/":         "1",
		"/?page=3":  "3",
		"/?page=x":  "1",
		"/?page=0":  "0",
		"/?page=-2": "-2",
		"/?page=":   "1",
	}
	for path, want := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, readBody(t, resp), path)
		_ = resp.Body.Close()
	}
}
