package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"portal-backend/internal/platform/auth"
	"portal-backend/internal/platform/config"
)

var testStatic = fstest.MapFS{
	"index.html":    {Data: []byte("<html>portal</html>")},
	"assets/app.js": {Data: []byte("console.log(1)")},
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *app {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Backend = "memory"
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := newApp(context.Background(), &cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func send(h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouterServesSPAAndAPI(t *testing.T) {
	r := newTestApp(t, nil).router(testStatic)

	w := send(r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = send(r, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal")

	w = send(r, http.MethodGet, "/books/detail", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal")

	w = send(r, http.MethodGet, "/assets/app.js", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Cache-Control"), "max-age=86400")

	w = send(r, http.MethodGet, "/api/v2/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"NOT_FOUND"`)

	w = send(r, http.MethodGet, "/api/v2/books", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestInitCreatesEverySheet(t *testing.T) {
	a := newTestApp(t, nil)
	done, err := a.sheets.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"PC管理", "スキル管理", "図書管理", "リクエスト本", "ヒヤリハット", "イベント履歴"}, done)
}

func TestWritesNeedTokenWhenAuthEnabled(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Auth.Enabled = true
		c.Auth.JWTSecret = "test-secret"
	})
	require.NoError(t, a.auth.Register(context.Background(), "admin", "pass1234", auth.RoleAdmin))
	r := a.router(testStatic)

	body := `{"pcName":"MacBook"}`
	w := send(r, http.MethodPost, "/api/v2/equipment", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(r, http.MethodGet, "/api/v2/equipment", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	token := login(t, r, "admin", "pass1234")
	w = send(r, http.MethodPost, "/api/v2/equipment", body, bearer(token))
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func login(t *testing.T, r http.Handler, id, password string) string {
	t.Helper()
	w := send(r, http.MethodPost, "/api/v2/login", `{"id":"`+id+`","password":"`+password+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAccountSheetIsNeverExported(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) {
		c.Auth.Enabled = true
		c.Auth.JWTSecret = "test-secret"
	})
	ctx := context.Background()
	require.NoError(t, a.auth.Register(ctx, "admin", "pass1234", auth.RoleAdmin))
	require.NoError(t, a.auth.Register(ctx, "staff", "pass5678", auth.RoleUser))
	r := a.router(testStatic)

	accounts := "/api/v2/sheets/" + url.PathEscape(auth.AccountSchema.Name) + "/export"
	books := "/api/v2/sheets/" + url.PathEscape("図書管理") + "/export"

	w := send(r, http.MethodGet, accounts, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$")

	w = send(r, http.MethodGet, "/api/v2/sheets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(r, http.MethodGet, books, "", bearer(login(t, r, "staff", "pass5678")))
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := bearer(login(t, r, "admin", "pass1234"))

	w = send(r, http.MethodGet, accounts, "", admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$")

	w = send(r, http.MethodGet, books, "", admin)
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(r, http.MethodGet, "/api/v2/sheets", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), auth.AccountSchema.Name)
	assert.NotContains(t, w.Body.String(), "パスワードハッシュ")

	w = send(r, http.MethodPost, "/api/v2/sheets/init", "", admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), auth.AccountSchema.Name)

	// ログインは引き続き通る
	login(t, r, "admin", "pass1234")
}
