package auth

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal-backend/internal/platform/lock"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/platform/tablestore"
)

var secret = []byte("test-secret")

func newService(t *testing.T) *Service {
	t.Helper()
	eng := sheetdb.New(tablestore.NewMemory(), lock.New(), sheetdb.Options{})
	return NewService(NewStore(eng), secret)
}

func TestRegisterLoginDelete(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.Register(ctx, "kaku", "pw-1234", RoleAdmin))
	assert.ErrorIs(t, svc.Register(ctx, "kaku", "other", RoleUser), ErrAlreadyExists)

	token, err := svc.Login(ctx, "kaku", "pw-1234")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login(ctx, "kaku", "wrong")
	assert.ErrorIs(t, err, ErrAuthFailed)
	_, err = svc.Login(ctx, "nobody", "pw")
	assert.ErrorIs(t, err, ErrAuthFailed)

	require.NoError(t, svc.ChangeID(ctx, "kaku", "kaku2"))
	_, err = svc.Login(ctx, "kaku2", "pw-1234")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "kaku2"))
	assert.ErrorIs(t, svc.Delete(ctx, "kaku2"), ErrNotFound)
}

func TestChangeIDToTakenID(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	require.NoError(t, svc.Register(ctx, "a", "pw", RoleUser))
	require.NoError(t, svc.Register(ctx, "b", "pw", RoleUser))

	assert.ErrorIs(t, svc.ChangeID(ctx, "a", "b"), ErrAlreadyExists)
	assert.ErrorIs(t, svc.ChangeID(ctx, "zzz", "c"), ErrNotFound)
}

func TestRequireAuthForWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	svc := newService(t)
	require.NoError(t, svc.Register(ctx, "kaku", "pw", RoleUser))
	token, err := svc.Login(ctx, "kaku", "pw")
	require.NoError(t, err)

	r := gin.New()
	g := r.Group("/api", RequireAuthForWrites(secret))
	g.GET("/books", func(c *gin.Context) { c.String(http.StatusOK, "list") })
	g.POST("/books", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxUserIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/books", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewBufferString("{}")))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	req := httptest.NewRequest(http.MethodPost, "/api/books", bytes.NewBufferString("{}"))
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kaku", w.Body.String())
}

func TestAccountRoutesNeedAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	svc := newService(t)
	require.NoError(t, svc.Register(ctx, "user1", "pw", RoleUser))
	require.NoError(t, svc.Register(ctx, "root", "pw", RoleAdmin))
	userTok, err := svc.Login(ctx, "user1", "pw")
	require.NoError(t, err)
	adminTok, err := svc.Login(ctx, "root", "pw")
	require.NoError(t, err)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v2"), svc)

	do := func(tok string) int {
		req := httptest.NewRequest(http.MethodDelete, "/api/v2/accounts/user1", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusForbidden, do(userTok))
	assert.Equal(t, http.StatusOK, do(adminTok))
	assert.Equal(t, http.StatusNotFound, do(adminTok))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v2/login",
		bytes.NewBufferString(`{"id":"root","password":"bad"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
