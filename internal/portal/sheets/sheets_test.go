package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"portal-backend/internal/platform/lock"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/platform/tablestore"
)

var exportPath = "/api/v2/sheets/" + url.PathEscape("PC管理") + "/export"

var testSchema = sheetdb.Schema{Name: "PC管理", Columns: []string{"機材名", "所持者", "備考"}}

func newRouter(t *testing.T) (*gin.Engine, *sheetdb.Engine, *tablestore.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := tablestore.NewMemory()
	eng := sheetdb.New(store, lock.New(), sheetdb.Options{})
	eng.Register(testSchema)
	r := gin.New()
	RegisterRoutes(r.Group("/api/v2"), NewService(eng, nil))
	return r, eng, store
}

func get(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestInitCreatesSheets(t *testing.T) {
	r, _, store := newRouter(t)

	w := get(r, http.MethodPost, "/api/v2/sheets/init")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"PC管理"`)

	got, err := store.ReadRange(context.Background(), "PC管理", 1, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, []any{"機材名", "所持者", "備考", sheetdb.IDColumn}, got[0])
}

func TestExportUTF8(t *testing.T) {
	r, eng, _ := newRouter(t)
	ctx := context.Background()
	_, err := eng.Save(ctx, testSchema.Name, sheetdb.Key{}, []any{"MacBook", "佐藤", "充電器, 付属"})
	require.NoError(t, err)

	w := get(r, http.MethodGet, exportPath)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "\ufeff機材名,所持者,備考\nMacBook,佐藤,\"充電器, 付属\"\n", w.Body.String())
}

func TestExportShiftJIS(t *testing.T) {
	r, eng, _ := newRouter(t)
	_, err := eng.Save(context.Background(), testSchema.Name, sheetdb.Key{}, []any{"MacBook", "佐藤", "📚"})
	require.NoError(t, err)

	w := get(r, http.MethodGet, exportPath+"?encoding=sjis")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=Shift_JIS", w.Header().Get("Content-Type"))

	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(w.Body.Bytes())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(decoded), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "機材名,所持者,備考", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "MacBook,佐藤,"))
	assert.NotContains(t, lines[1], "📚")
}

func TestExportErrors(t *testing.T) {
	r, _, _ := newRouter(t)

	// 未初期化のシートはヘッダーだけ
	w := get(r, http.MethodGet, exportPath)
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, http.MethodGet, "/api/v2/sheets/unknown/export")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(r, http.MethodGet, exportPath+"?encoding=latin1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListSheets(t *testing.T) {
	r, _, _ := newRouter(t)
	w := get(r, http.MethodGet, "/api/v2/sheets")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"PC管理","columns":["機材名","所持者","備考"]}]`, w.Body.String())
}

func TestInternalSheetIsHidden(t *testing.T) {
	r, eng, store := newRouter(t)
	secret := sheetdb.Schema{Name: "アカウント", Columns: []string{"ログインID", "パスワードハッシュ"}, Internal: true}
	eng.Register(secret)
	ctx := context.Background()
	_, err := eng.Save(ctx, secret.Name, sheetdb.Key{}, []any{"admin", "$2a$10$hash"})
	require.NoError(t, err)

	w := get(r, http.MethodGet, "/api/v2/sheets/"+url.PathEscape(secret.Name)+"/export")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$")

	w = get(r, http.MethodGet, "/api/v2/sheets")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), secret.Name)

	w = get(r, http.MethodPost, "/api/v2/sheets/init")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), secret.Name)

	// 作成自体はされる
	got, err := store.ReadRange(ctx, secret.Name, 1, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{"ログインID", "パスワードハッシュ", sheetdb.IDColumn}, got[0])
}
