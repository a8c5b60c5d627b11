package requests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal-backend/internal/platform/tablestore"
	"portal-backend/internal/portal"
)

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newService(t, failingDelete{tablestore.NewMemory()})
	r := gin.New()
	RegisterRoutes(r.Group("/api/v2"), svc)

	w := do(r, http.MethodPost, "/api/v2/requests", `{"title":"リーダブルコード","requester":"霍"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/v2/requests/2/likes", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var like LikeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &like))
	assert.Equal(t, LikeResponse{Result: portal.ResultSuccess, Likes: 1}, like)

	w = do(r, http.MethodGet, "/api/v2/requests", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []RequestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Likes)
	assert.Equal(t, StatusPending, list[0].Status)

	w = do(r, http.MethodPost, "/api/v2/requests/2/promote", `{"book":{"type":"書籍"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res PromoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Contains(t, res.Result, portal.ResultBookSavedButDeleteFailed)
	assert.Equal(t, 2, res.BookRow)
	assert.NotEmpty(t, res.Message)

	w = do(r, http.MethodPost, "/api/v2/requests/9/likes", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
