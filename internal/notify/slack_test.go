package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestSlackPostsPayload(t *testing.T) {
	var got slackPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	NewSlack(srv.URL, zaptest.NewLogger(t)).Notify(context.Background(), "📚 *図書貸出通知*")

	assert.Equal(t, "Sent. Library Bot", got.Username)
	assert.Equal(t, ":books:", got.IconEmoji)
	assert.Equal(t, "📚 *図書貸出通知*", got.Text)
}

func TestSlackSkipsPlaceholder(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	for _, u := range []string{"", srv.URL + "/YOUR_WEBHOOK_URL"} {
		s := NewSlack(u, zaptest.NewLogger(t))
		assert.False(t, s.Enabled())
		s.Notify(context.Background(), "x")
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestSlackErrorIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	url := srv.URL
	srv.Close()

	assert.NotPanics(t, func() {
		NewSlack(url, zaptest.NewLogger(t)).Notify(context.Background(), "x")
	})
}
