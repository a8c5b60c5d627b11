package requests

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/lock"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/platform/tablestore"
	"portal-backend/internal/portal"
	"portal-backend/internal/portal/books"
)

// failingDelete はリクエスト本シートの行削除だけ失敗させる。
type failingDelete struct {
	*tablestore.Memory
}

func (f failingDelete) DeleteRow(ctx context.Context, table string, row int) error {
	if table == Schema.Name {
		return errors.New("quota exceeded")
	}
	return f.Memory.DeleteRow(ctx, table, row)
}

func newService(t *testing.T, store tablestore.TableStore) (*Service, *sheetdb.Engine) {
	t.Helper()
	eng := sheetdb.New(store, lock.New(), sheetdb.Options{Logger: zaptest.NewLogger(t)})
	svc := NewService(eng, zaptest.NewLogger(t))
	_, err := eng.Init(context.Background())
	require.NoError(t, err)
	return svc, eng
}

func TestSaveForcesPendingAndKeepsLikes(t *testing.T) {
	svc, _ := newService(t, tablestore.NewMemory())
	ctx := context.Background()

	q, err := svc.Save(ctx, sheetdb.Key{}, SaveRequestRequest{Title: "Go言語による並行処理", Requester: "霍", ISBN: "978-4-87311-846-8"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, q.Status)
	assert.Equal(t, 0, q.Likes)
	assert.Equal(t, "9784873118468", q.ISBN)

	key := sheetdb.Key{RowNumber: q.RowNumber, ID: q.ID}
	for i := 0; i < 2; i++ {
		_, err := svc.AddLike(ctx, key)
		require.NoError(t, err)
	}

	q, err = svc.Save(ctx, key, SaveRequestRequest{Title: "Go言語による並行処理", Reason: "チームで読みたい"})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Likes)
	assert.Equal(t, StatusPending, q.Status)
	assert.Equal(t, "チームで読みたい", q.Reason)
}

func TestAddLikeTreatsGarbageAsZero(t *testing.T) {
	store := tablestore.NewMemory()
	svc, _ := newService(t, store)
	require.NoError(t, store.AppendRow(context.Background(), Schema.Name, []any{"本", "", "霍", "たくさん", StatusPending}))

	n, err := svc.AddLike(context.Background(), sheetdb.Key{RowNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.AddLike(context.Background(), sheetdb.Key{RowNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAddLikeMissingRow(t *testing.T) {
	svc, _ := newService(t, tablestore.NewMemory())
	_, err := svc.AddLike(context.Background(), sheetdb.Key{RowNumber: 2})
	assert.Equal(t, 404, apierr.ToHTTPStatus(err))
}

func TestPromoteMovesRequestToBooks(t *testing.T) {
	svc, eng := newService(t, tablestore.NewMemory())
	ctx := context.Background()
	q, err := svc.Save(ctx, sheetdb.Key{}, SaveRequestRequest{Title: "リーダブルコード", ImageURL: "https://example.com/c.jpg", ISBN: "9784873115658"})
	require.NoError(t, err)

	res, err := svc.Promote(ctx, sheetdb.Key{RowNumber: q.RowNumber, ID: q.ID}, PromoteBook{Type: "書籍", Location: "本棚B", Registrant: "霍"})
	require.NoError(t, err)
	assert.Equal(t, portal.ResultSuccess, res.Result)
	assert.NoError(t, res.Cause)
	assert.Equal(t, 2, res.Book.RowNumber)

	reqs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, reqs)

	rows, err := eng.List(ctx, books.Schema.Name)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"リーダブルコード", "書籍", "本棚B", books.StatusAvailable, "https://example.com/c.jpg", "9784873115658", "", "0", "霍"}, rows[0].Data)
}

func TestPromoteDeleteFailureKeepsBook(t *testing.T) {
	svc, eng := newService(t, failingDelete{tablestore.NewMemory()})
	ctx := context.Background()
	q, err := svc.Save(ctx, sheetdb.Key{}, SaveRequestRequest{Title: "リーダブルコード"})
	require.NoError(t, err)

	res, err := svc.Promote(ctx, sheetdb.Key{RowNumber: q.RowNumber}, PromoteBook{Title: "リーダブルコード"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Result, portal.ResultBookSavedButDeleteFailed+": "), res.Result)
	assert.Contains(t, res.Result, "quota exceeded")
	assert.Error(t, res.Cause)

	rows, err := eng.List(ctx, books.Schema.Name)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	reqs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}

func TestPromoteStaleRequestWritesNothing(t *testing.T) {
	svc, eng := newService(t, tablestore.NewMemory())
	ctx := context.Background()
	q, err := svc.Save(ctx, sheetdb.Key{}, SaveRequestRequest{Title: "A"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, sheetdb.Key{RowNumber: q.RowNumber}))

	_, err = svc.Promote(ctx, sheetdb.Key{RowNumber: q.RowNumber, ID: q.ID}, PromoteBook{Title: "A"})
	assert.Equal(t, 409, apierr.ToHTTPStatus(err))

	rows, err := eng.List(ctx, books.Schema.Name)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
