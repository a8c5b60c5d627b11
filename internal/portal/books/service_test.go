package books

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/lock"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/platform/tablestore"
	"portal-backend/internal/portal"
)

type recorder struct {
	mu    sync.Mutex
	texts []string
}

func (r *recorder) Notify(_ context.Context, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func newService(t *testing.T) (*Service, *tablestore.Memory, *recorder) {
	t.Helper()
	store := tablestore.NewMemory()
	eng := sheetdb.New(store, lock.New(), sheetdb.Options{})
	rec := &recorder{}
	svc := NewService(eng, rec, nil)
	svc.now = func() time.Time { return time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC) }
	_, err := eng.Init(context.Background())
	require.NoError(t, err)
	return svc, store, rec
}

// 旧システムで書かれた行（ID 列なし・旧形式レビュー）
func seedLegacy(t *testing.T, store *tablestore.Memory, status, reviews string, likes any) {
	t.Helper()
	require.NoError(t, store.AppendRow(context.Background(), Schema.Name, []any{
		"Go言語による並行処理", "書籍", "本棚A", status, "", "9784873118468", reviews, likes, "霍",
	}))
}

func cell(t *testing.T, store *tablestore.Memory, row, col int) any {
	t.Helper()
	got, err := store.ReadRange(context.Background(), Schema.Name, row, 1, len(Schema.Columns)+1)
	require.NoError(t, err)
	return got[0][col-1]
}

func TestEditPreservesReviewsAndLikes(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	reviews := "[5] 名著 (by 霍)\n[3] 難しい\n (by 佐藤)\n"
	seedLegacy(t, store, StatusAvailable, reviews, int64(7))

	_, err := svc.Save(ctx, sheetdb.Key{RowNumber: 2}, SaveBookRequest{Title: "Go言語による並行処理 第2版", Type: "書籍"})
	require.NoError(t, err)

	assert.Equal(t, reviews, cell(t, store, 2, colReviews))
	assert.Equal(t, int64(7), cell(t, store, 2, colLikes))
	assert.Equal(t, "Go言語による並行処理 第2版", cell(t, store, 2, colTitle))
}

func TestEditKeepsStatusWhenOmitted(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	seedLegacy(t, store, "貸出中: 佐藤", "", int64(0))

	b, err := svc.Save(ctx, sheetdb.Key{RowNumber: 2}, SaveBookRequest{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, "貸出中: 佐藤", b.Status)
	assert.Equal(t, "貸出中: 佐藤", cell(t, store, 2, colStatus))

	_, err = svc.Save(ctx, sheetdb.Key{RowNumber: 2}, SaveBookRequest{Title: "x", Status: StatusAvailable})
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, cell(t, store, 2, colStatus))
}

func TestEditWithExplicitValuesOverrides(t *testing.T) {
	svc, store, _ := newService(t)
	seedLegacy(t, store, StatusAvailable, "[5] 名著 (by 霍)\n", int64(7))

	empty, zero := "", 0
	_, err := svc.Save(context.Background(), sheetdb.Key{RowNumber: 2}, SaveBookRequest{Title: "x", Reviews: &empty, Likes: &zero})
	require.NoError(t, err)

	assert.Equal(t, "", cell(t, store, 2, colReviews))
	assert.Equal(t, int64(0), cell(t, store, 2, colLikes))
}

func TestCreateStartsEmpty(t *testing.T) {
	svc, _, _ := newService(t)
	b, err := svc.Save(context.Background(), sheetdb.Key{}, SaveBookRequest{Title: "入門Go", ISBN: "９７８-４-７９８１-６８２０-９"})
	require.NoError(t, err)
	assert.Equal(t, 2, b.RowNumber)
	assert.Equal(t, StatusAvailable, b.Status)
	assert.Equal(t, "", b.Reviews)
	assert.Equal(t, "0", b.Likes)
	assert.Equal(t, "9784798168209", b.ISBN)
}

func TestBorrowAlreadyBorrowed(t *testing.T) {
	svc, store, rec := newService(t)
	seedLegacy(t, store, "貸出中: 佐藤", "", int64(0))

	result, err := svc.Borrow(context.Background(), sheetdb.Key{RowNumber: 2}, "Go言語による並行処理", "霍")
	require.NoError(t, err)
	assert.Equal(t, portal.ResultAlreadyBorrowed, result)
	assert.Equal(t, "貸出中: 佐藤", cell(t, store, 2, colStatus))
	assert.Empty(t, rec.texts)
}

func TestBorrowAndReturn(t *testing.T) {
	svc, store, rec := newService(t)
	ctx := context.Background()
	seedLegacy(t, store, StatusAvailable, "", int64(0))

	result, err := svc.Borrow(ctx, sheetdb.Key{RowNumber: 2}, "", "霍")
	require.NoError(t, err)
	assert.Equal(t, portal.ResultSuccess, result)
	assert.Equal(t, "貸出中: 霍", cell(t, store, 2, colStatus))

	require.NoError(t, svc.Return(ctx, sheetdb.Key{RowNumber: 2}, "Go言語による並行処理", "霍"))
	assert.Equal(t, StatusAvailable, cell(t, store, 2, colStatus))

	require.Len(t, rec.texts, 2)
	assert.Equal(t, "📚 *図書貸出通知*\n霍 さんが『Go言語による並行処理』を借りました！\n感想が楽しみですね！", rec.texts[0])
	assert.Equal(t, "↩️ *図書返却通知*\n霍 さんが『Go言語による並行処理』を返却しました。", rec.texts[1])
}

func TestReviewsKeepMultilineComments(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	seedLegacy(t, store, StatusAvailable, "[4] 旧レビュー (by 田中)", int64(0))
	key := sheetdb.Key{RowNumber: 2}

	_, idx, err := svc.AddReview(ctx, key, 5, "1行目\n2行目", "霍")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	_, idx, err = svc.AddReview(ctx, key, 3, "普通", "佐藤")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	raw := cell(t, store, 2, colReviews).(string)
	assert.Equal(t, 3, strings.Count(raw, "\n"))
	assert.True(t, strings.HasPrefix(raw, "[4] 旧レビュー (by 田中)\n"))

	got := ParseReviews(raw)
	require.Len(t, got, 3)
	assert.Equal(t, Review{Rating: 4, Comment: "旧レビュー", Author: "田中", Legacy: "[4] 旧レビュー (by 田中)"}, got[0])
	assert.Equal(t, "1行目\n2行目", got[1].Comment)
	assert.Equal(t, "2024-04-01T09:00:00Z", got[1].CreatedAt)
	assert.NotEmpty(t, got[1].ID)

	require.NoError(t, svc.DeleteReview(ctx, key, 1))
	got = ParseReviews(cell(t, store, 2, colReviews).(string))
	require.Len(t, got, 2)
	assert.Equal(t, "田中", got[0].Author)
	assert.Equal(t, "普通", got[1].Comment)
}

func TestDeleteReviewOutOfRangeIsNoop(t *testing.T) {
	svc, store, _ := newService(t)
	reviews := "[5] a (by x)\n\n[4] b (by y)"
	seedLegacy(t, store, StatusAvailable, reviews, int64(0))

	for _, i := range []int{-1, 2, 99} {
		require.NoError(t, svc.DeleteReview(context.Background(), sheetdb.Key{RowNumber: 2}, i))
		assert.Equal(t, reviews, cell(t, store, 2, colReviews))
	}

	require.NoError(t, svc.DeleteReview(context.Background(), sheetdb.Key{RowNumber: 2}, 0))
	assert.Equal(t, "[4] b (by y)\n", cell(t, store, 2, colReviews))
}

func TestAddReviewValidatesRating(t *testing.T) {
	svc, store, _ := newService(t)
	seedLegacy(t, store, StatusAvailable, "", int64(0))

	_, _, err := svc.AddReview(context.Background(), sheetdb.Key{RowNumber: 2}, 6, "x", "霍")
	assert.Equal(t, 400, apierr.ToHTTPStatus(err))
}

func TestDeleteWrapsFailure(t *testing.T) {
	svc, _, _ := newService(t)
	err := svc.Delete(context.Background(), sheetdb.Key{RowNumber: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "削除に失敗しました: ")
	assert.Equal(t, 404, apierr.ToHTTPStatus(err))
}

func TestNormalizeISBN(t *testing.T) {
	assert.Equal(t, "9784873118468", NormalizeISBN("978-4-87311-846-8"))
	assert.Equal(t, "9784873118468", NormalizeISBN("９７８－４－８７３１１－８４６－８"))
	assert.Equal(t, "487311846X", NormalizeISBN("4 87311 846 x"))
}

func TestLikeCount(t *testing.T) {
	assert.Equal(t, 3, LikeCount("3"))
	assert.Equal(t, 0, LikeCount(""))
	assert.Equal(t, 0, LikeCount("たくさん"))
}
