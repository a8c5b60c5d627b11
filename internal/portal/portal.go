// Package portal は各機能（equipment, books, ...）で共通の結果表現とエラー変換。
package portal

import (
	"errors"

	"github.com/gin-gonic/gin"

	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/sheetdb"
)

// 画面側が見る結果マーカー
const (
	ResultSuccess                  = "SUCCESS"
	ResultAlreadyBorrowed          = "ALREADY_BORROWED"
	ResultBookSavedButDeleteFailed = "BOOK_SAVED_BUT_DELETE_FAILED"
)

type ResultResponse struct {
	Result    string `json:"result"`
	RowNumber int    `json:"rowNumber,omitempty"`
	ID        string `json:"id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ToAPIError はストア層のエラーを共通エラーに寄せる。APIError はそのまま。
func ToAPIError(err error) error {
	if err == nil {
		return nil
	}
	var api *apierr.APIError
	switch {
	case errors.As(err, &api):
		return api
	case errors.Is(err, sheetdb.ErrBadKey):
		return apierr.ErrInvalid("row must be an integer >= 2")
	case errors.Is(err, sheetdb.ErrTooManyCells):
		return apierr.ErrInvalid(err.Error())
	case errors.Is(err, sheetdb.ErrRowNotFound):
		return apierr.ErrNotFound("指定された行が見つかりません")
	case errors.Is(err, sheetdb.ErrStaleRow):
		return apierr.ErrConflict("対象の行は移動または削除されました。再読み込みしてください。")
	case errors.Is(err, sheetdb.ErrReadFailed):
		return apierr.ErrUnavailable(sheetdb.ErrReadFailed.Error())
	case errors.Is(err, sheetdb.ErrBusy):
		return apierr.ErrUnavailable("混み合っています。しばらくしてから再度お試しください。")
	default:
		return apierr.ErrInternal(err.Error())
	}
}

// KeyFromRequest は :row と ?id= から Key を作る。body の id は bodyID で渡す。
func KeyFromRequest(c *gin.Context, bodyID string) (sheetdb.Key, error) {
	id := c.Query("id")
	if id == "" {
		id = bodyID
	}
	k, err := sheetdb.ParseKey(c.Param("row"), id)
	if err != nil {
		return sheetdb.Key{}, ToAPIError(err)
	}
	return k, nil
}

// WriteError はハンドラ共通のエラー応答。
func WriteError(c *gin.Context, err error) {
	err = ToAPIError(err)
	c.JSON(apierr.ToHTTPStatus(err), apierr.ErrorFromErr(err))
}
