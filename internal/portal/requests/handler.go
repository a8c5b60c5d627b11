package requests

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/portal"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/requests", h.List)
	r.POST("/requests", h.Create)
	r.PUT("/requests/:row", h.Update)
	r.DELETE("/requests/:row", h.Delete)

	r.POST("/requests/:row/likes", h.AddLike)
	r.POST("/requests/:row/promote", h.Promote)
}

func badJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, apierr.ErrorBody(apierr.CodeInvalidArgument, "invalid json"))
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	out := make([]RequestResponse, 0, len(items))
	for _, q := range items {
		out = append(out, q.toDTO())
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Create(c *gin.Context) {
	var req SaveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	h.save(c, sheetdb.Key{}, req)
}

func (h *Handler) Update(c *gin.Context) {
	var req SaveRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	key, err := portal.KeyFromRequest(c, req.ID)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	h.save(c, key, req)
}

func (h *Handler) save(c *gin.Context, key sheetdb.Key, req SaveRequestRequest) {
	q, err := h.svc.Save(c.Request.Context(), key, req)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	status := http.StatusOK
	if key.IsZero() {
		status = http.StatusCreated
	}
	c.JSON(status, portal.ResultResponse{Result: portal.ResultSuccess, RowNumber: q.RowNumber, ID: q.ID})
}

func (h *Handler) Delete(c *gin.Context) {
	key, err := portal.KeyFromRequest(c, "")
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), key); err != nil {
		portal.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, portal.ResultResponse{Result: portal.ResultSuccess})
}

// body は省略可（{"id": "..."} だけ）
func (h *Handler) AddLike(c *gin.Context) {
	var req LikeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badJSON(c)
			return
		}
	}
	key, err := portal.KeyFromRequest(c, req.ID)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	n, err := h.svc.AddLike(c.Request.Context(), key)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, LikeResponse{Result: portal.ResultSuccess, Likes: n})
}

func (h *Handler) Promote(c *gin.Context) {
	var req PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	key, err := portal.KeyFromRequest(c, req.ID)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	res, err := h.svc.Promote(c.Request.Context(), key, req.Book)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	out := PromoteResponse{Result: res.Result, BookRow: res.Book.RowNumber, BookID: res.Book.ID}
	if res.Cause != nil {
		out.Message = "図書は登録されましたが、リクエストの削除に失敗しました。手動で削除してください。"
	}
	c.JSON(http.StatusOK, out)
}
