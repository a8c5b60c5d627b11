package books

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/platform/sheetdb"
	"portal-backend/internal/portal"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/books", h.List)
	r.POST("/books", h.Create)
	r.PUT("/books/:row", h.Update)
	r.DELETE("/books/:row", h.Delete)

	// 貸出・返却・レビュー
	r.POST("/books/:row/borrow", h.Borrow)
	r.POST("/books/:row/return", h.Return)
	r.POST("/books/:row/reviews", h.AddReview)
	r.DELETE("/books/:row/reviews/:index", h.DeleteReview)
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
	out := make([]BookResponse, 0, len(items))
	for _, b := range items {
		out = append(out, b.toDTO())
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Create(c *gin.Context) {
	var req SaveBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	b, err := h.svc.Save(c.Request.Context(), sheetdb.Key{}, req)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, portal.ResultResponse{Result: portal.ResultSuccess, RowNumber: b.RowNumber, ID: b.ID})
}

func (h *Handler) Update(c *gin.Context) {
	var req SaveBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	key, err := portal.KeyFromRequest(c, req.ID)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	b, err := h.svc.Save(c.Request.Context(), key, req)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, portal.ResultResponse{Result: portal.ResultSuccess, RowNumber: b.RowNumber, ID: b.ID})
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

func (h *Handler) Borrow(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	key, err := portal.KeyFromRequest(c, req.ID)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	result, err := h.svc.Borrow(c.Request.Context(), key, req.BookTitle, req.UserName)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	if result == portal.ResultAlreadyBorrowed {
		c.JSON(http.StatusConflict, portal.ResultResponse{Result: result, Message: "既に貸出中です"})
		return
	}
	c.JSON(http.StatusOK, portal.ResultResponse{Result: result})
}

func (h *Handler) Return(c *gin.Context) {
	var req LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	key, err := portal.KeyFromRequest(c, req.ID)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	if err := h.svc.Return(c.Request.Context(), key, req.BookTitle, req.UserName); err != nil {
		portal.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, portal.ResultResponse{Result: portal.ResultSuccess})
}

func (h *Handler) AddReview(c *gin.Context) {
	var req AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	key, err := portal.KeyFromRequest(c, req.ID)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	r, index, err := h.svc.AddReview(c.Request.Context(), key, req.Rating, req.Comment, req.UserName)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"result": portal.ResultSuccess, "review": r.toDTO(index)})
}

func (h *Handler) DeleteReview(c *gin.Context) {
	key, err := portal.KeyFromRequest(c, "")
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierr.ErrorBody(apierr.CodeInvalidArgument, "index must be an integer"))
		return
	}
	if err := h.svc.DeleteReview(c.Request.Context(), key, index); err != nil {
		portal.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, portal.ResultResponse{Result: portal.ResultSuccess})
}
