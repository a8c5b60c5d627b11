package events

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
	r.GET("/events", h.List)
	r.POST("/events", h.Create)
	r.PUT("/events/:row", h.Update)
	r.DELETE("/events/:row", h.Delete)
	r.GET("/events/photos", h.Photos)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	out := make([]EventResponse, 0, len(items))
	for _, ev := range items {
		out = append(out, ev.toDTO())
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Create(c *gin.Context) {
	var req SaveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.ErrorBody(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	h.save(c, sheetdb.Key{}, req)
}

func (h *Handler) Update(c *gin.Context) {
	var req SaveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.ErrorBody(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	key, err := portal.KeyFromRequest(c, req.ID)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	h.save(c, key, req)
}

func (h *Handler) save(c *gin.Context, key sheetdb.Key, req SaveEventRequest) {
	ev, err := h.svc.Save(c.Request.Context(), key, req)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	status := http.StatusOK
	if key.IsZero() {
		status = http.StatusCreated
	}
	c.JSON(status, portal.ResultResponse{Result: portal.ResultSuccess, RowNumber: ev.RowNumber, ID: ev.ID})
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

// GET /events/photos?album_url=...
func (h *Handler) Photos(c *gin.Context) {
	albumURL := c.Query("album_url")
	urls, err := h.svc.AllPhotos(c.Request.Context(), albumURL)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, PhotosResponse{AlbumURL: albumURL, Photos: urls})
}
