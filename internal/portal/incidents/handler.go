package incidents

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
	r.GET("/incidents", h.List)
	r.POST("/incidents", h.Create)
	r.PUT("/incidents/:row", h.Update)
	r.DELETE("/incidents/:row", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	out := make([]IncidentResponse, 0, len(items))
	for _, i := range items {
		out = append(out, i.toDTO())
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) Create(c *gin.Context) {
	var req SaveIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.ErrorBody(apierr.CodeInvalidArgument, "invalid json"))
		return
	}
	h.save(c, sheetdb.Key{}, req)
}

func (h *Handler) Update(c *gin.Context) {
	var req SaveIncidentRequest
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

func (h *Handler) save(c *gin.Context, key sheetdb.Key, req SaveIncidentRequest) {
	i, err := h.svc.Save(c.Request.Context(), key, req)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	status := http.StatusOK
	if key.IsZero() {
		status = http.StatusCreated
	}
	c.JSON(status, portal.ResultResponse{Result: portal.ResultSuccess, RowNumber: i.RowNumber, ID: i.ID})
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
