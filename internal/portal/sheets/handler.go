package sheets

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"portal-backend/internal/platform/apierr"
	"portal-backend/internal/portal"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/sheets", h.List)
	r.GET("/sheets/:name/export", h.Export)
	r.POST("/sheets/init", h.Init)
}

func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Sheets())
}

// GET /sheets/:name/export?encoding=utf8|sjis
func (h *Handler) Export(c *gin.Context) {
	enc, ok := ParseEncoding(c.Query("encoding"))
	if !ok {
		c.JSON(http.StatusBadRequest, apierr.ErrorBody(apierr.CodeInvalidArgument, "encoding must be utf8 or sjis"))
		return
	}
	name := c.Param("name")
	b, err := h.svc.Export(c.Request.Context(), name, enc)
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\"export.csv\"; filename*=UTF-8''"+url.PathEscape(name+".csv"))
	c.Data(http.StatusOK, enc.ContentType(), b)
}

func (h *Handler) Init(c *gin.Context) {
	done, err := h.svc.Init(c.Request.Context())
	if err != nil {
		portal.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": portal.ResultSuccess, "sheets": done})
}
