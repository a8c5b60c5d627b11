package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portal-backend/internal/platform/apierr"
)

type AuthHandler struct{ svc AuthService }

// RegisterRoutes: ログインは誰でも、アカウント管理は admin のみ
func RegisterRoutes(r gin.IRouter, svc *Service) {
	h := &AuthHandler{svc: svc}
	r.POST("/login", h.Login)

	admin := r.Group("", RequireAuth(svc.Secret()), RequireRole(RoleAdmin))
	admin.POST("/register", h.Register)
	admin.DELETE("/accounts/:id", h.DeleteAccount)
	admin.PATCH("/accounts/:id", h.ChangeUsername) // “ユーザー名変更” = id変更
}

type LoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.ErrorBody(apierr.CodeInvalidArgument, "Invalid request"))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		if errors.Is(err, ErrAuthFailed) || errors.Is(err, ErrDisabled) {
			c.JSON(http.StatusUnauthorized, apierr.ErrorBody(apierr.CodeUnauthorized, "IDまたはパスワードが間違っています"))
			return
		}
		c.JSON(apierr.ToHTTPStatus(err), apierr.ErrorFromErr(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"message": "Login successful",
	})
}

type RegisterRequest struct {
	ID       string  `json:"id" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Role     *string `json:"role,omitempty"` // 未指定なら user
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.ErrorBody(apierr.CodeInvalidArgument, "Invalid request"))
		return
	}

	role := RoleUser
	if req.Role != nil && *req.Role != "" {
		role = *req.Role
	}

	if err := h.svc.Register(c.Request.Context(), req.ID, req.Password, role); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusConflict, apierr.ErrorBody(apierr.CodeConflict, "ID already exists"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierr.ErrorBody(apierr.CodeInternal, "register failed"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registered"})
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	id := c.Param("id")

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, apierr.ErrorBody(apierr.CodeNotFound, "not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierr.ErrorBody(apierr.CodeInternal, "delete failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type ChangeUsernameRequest struct {
	NewID string `json:"new_id" binding:"required"`
}

func (h *AuthHandler) ChangeUsername(c *gin.Context) {
	oldID := c.Param("id")

	var req ChangeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.ErrorBody(apierr.CodeInvalidArgument, "Invalid request"))
		return
	}

	if err := h.svc.ChangeID(c.Request.Context(), oldID, req.NewID); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, apierr.ErrorBody(apierr.CodeNotFound, "not found"))
			return
		}
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusConflict, apierr.ErrorBody(apierr.CodeConflict, "new id already exists"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierr.ErrorBody(apierr.CodeInternal, "change id failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "username changed"})
}
