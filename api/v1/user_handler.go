package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/CCDD2022/mall-system/internal/service"
	"github.com/gin-gonic/gin"
)

// UserHandler 用户资料 HTTP 处理器
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes 注册用户路由（需JWT）
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.GetProfile)
	rg.PUT("/users/me", h.UpdateProfile)
	rg.POST("/users/me/password", h.ChangePassword)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.GetProfile(ctx, GetPrincipal(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, user)
}

type updateProfileRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,max=20"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadParams(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.userService.UpdateProfile(ctx, GetPrincipal(c), req.Email, req.Phone)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadParams(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.userService.ChangePassword(ctx, GetPrincipal(c), req.OldPassword, req.NewPassword); err != nil {
		Fail(c, err)
		return
	}
	OKMsg(c, "密码修改成功")
}
