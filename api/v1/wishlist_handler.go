package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/CCDD2022/mall-system/internal/service"
	"github.com/gin-gonic/gin"
)

// WishlistHandler 收藏 HTTP 处理器
type WishlistHandler struct {
	wishlistService *service.WishlistService
}

func NewWishlistHandler(wishlistService *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlistService: wishlistService}
}

// RegisterRoutes 注册收藏路由（需JWT）
func (h *WishlistHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/wishlist", h.List)
	rg.POST("/wishlist/:productId", h.Add)
	rg.DELETE("/wishlist/:productId", h.Remove)
	rg.POST("/wishlist/:productId/move-to-cart", h.MoveToCart)
}

func (h *WishlistHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.wishlistService.List(ctx, GetPrincipal(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, items)
}

func (h *WishlistHandler) Add(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.wishlistService.Add(ctx, GetPrincipal(c), productID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, item)
}

func (h *WishlistHandler) Remove(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.wishlistService.Remove(ctx, GetPrincipal(c), productID); err != nil {
		Fail(c, err)
		return
	}
	OKMsg(c, "已取消收藏")
}

func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.wishlistService.MoveToCart(ctx, GetPrincipal(c), productID); err != nil {
		Fail(c, err)
		return
	}
	OKMsg(c, "已移入购物车")
}
