package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/CCDD2022/mall-system/internal/service"
	"github.com/gin-gonic/gin"
)

// CartHandler 购物车 HTTP 处理器
type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// RegisterRoutes 注册购物车路由（需JWT）
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cart", h.GetCart)
	rg.POST("/cart", h.AddItem)
	rg.PATCH("/cart/:itemId", h.UpdateItem)
	rg.DELETE("/cart/:itemId", h.RemoveItem)
	rg.DELETE("/cart", h.Clear)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	view, err := h.cartService.GetCart(ctx, GetPrincipal(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, view)
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int64 `json:"quantity" binding:"required,gte=1"`
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadParams(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.cartService.AddItem(ctx, GetPrincipal(c), req.ProductID, req.Quantity)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, item)
}

type updateCartItemRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gte=1"`
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}

	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadParams(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.cartService.UpdateItem(ctx, GetPrincipal(c), itemID, req.Quantity)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.cartService.RemoveItem(ctx, GetPrincipal(c), itemID); err != nil {
		Fail(c, err)
		return
	}
	OKMsg(c, "已移出购物车")
}

func (h *CartHandler) Clear(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.cartService.Clear(ctx, GetPrincipal(c)); err != nil {
		Fail(c, err)
		return
	}
	OKMsg(c, "购物车已清空")
}
