package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/internal/service"
	"github.com/CCDD2022/mall-system/pkg/e"
	"github.com/gin-gonic/gin"
)

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes 注册买家订单路由（需JWT；POST /orders在外层挂下单限流）
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders", h.ListMyOrders)
	rg.GET("/orders/:id", h.GetOrder)
	rg.PATCH("/orders/:id/cancel", h.CancelOrder)
	rg.POST("/orders/:id/pay", h.PayOrder)
}

// RegisterVendorRoutes 注册商家订单路由（需JWT + vendor/admin角色）
func (h *OrderHandler) RegisterVendorRoutes(rg *gin.RouterGroup) {
	rg.GET("/vendor/orders", h.ListVendorOrders)
	rg.PATCH("/vendor/orders/:id/status", h.UpdateOrderStatus)
	rg.GET("/vendor/stats", h.GetVendorStats)
}

type createOrderRequest struct {
	AddressType   string `json:"address_type" binding:"omitempty,max=20"`
	FirstName     string `json:"first_name" binding:"required,max=50"`
	LastName      string `json:"last_name" binding:"required,max=50"`
	AddressLine1  string `json:"address_line1" binding:"required,max=255"`
	AddressLine2  string `json:"address_line2" binding:"omitempty,max=255"`
	City          string `json:"city" binding:"required,max=100"`
	State         string `json:"state" binding:"required,max=100"`
	PostalCode    string `json:"postal_code" binding:"required,max=20"`
	Country       string `json:"country" binding:"required,max=100"`
	Phone         string `json:"phone" binding:"omitempty,max=20"`
	PaymentMethod string `json:"payment_method" binding:"required,max=30"`
	Notes         string `json:"notes" binding:"omitempty,max=500"`
}

// CreateOrder 购物车结算下单
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadParams(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	order, err := h.orderService.CreateOrder(ctx, GetPrincipal(c), service.CreateOrderInput{
		AddressType:   req.AddressType,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		AddressLine1:  req.AddressLine1,
		AddressLine2:  req.AddressLine2,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		Phone:         req.Phone,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, order)
}

// parseStatusFilter 解析可选的状态筛选参数
func parseStatusFilter(c *gin.Context) (model.OrderStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return "", true
	}
	status := model.OrderStatus(raw)
	if !status.Valid() {
		BadParams(c)
		return "", false
	}
	return status, true
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	page, limit := parsePageLimit(c)
	status, ok := parseStatusFilter(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, total, err := h.orderService.FindUserOrders(ctx, GetPrincipal(c), page, limit, status)
	if err != nil {
		Fail(c, err)
		return
	}

	OK(c, http.StatusOK, gin.H{
		"orders":     orders,
		"pagination": Pagination{Page: page, Limit: limit, Total: total},
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orderService.GetOrder(ctx, GetPrincipal(c), orderID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.orderService.CancelOrder(ctx, GetPrincipal(c), orderID); err != nil {
		Fail(c, err)
		return
	}
	OKMsg(c, "订单已取消")
}

// PayOrder 模拟支付
func (h *OrderHandler) PayOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orderService.ConfirmPayment(ctx, GetPrincipal(c), orderID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, order)
}

func (h *OrderHandler) ListVendorOrders(c *gin.Context) {
	page, limit := parsePageLimit(c)
	status, ok := parseStatusFilter(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	orders, total, err := h.orderService.GetVendorOrders(ctx, GetPrincipal(c), page, limit, status)
	if err != nil {
		Fail(c, err)
		return
	}

	OK(c, http.StatusOK, gin.H{
		"orders":     orders,
		"pagination": Pagination{Page: page, Limit: limit, Total: total},
	})
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes" binding:"omitempty,max=500"`
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadParams(c)
		return
	}

	status := model.OrderStatus(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    e.INVALID_PARAMS,
			"message": "未知的订单状态",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	order, err := h.orderService.UpdateOrderStatus(ctx, GetPrincipal(c), orderID, status, req.Notes)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, order)
}

func (h *OrderHandler) GetVendorStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.orderService.GetVendorStats(ctx, GetPrincipal(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, stats)
}
