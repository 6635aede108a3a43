// Package service 订单服务实现
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CCDD2022/mall-system/internal/dao"
	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/e"
	"github.com/CCDD2022/mall-system/pkg/logger"
	"github.com/CCDD2022/mall-system/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// OrderStore 订单存储能力（事务均在dao层内部完成）
type OrderStore interface {
	CreateOrderTx(ctx context.Context, addr *model.Address, order *model.Order, items []*model.OrderItem, payment *model.Payment) error
	GetOrderByID(ctx context.Context, orderID int64) (*model.Order, error)
	GetUserOrders(ctx context.Context, userID int64, page, limit int, status model.OrderStatus) ([]*model.Order, int64, error)
	UpdateOrderStatusTx(ctx context.Context, order *model.Order, to model.OrderStatus, notes string) error
	ConfirmPaymentTx(ctx context.Context, orderID int64, transactionID string) error
	VendorOwnsOrder(ctx context.Context, orderID, vendorID int64) (bool, error)
	GetVendorOrders(ctx context.Context, vendorID int64, page, limit int, status model.OrderStatus) ([]*model.Order, int64, error)
	GetVendorStats(ctx context.Context, vendorID int64) (*dao.VendorStats, error)
}

// VendorProductCounter 商家上架商品计数（统计接口用）
type VendorProductCounter interface {
	CountActiveByVendor(ctx context.Context, vendorID int64) (int64, error)
}

type OrderService struct {
	orderStore OrderStore
	cartStore  CartStore
	products   VendorProductCounter
	redisDB    redis.UniversalClient
	lockTTL    time.Duration
}

// NewOrderService redisDB可为nil（测试场景），此时跳过下单互斥锁
func NewOrderService(orderStore OrderStore, cartStore CartStore, products VendorProductCounter, redisDB redis.UniversalClient, lockTTL time.Duration) *OrderService {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &OrderService{
		orderStore: orderStore,
		cartStore:  cartStore,
		products:   products,
		redisDB:    redisDB,
		lockTTL:    lockTTL,
	}
}

// CreateOrderInput 下单参数：地址字段 + 支付方式 + 备注
type CreateOrderInput struct {
	AddressType   string
	FirstName     string
	LastName      string
	AddressLine1  string
	AddressLine2  string
	City          string
	State         string
	PostalCode    string
	Country       string
	Phone         string
	PaymentMethod string
	Notes         string
}

// CreateOrder 原子下单：
// 1. 用户级互斥锁防止重复提交竞争空购物车检查
// 2. 读取购物车并校验库存、按有效单价累计总额
// 3. 单事务写入地址/订单/订单行/支付并扣库存、清购物车
// 事务内条件扣减兜底并发下单，竞争落败方整单回滚。
func (s *OrderService) CreateOrder(ctx context.Context, principal model.Principal, input CreateOrderInput) (*model.Order, error) {
	// 1. 用户级互斥锁（防重复下单）；userid作为锁的key
	if s.redisDB != nil {
		lockKey := fmt.Sprintf("mall:checkout:lock:user:%d", principal.UserID)
		locked, err := s.redisDB.SetNX(ctx, lockKey, "1", s.lockTTL).Result()
		if err != nil {
			logger.Warn("下单锁获取失败，降级为无锁提交", "user_id", principal.UserID, "err", err)
		} else if !locked {
			return nil, e.InvalidState(e.ERROR_CHECKOUT_IN_PROGRESS)
		} else {
			defer func() {
				c, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
				defer cancel()
				_ = s.redisDB.Del(c, lockKey).Err()
			}()
		}
	}

	// 2. 读取购物车
	cartItems, err := s.cartStore.GetCartItems(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, e.InvalidState(e.ERROR_CART_EMPTY)
	}

	// 3. 预校验库存并累计总额（提交时事务内还会条件扣减兜底）
	var totalCents int64
	orderItems := make([]*model.OrderItem, 0, len(cartItems))
	productNames := make(map[int64]string, len(cartItems))
	for _, line := range cartItems {
		if line.Product == nil {
			return nil, e.NotFound(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		productNames[line.ProductID] = line.Product.Name
		if line.Product.Stock < line.Quantity {
			return nil, e.InsufficientStock(line.Product.Name)
		}

		price := line.Product.EffectivePriceCents()
		totalCents += price * line.Quantity
		orderItems = append(orderItems, &model.OrderItem{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			PriceCents: price,
		})
	}

	addr := &model.Address{
		UserID:       principal.UserID,
		AddressType:  input.AddressType,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Country:      input.Country,
		Phone:        input.Phone,
	}

	newOrder := &model.Order{
		OrderNumber: utils.GenerateOrderNumber(),
		UserID:      principal.UserID,
		Status:      model.OrderStatusPending,
		TotalCents:  totalCents,
		Notes:       input.Notes,
	}

	payment := &model.Payment{
		AmountCents: totalCents,
		Method:      input.PaymentMethod,
		Status:      model.PaymentStatusPending,
	}

	// 4. 提交下单事务
	if err := s.orderStore.CreateOrderTx(ctx, addr, newOrder, orderItems, payment); err != nil {
		var conflict *dao.StockConflictError
		if errors.As(err, &conflict) {
			// 并发竞争落败，整单已回滚
			return nil, e.InsufficientStock(productNames[conflict.ProductID])
		}
		return nil, err
	}

	logger.Info("订单创建成功",
		"order_id", newOrder.ID,
		"order_number", newOrder.OrderNumber,
		"user_id", principal.UserID,
		"total_cents", totalCents,
	)

	// 5. 返回完整订单
	return s.orderStore.GetOrderByID(ctx, newOrder.ID)
}

// GetOrder 获取订单详情，非本人订单视为不存在（admin可读任意订单）
func (s *OrderService) GetOrder(ctx context.Context, principal model.Principal, orderID int64) (*model.Order, error) {
	ord, err := s.orderStore.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_ORDER_NOT_EXISTS)
		}
		return nil, err
	}
	if ord.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, e.NotFound(e.ERROR_ORDER_NOT_EXISTS)
	}
	return ord, nil
}

// FindUserOrders 用户订单列表
func (s *OrderService) FindUserOrders(ctx context.Context, principal model.Principal, page, limit int, status model.OrderStatus) ([]*model.Order, int64, error) {
	return s.orderStore.GetUserOrders(ctx, principal.UserID, page, limit, status)
}

// CancelOrder 买家取消订单。仅PENDING/CONFIRMED可取消；
// 状态置CANCELLED、回补库存、支付置REFUNDED在同一事务内完成
func (s *OrderService) CancelOrder(ctx context.Context, principal model.Principal, orderID int64) error {
	ord, err := s.GetOrder(ctx, principal, orderID)
	if err != nil {
		return err
	}

	if !ord.Status.Cancelable() {
		return e.InvalidState(e.ERROR_ORDER_NOT_CANCELABLE)
	}

	if err := s.orderStore.UpdateOrderStatusTx(ctx, ord, model.OrderStatusCancelled, ""); err != nil {
		if errors.Is(err, dao.ErrOrderStatusChanged) {
			return e.InvalidState(e.ERROR_ORDER_STATUS_CHANGED)
		}
		return err
	}

	logger.Info("订单已取消", "order_id", ord.ID, "user_id", principal.UserID)
	return nil
}

// ConfirmPayment 模拟支付确认：支付COMPLETED + 订单CONFIRMED
func (s *OrderService) ConfirmPayment(ctx context.Context, principal model.Principal, orderID int64) (*model.Order, error) {
	ord, err := s.GetOrder(ctx, principal, orderID)
	if err != nil {
		return nil, err
	}

	if ord.Status != model.OrderStatusPending {
		return nil, e.InvalidState(e.ERROR_ORDER_STATUS_CHANGED)
	}

	transactionID := uuid.NewString()
	if err := s.orderStore.ConfirmPaymentTx(ctx, orderID, transactionID); err != nil {
		if errors.Is(err, dao.ErrOrderStatusChanged) {
			return nil, e.InvalidState(e.ERROR_ORDER_STATUS_CHANGED)
		}
		return nil, err
	}

	logger.Info("订单支付完成", "order_id", orderID, "transaction_id", transactionID)
	return s.orderStore.GetOrderByID(ctx, orderID)
}

// UpdateOrderStatus 商家/管理员更新订单状态，按状态流转表校验
func (s *OrderService) UpdateOrderStatus(ctx context.Context, principal model.Principal, orderID int64, newStatus model.OrderStatus, notes string) (*model.Order, error) {
	if !principal.Role.CanManageOrders() {
		return nil, e.Forbidden()
	}
	if !newStatus.Valid() {
		return nil, e.New(e.INVALID_PARAMS, 400)
	}

	ord, err := s.orderStore.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_ORDER_NOT_EXISTS)
		}
		return nil, err
	}

	// 商家必须持有订单内至少一个商品；无关联订单视为不存在
	if !principal.IsAdmin() {
		owns, err := s.orderStore.VendorOwnsOrder(ctx, orderID, principal.UserID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, e.NotFound(e.ERROR_ORDER_NOT_EXISTS)
		}
	}

	if !ord.Status.CanTransitionTo(newStatus) {
		return nil, e.InvalidState(e.ERROR_ORDER_BAD_TRANSITION)
	}

	if err := s.orderStore.UpdateOrderStatusTx(ctx, ord, newStatus, notes); err != nil {
		if errors.Is(err, dao.ErrOrderStatusChanged) {
			return nil, e.InvalidState(e.ERROR_ORDER_STATUS_CHANGED)
		}
		return nil, err
	}

	logger.Info("订单状态更新",
		"order_id", orderID,
		"from", ord.Status,
		"to", newStatus,
		"operator", principal.UserID,
	)
	return s.orderStore.GetOrderByID(ctx, orderID)
}

// GetVendorOrders 商家订单列表（仅返回该商家的订单行切片）
func (s *OrderService) GetVendorOrders(ctx context.Context, principal model.Principal, page, limit int, status model.OrderStatus) ([]*model.Order, int64, error) {
	if !principal.Role.CanManageOrders() {
		return nil, 0, e.Forbidden()
	}
	return s.orderStore.GetVendorOrders(ctx, principal.UserID, page, limit, status)
}

// GetVendorStats 商家统计：上架商品数/订单数/营收/状态直方图
func (s *OrderService) GetVendorStats(ctx context.Context, principal model.Principal) (*dao.VendorStats, error) {
	if !principal.Role.CanManageOrders() {
		return nil, e.Forbidden()
	}

	stats, err := s.orderStore.GetVendorStats(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	stats.ActiveProducts, err = s.products.CountActiveByVendor(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
