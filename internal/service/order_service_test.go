package service

import (
	"context"
	"testing"

	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/e"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	buyerID  = int64(7)
	vendorID = int64(9)
)

var (
	buyer  = model.Principal{UserID: buyerID, Username: "buyer", Role: model.RoleUser}
	vendor = model.Principal{UserID: vendorID, Username: "vendor", Role: model.RoleVendor}
	admin  = model.Principal{UserID: 1, Username: "admin", Role: model.RoleAdmin}
)

func salePtr(v int64) *int64 { return &v }

// 测试夹具：两个在售商品（其中一个有促销价），买家购物车已有两行
func newOrderFixture() (*OrderService, *fakeOrderStore, *fakeCartStore, *fakeProductStore) {
	products := newFakeProductStore(
		&model.Product{ID: 1, VendorID: vendorID, Name: "机械键盘", PriceCents: 500, Stock: 10, IsActive: true},
		&model.Product{ID: 2, VendorID: vendorID, Name: "鼠标垫", PriceCents: 1000, SalePriceCents: salePtr(750), Stock: 5, IsActive: true},
	)
	cart := newFakeCartStore(products)
	orders := newFakeOrderStore(products, cart)
	svc := NewOrderService(orders, cart, products, nil, 0)
	return svc, orders, cart, products
}

func checkoutInput() CreateOrderInput {
	return CreateOrderInput{
		FirstName:     "三",
		LastName:      "张",
		AddressLine1:  "科技园路1号",
		City:          "深圳",
		State:         "广东",
		PostalCode:    "518000",
		Country:       "中国",
		PaymentMethod: "mock",
	}
}

func TestCreateOrderHappyPath(t *testing.T) {
	svc, _, cart, products := newOrderFixture()
	ctx := context.Background()

	cart.addLine(buyerID, 1, 2) // 500 x2
	cart.addLine(buyerID, 2, 1) // 促销价750 x1

	ord, err := svc.CreateOrder(ctx, buyer, checkoutInput())
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, ord.Status)
	assert.Equal(t, int64(1750), ord.TotalCents)
	assert.Len(t, ord.Items, 2)
	assert.NotEmpty(t, ord.OrderNumber)

	// 订单行记录的是下单时的有效单价
	assert.Equal(t, int64(500), ord.Items[0].PriceCents)
	assert.Equal(t, int64(750), ord.Items[1].PriceCents)

	// 支付记录随单创建，金额一致，待支付
	require.NotNil(t, ord.Payment)
	assert.Equal(t, model.PaymentStatusPending, ord.Payment.Status)
	assert.Equal(t, int64(1750), ord.Payment.AmountCents)

	// 库存已扣减
	assert.Equal(t, int64(8), products.products[1].Stock)
	assert.Equal(t, int64(4), products.products[2].Stock)

	// 购物车已清空
	items, err := cart.GetCartItems(ctx, buyerID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	svc, _, _, _ := newOrderFixture()

	_, err := svc.CreateOrder(context.Background(), buyer, checkoutInput())
	biz := e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_CART_EMPTY, biz.Code)
}

func TestCreateOrderInsufficientStockNoPartialState(t *testing.T) {
	svc, orders, cart, products := newOrderFixture()
	ctx := context.Background()

	cart.addLine(buyerID, 1, 2)
	cart.addLine(buyerID, 2, 8) // 库存只有5

	_, err := svc.CreateOrder(ctx, buyer, checkoutInput())
	biz := e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_STOCK_NOT_ENOUGH, biz.Code)
	assert.Contains(t, biz.Msg, "鼠标垫")

	// 下单失败不留任何副作用：无订单、库存不变、购物车保留
	assert.Empty(t, orders.orders)
	assert.Equal(t, int64(10), products.products[1].Stock)
	assert.Equal(t, int64(5), products.products[2].Stock)
	items, _ := cart.GetCartItems(ctx, buyerID)
	assert.Len(t, items, 2)
}

func TestCreateOrderCommitConflictRollsBack(t *testing.T) {
	svc, orders, cart, products := newOrderFixture()
	ctx := context.Background()

	cart.addLine(buyerID, 1, 1)
	cart.addLine(buyerID, 2, 1)
	orders.conflictProductID = 2 // 提交事务内才暴露的并发竞争

	_, err := svc.CreateOrder(ctx, buyer, checkoutInput())
	biz := e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_STOCK_NOT_ENOUGH, biz.Code)
	assert.Contains(t, biz.Msg, "鼠标垫")

	assert.Empty(t, orders.orders)
	assert.Equal(t, int64(10), products.products[1].Stock)
	items, _ := cart.GetCartItems(ctx, buyerID)
	assert.Len(t, items, 2)
}

func TestOrderPriceSnapshotImmutable(t *testing.T) {
	svc, _, cart, products := newOrderFixture()
	ctx := context.Background()

	cart.addLine(buyerID, 1, 1)
	ord, err := svc.CreateOrder(ctx, buyer, checkoutInput())
	require.NoError(t, err)

	// 下单后改价不影响已生成的订单行与订单总额
	products.products[1].PriceCents = 99999
	got, err := svc.GetOrder(ctx, buyer, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.Items[0].PriceCents)
	assert.Equal(t, int64(500), got.TotalCents)
}

func TestGetOrderOwnership(t *testing.T) {
	svc, _, cart, _ := newOrderFixture()
	ctx := context.Background()

	cart.addLine(buyerID, 1, 1)
	ord, err := svc.CreateOrder(ctx, buyer, checkoutInput())
	require.NoError(t, err)

	// 他人订单视为不存在
	stranger := model.Principal{UserID: 99, Role: model.RoleUser}
	_, err = svc.GetOrder(ctx, stranger, ord.ID)
	biz := e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_ORDER_NOT_EXISTS, biz.Code)

	// admin可读任意订单
	_, err = svc.GetOrder(ctx, admin, ord.ID)
	assert.NoError(t, err)
}

func TestCancelOrderRestoresStockAndRefunds(t *testing.T) {
	svc, orders, cart, products := newOrderFixture()
	ctx := context.Background()

	cart.addLine(buyerID, 1, 3)
	ord, err := svc.CreateOrder(ctx, buyer, checkoutInput())
	require.NoError(t, err)
	require.Equal(t, int64(7), products.products[1].Stock)

	// 已支付确认的订单仍可取消
	_, err = svc.ConfirmPayment(ctx, buyer, ord.ID)
	require.NoError(t, err)

	require.NoError(t, svc.CancelOrder(ctx, buyer, ord.ID))

	stored := orders.orders[ord.ID]
	assert.Equal(t, model.OrderStatusCancelled, stored.Status)
	assert.Equal(t, int64(10), products.products[1].Stock)
	assert.Equal(t, model.PaymentStatusRefunded, stored.Payment.Status)

	// 终态不可再取消
	err = svc.CancelOrder(ctx, buyer, ord.ID)
	biz := e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_ORDER_NOT_CANCELABLE, biz.Code)
}

func TestCancelOrderRejectedAfterShipment(t *testing.T) {
	svc, orders, cart, _ := newOrderFixture()
	ctx := context.Background()

	cart.addLine(buyerID, 1, 1)
	ord, err := svc.CreateOrder(ctx, buyer, checkoutInput())
	require.NoError(t, err)

	orders.orders[ord.ID].Status = model.OrderStatusShipped

	err = svc.CancelOrder(ctx, buyer, ord.ID)
	biz := e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_ORDER_NOT_CANCELABLE, biz.Code)
}

func TestConfirmPayment(t *testing.T) {
	svc, _, cart, _ := newOrderFixture()
	ctx := context.Background()

	cart.addLine(buyerID, 1, 1)
	ord, err := svc.CreateOrder(ctx, buyer, checkoutInput())
	require.NoError(t, err)

	paid, err := svc.ConfirmPayment(ctx, buyer, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, paid.Status)
	assert.Equal(t, model.PaymentStatusCompleted, paid.Payment.Status)
	assert.NotEmpty(t, paid.Payment.TransactionID)

	// 重复支付拒绝
	_, err = svc.ConfirmPayment(ctx, buyer, ord.ID)
	biz := e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_ORDER_STATUS_CHANGED, biz.Code)
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	svc, _, cart, _ := newOrderFixture()
	ctx := context.Background()

	cart.addLine(buyerID, 1, 1)
	ord, err := svc.CreateOrder(ctx, buyer, checkoutInput())
	require.NoError(t, err)

	// 普通用户无权更新状态
	_, err = svc.UpdateOrderStatus(ctx, buyer, ord.ID, model.OrderStatusConfirmed, "")
	biz := e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_FORBIDDEN, biz.Code)

	// 无关联商家视为订单不存在
	otherVendor := model.Principal{UserID: 42, Role: model.RoleVendor}
	_, err = svc.UpdateOrderStatus(ctx, otherVendor, ord.ID, model.OrderStatusConfirmed, "")
	biz = e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_ORDER_NOT_EXISTS, biz.Code)

	// 跳级流转拒绝：PENDING → SHIPPED
	_, err = svc.UpdateOrderStatus(ctx, vendor, ord.ID, model.OrderStatusShipped, "")
	biz = e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_ORDER_BAD_TRANSITION, biz.Code)

	// 合法流转逐级推进
	for _, next := range []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
	} {
		got, err := svc.UpdateOrderStatus(ctx, vendor, ord.ID, next, "")
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, next, got.Status)
	}

	// 送达后支付完成
	got, err := svc.GetOrder(ctx, buyer, ord.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, got.Payment.Status)
}

func TestVendorStats(t *testing.T) {
	svc, _, cart, _ := newOrderFixture()
	ctx := context.Background()

	// 订单1：确认（计入营收）
	cart.addLine(buyerID, 1, 2)
	ord1, err := svc.CreateOrder(ctx, buyer, checkoutInput())
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(ctx, buyer, ord1.ID)
	require.NoError(t, err)

	// 订单2：保持PENDING（不计营收）
	cart.addLine(buyerID, 2, 1)
	_, err = svc.CreateOrder(ctx, buyer, checkoutInput())
	require.NoError(t, err)

	stats, err := svc.GetVendorStats(ctx, vendor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.OrderCount)
	assert.Equal(t, int64(1000), stats.RevenueCents)
	assert.Equal(t, int64(2), stats.ActiveProducts)
	assert.Equal(t, int64(1), stats.StatusCounts[model.OrderStatusConfirmed])
	assert.Equal(t, int64(1), stats.StatusCounts[model.OrderStatusPending])

	// 普通用户禁止访问商家统计
	_, err = svc.GetVendorStats(ctx, buyer)
	biz := e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_FORBIDDEN, biz.Code)
}

func TestVendorOrdersForbiddenForUser(t *testing.T) {
	svc, _, _, _ := newOrderFixture()

	_, _, err := svc.GetVendorOrders(context.Background(), buyer, 1, 20, "")
	biz := e.AsBiz(err)
	require.NotNil(t, biz)
	assert.Equal(t, e.ERROR_FORBIDDEN, biz.Code)
}
