package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/CCDD2022/mall-system/internal/model"

	"gorm.io/gorm"
)

type OrderDao struct {
	db *gorm.DB
}

func NewOrderDao(db *gorm.DB) *OrderDao {
	return &OrderDao{
		db: db,
	}
}

var ErrOrderStatusChanged = errors.New("订单状态已变更")

// StockConflictError 提交时库存不足（并发下单竞争同一商品）
type StockConflictError struct {
	ProductID int64
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("商品 %d 库存不足", e.ProductID)
}

// CreateOrderTx 下单核心事务：
// 地址快照、订单、订单行、条件扣减库存、支付记录、清空购物车，全部成功或全部回滚。
// 扣减使用 UPDATE ... WHERE stock >= ? 的条件更新，RowsAffected=0 即并发竞争落败，
// 返回 StockConflictError 使整个事务回滚，库存永不为负。
func (d *OrderDao) CreateOrderTx(ctx context.Context, addr *model.Address, order *model.Order, items []*model.OrderItem, payment *model.Payment) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 地址快照（本流程收货与账单共用同一地址）
		if err := tx.Create(addr).Error; err != nil {
			return err
		}
		order.ShippingAddressID = addr.ID
		order.BillingAddressID = addr.ID

		// 2. 订单主体
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		// 3. 订单行 + 原子扣库存
		for _, item := range items {
			result := tx.Model(&model.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return &StockConflictError{ProductID: item.ProductID}
			}

			item.OrderID = order.ID
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}

		// 4. 支付记录（PENDING）
		payment.OrderID = order.ID
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		// 5. 清空购物车
		if err := tx.Where("user_id = ?", order.UserID).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// GetOrderByID 根据ID获取完整订单（行+商品、支付、地址）
func (d *OrderDao) GetOrderByID(ctx context.Context, orderID int64) (*model.Order, error) {
	var order model.Order
	err := d.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Payment").
		Preload("ShippingAddress").
		Preload("BillingAddress").
		First(&order, orderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetUserOrders 获取用户订单列表，可按状态筛选，按创建时间倒序
func (d *OrderDao) GetUserOrders(ctx context.Context, userID int64, page, limit int, status model.OrderStatus) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64
	offset := (page - 1) * limit

	q := d.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	// 获取总数
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 获取分页数据
	err := q.
		Preload("Items").
		Preload("Items.Product").
		Preload("Payment").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

// UpdateOrderStatusTx 订单状态流转事务。
// 条件更新保证并发下同一订单的状态竞争只有一方生效；
// 进入 CANCELLED/REFUNDED 的同时回补库存并将支付置为 REFUNDED，
// 进入 DELIVERED 时将支付置为 COMPLETED。
// CANCELLED 与 REFUNDED 均为终态且互不可达，库存不会被回补两次。
func (d *OrderDao) UpdateOrderStatusTx(ctx context.Context, order *model.Order, to model.OrderStatus, notes string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": to}
		if notes != "" {
			updates["notes"] = notes
		}
		result := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderStatusChanged
		}

		switch to {
		case model.OrderStatusCancelled, model.OrderStatusRefunded:
			// 回补库存
			for _, item := range order.Items {
				err := tx.Model(&model.Product{}).
					Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
				if err != nil {
					return err
				}
			}
			// 支付退款
			err := tx.Model(&model.Payment{}).
				Where("order_id = ?", order.ID).
				Update("status", model.PaymentStatusRefunded).Error
			if err != nil {
				return err
			}
		case model.OrderStatusDelivered:
			err := tx.Model(&model.Payment{}).
				Where("order_id = ? AND status <> ?", order.ID, model.PaymentStatusRefunded).
				Update("status", model.PaymentStatusCompleted).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// ConfirmPaymentTx 模拟支付确认：支付 PENDING→COMPLETED，订单 PENDING→CONFIRMED
func (d *OrderDao) ConfirmPaymentTx(ctx context.Context, orderID int64, transactionID string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Payment{}).
			Where("order_id = ? AND status = ?", orderID, model.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":         model.PaymentStatusCompleted,
				"transaction_id": transactionID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderStatusChanged
		}

		result = tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
			Update("status", model.OrderStatusConfirmed)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderStatusChanged
		}
		return nil
	})
}

// vendorProductIDs 商家商品ID子查询
func (d *OrderDao) vendorProductIDs(vendorID int64) *gorm.DB {
	return d.db.Model(&model.Product{}).Select("id").Where("vendor_id = ?", vendorID)
}

// VendorOwnsOrder 订单中是否包含该商家的商品
func (d *OrderDao) VendorOwnsOrder(ctx context.Context, orderID, vendorID int64) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("order_id = ? AND product_id IN (?)", orderID, d.vendorProductIDs(vendorID)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetVendorOrders 商家订单列表。跨商家订单只返回该商家的订单行（商家视角切片）
func (d *OrderDao) GetVendorOrders(ctx context.Context, vendorID int64, page, limit int, status model.OrderStatus) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64
	offset := (page - 1) * limit

	orderIDs := d.db.Model(&model.OrderItem{}).
		Select("DISTINCT order_id").
		Where("product_id IN (?)", d.vendorProductIDs(vendorID))

	q := d.db.WithContext(ctx).Model(&model.Order{}).Where("id IN (?)", orderIDs)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.
		Preload("Items", "product_id IN (?)", d.vendorProductIDs(vendorID)).
		Preload("Items.Product").
		Preload("Payment").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error

	return orders, total, err
}

// VendorStats 商家聚合统计
type VendorStats struct {
	ActiveProducts int64                       `json:"active_products"`
	OrderCount     int64                       `json:"order_count"`
	RevenueCents   int64                       `json:"revenue_cents"`
	StatusCounts   map[model.OrderStatus]int64 `json:"status_counts"`
}

// GetVendorStats 商家订单维度统计（全部聚合查询，无缓存）
func (d *OrderDao) GetVendorStats(ctx context.Context, vendorID int64) (*VendorStats, error) {
	stats := &VendorStats{StatusCounts: make(map[model.OrderStatus]int64)}

	orderIDs := d.db.Model(&model.OrderItem{}).
		Select("DISTINCT order_id").
		Where("product_id IN (?)", d.vendorProductIDs(vendorID))

	// 含商家商品的订单总数
	err := d.db.WithContext(ctx).Model(&model.Order{}).
		Where("id IN (?)", orderIDs).
		Count(&stats.OrderCount).Error
	if err != nil {
		return nil, err
	}

	// 计入营收的订单金额合计
	err = d.db.WithContext(ctx).Model(&model.Order{}).
		Select("COALESCE(SUM(total_cents),0)").
		Where("id IN (?) AND status IN (?)", orderIDs, model.RevenueStatuses).
		Scan(&stats.RevenueCents).Error
	if err != nil {
		return nil, err
	}

	// 状态直方图
	type row struct {
		Status model.OrderStatus
		Count  int64
	}
	var rows []row
	err = d.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Where("id IN (?)", orderIDs).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		stats.StatusCounts[r.Status] = r.Count
	}

	return stats, nil
}

// HasDeliveredItem 用户是否存在包含该商品且已送达的订单（评价资格）
func (d *OrderDao) HasDeliveredItem(ctx context.Context, userID, productID int64) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status = ?",
			userID, productID, model.OrderStatusDelivered).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
