package dao

import (
	"context"

	"github.com/CCDD2022/mall-system/internal/model"

	"gorm.io/gorm"
)

type CartDao struct {
	db *gorm.DB
}

func NewCartDao(db *gorm.DB) *CartDao {
	return &CartDao{db: db}
}

// GetCartItems 获取用户全部购物车行（携带商品）
func (d *CartDao) GetCartItems(ctx context.Context, userID int64) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := d.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&items).Error
	return items, err
}

// GetCartItem 根据行ID获取本人购物车行
func (d *CartDao) GetCartItem(ctx context.Context, userID, itemID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := d.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCartItemByProduct 根据(user, product)获取购物车行
func (d *CartDao) GetCartItemByProduct(ctx context.Context, userID, productID int64) (*model.CartItem, error) {
	var item model.CartItem
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateCartItem 新增购物车行
func (d *CartDao) CreateCartItem(ctx context.Context, item *model.CartItem) error {
	return d.db.WithContext(ctx).Create(item).Error
}

// UpdateQuantity 更新购物车行数量
func (d *CartDao) UpdateQuantity(ctx context.Context, itemID, quantity int64) error {
	return d.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// DeleteCartItem 删除本人购物车行，返回影响行数用于归属校验
func (d *CartDao) DeleteCartItem(ctx context.Context, userID, itemID int64) (int64, error) {
	result := d.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&model.CartItem{})
	return result.RowsAffected, result.Error
}

// ClearCart 清空用户购物车（幂等）
func (d *CartDao) ClearCart(ctx context.Context, userID int64) error {
	return d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}
