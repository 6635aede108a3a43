package dao

import (
	"context"

	"github.com/CCDD2022/mall-system/internal/model"

	"gorm.io/gorm"
)

type WishlistDao struct {
	db *gorm.DB
}

func NewWishlistDao(db *gorm.DB) *WishlistDao {
	return &WishlistDao{db: db}
}

// GetItems 获取用户收藏列表（携带商品）
func (d *WishlistDao) GetItems(ctx context.Context, userID int64) ([]*model.WishlistItem, error) {
	var items []*model.WishlistItem
	err := d.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// GetItem 根据(user, product)获取收藏条目
func (d *WishlistDao) GetItem(ctx context.Context, userID, productID int64) (*model.WishlistItem, error) {
	var item model.WishlistItem
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem 新增收藏
func (d *WishlistDao) CreateItem(ctx context.Context, item *model.WishlistItem) error {
	return d.db.WithContext(ctx).Create(item).Error
}

// DeleteItem 删除收藏，返回影响行数
func (d *WishlistDao) DeleteItem(ctx context.Context, userID, productID int64) (int64, error) {
	result := d.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{})
	return result.RowsAffected, result.Error
}

// MoveToCartTx 移入购物车：新建购物车行并删除收藏，单事务内完成，
// 两个写要么都发生要么都不发生
func (d *WishlistDao) MoveToCartTx(ctx context.Context, userID, productID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cartItem := &model.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  1,
		}
		if err := tx.Create(cartItem).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND product_id = ?", userID, productID).
			Delete(&model.WishlistItem{}).Error
	})
}
