package dao

import (
	"context"

	"github.com/CCDD2022/mall-system/internal/model"

	"gorm.io/gorm"
)

type ReviewDao struct {
	db *gorm.DB
}

func NewReviewDao(db *gorm.DB) *ReviewDao {
	return &ReviewDao{db: db}
}

// GetReviewByUserProduct 查询用户对商品的评价
func (d *ReviewDao) GetReviewByUserProduct(ctx context.Context, userID, productID int64) (*model.Review, error) {
	var r model.Review
	err := d.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReviewByID 根据ID获取评价
func (d *ReviewDao) GetReviewByID(ctx context.Context, id int64) (*model.Review, error) {
	var r model.Review
	if err := d.db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReviewTx 写入评价并在同一事务内重算商品均分，
// 避免并发评价下读-改-写丢失更新
func (d *ReviewDao) CreateReviewTx(ctx context.Context, review *model.Review) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}
		return UpdateRating(tx, review.ProductID)
	})
}

// DeleteReviewTx 删除评价并重算均分
func (d *ReviewDao) DeleteReviewTx(ctx context.Context, review *model.Review) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Review{}, review.ID).Error; err != nil {
			return err
		}
		return UpdateRating(tx, review.ProductID)
	})
}

// ListByProduct 商品评价分页
func (d *ReviewDao) ListByProduct(ctx context.Context, productID int64, page, limit int) ([]*model.Review, int64, error) {
	var reviews []*model.Review
	var total int64
	offset := (page - 1) * limit

	q := d.db.WithContext(ctx).Model(&model.Review{}).Where("product_id = ?", productID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error

	return reviews, total, err
}
