package service

import (
	"context"
	"errors"

	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/e"

	"gorm.io/gorm"
)

// ReviewStore 评价存储能力
type ReviewStore interface {
	GetReviewByUserProduct(ctx context.Context, userID, productID int64) (*model.Review, error)
	GetReviewByID(ctx context.Context, id int64) (*model.Review, error)
	CreateReviewTx(ctx context.Context, review *model.Review) error
	DeleteReviewTx(ctx context.Context, review *model.Review) error
	ListByProduct(ctx context.Context, productID int64, page, limit int) ([]*model.Review, int64, error)
}

// PurchaseChecker 已购校验（评价资格门槛）
type PurchaseChecker interface {
	HasDeliveredItem(ctx context.Context, userID, productID int64) (bool, error)
}

type ReviewService struct {
	store     ReviewStore
	products  ProductReader
	purchases PurchaseChecker
}

func NewReviewService(store ReviewStore, products ProductReader, purchases PurchaseChecker) *ReviewService {
	return &ReviewService{
		store:     store,
		products:  products,
		purchases: purchases,
	}
}

// CreateReview 创建评价。门槛：商品存在、未评价过、有已送达的含该商品订单。
// 写入与均分重算在dao层同一事务内完成
func (s *ReviewService) CreateReview(ctx context.Context, principal model.Principal, productID int64, rating int, comment string) (*model.Review, error) {
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		return nil, err
	}

	// 每个(用户,商品)仅一条评价
	if _, err := s.store.GetReviewByUserProduct(ctx, principal.UserID, productID); err == nil {
		return nil, e.InvalidState(e.ERROR_REVIEW_EXISTS)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 已购门槛
	purchased, err := s.purchases.HasDeliveredItem(ctx, principal.UserID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, e.New(e.ERROR_REVIEW_NOT_PURCHASED, 403)
	}

	review := &model.Review{
		UserID:    principal.UserID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.store.CreateReviewTx(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview 删除评价，本人或admin
func (s *ReviewService) DeleteReview(ctx context.Context, principal model.Principal, reviewID int64) error {
	review, err := s.store.GetReviewByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e.NotFound(e.ERROR_REVIEW_NOT_EXISTS)
		}
		return err
	}

	if review.UserID != principal.UserID && !principal.IsAdmin() {
		return e.NotFound(e.ERROR_REVIEW_NOT_EXISTS)
	}

	return s.store.DeleteReviewTx(ctx, review)
}

// ListReviews 商品评价分页
func (s *ReviewService) ListReviews(ctx context.Context, productID int64, page, limit int) ([]*model.Review, int64, error) {
	return s.store.ListByProduct(ctx, productID, page, limit)
}
