package service

import (
	"context"
	"errors"

	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/e"

	"gorm.io/gorm"
)

// WishlistStore 收藏存储能力
type WishlistStore interface {
	GetItems(ctx context.Context, userID int64) ([]*model.WishlistItem, error)
	GetItem(ctx context.Context, userID, productID int64) (*model.WishlistItem, error)
	CreateItem(ctx context.Context, item *model.WishlistItem) error
	DeleteItem(ctx context.Context, userID, productID int64) (int64, error)
	MoveToCartTx(ctx context.Context, userID, productID int64) error
}

// CartReader 购物车只读查询（移入购物车前的查重）
type CartReader interface {
	GetCartItemByProduct(ctx context.Context, userID, productID int64) (*model.CartItem, error)
}

type WishlistService struct {
	store    WishlistStore
	cart     CartReader
	products ProductReader
}

func NewWishlistService(store WishlistStore, cart CartReader, products ProductReader) *WishlistService {
	return &WishlistService{
		store:    store,
		cart:     cart,
		products: products,
	}
}

// List 收藏列表
func (s *WishlistService) List(ctx context.Context, principal model.Principal) ([]*model.WishlistItem, error) {
	return s.store.GetItems(ctx, principal.UserID)
}

// Add 添加收藏
func (s *WishlistService) Add(ctx context.Context, principal model.Principal, productID int64) (*model.WishlistItem, error) {
	productInfo, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		return nil, err
	}

	if _, err := s.store.GetItem(ctx, principal.UserID, productID); err == nil {
		return nil, e.InvalidState(e.ERROR_WISHLIST_EXISTS)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &model.WishlistItem{
		UserID:    principal.UserID,
		ProductID: productID,
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	item.Product = productInfo
	return item, nil
}

// Remove 取消收藏
func (s *WishlistService) Remove(ctx context.Context, principal model.Principal, productID int64) error {
	affected, err := s.store.DeleteItem(ctx, principal.UserID, productID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return e.NotFound(e.ERROR_WISHLIST_NOT_EXISTS)
	}
	return nil
}

// MoveToCart 收藏移入购物车（数量1）。
// 前置：已收藏、购物车中没有该商品、商品有库存；
// 新建购物车行与删除收藏由dao层单事务保证同生共死
func (s *WishlistService) MoveToCart(ctx context.Context, principal model.Principal, productID int64) error {
	if _, err := s.store.GetItem(ctx, principal.UserID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e.NotFound(e.ERROR_WISHLIST_NOT_EXISTS)
		}
		return err
	}

	if _, err := s.cart.GetCartItemByProduct(ctx, principal.UserID, productID); err == nil {
		return e.InvalidState(e.ERROR_ALREADY_IN_CART)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	productInfo, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return e.NotFound(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		return err
	}
	if productInfo.Stock <= 0 {
		return e.InvalidState(e.ERROR_STOCK_NOT_ENOUGH)
	}

	return s.store.MoveToCartTx(ctx, principal.UserID, productID)
}
