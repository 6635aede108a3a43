package service

import (
	"context"
	"errors"

	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/e"

	"gorm.io/gorm"
)

// CartStore 购物车存储能力
type CartStore interface {
	GetCartItems(ctx context.Context, userID int64) ([]*model.CartItem, error)
	GetCartItem(ctx context.Context, userID, itemID int64) (*model.CartItem, error)
	GetCartItemByProduct(ctx context.Context, userID, productID int64) (*model.CartItem, error)
	CreateCartItem(ctx context.Context, item *model.CartItem) error
	UpdateQuantity(ctx context.Context, itemID, quantity int64) error
	DeleteCartItem(ctx context.Context, userID, itemID int64) (int64, error)
	ClearCart(ctx context.Context, userID int64) error
}

// ProductReader 只读商品查询（直读数据库，库存校验不走缓存）
type ProductReader interface {
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
}

type CartService struct {
	cartStore CartStore
	products  ProductReader
}

func NewCartService(cartStore CartStore, products ProductReader) *CartService {
	return &CartService{
		cartStore: cartStore,
		products:  products,
	}
}

// CartView 购物车视图：行列表 + 小计（分）+ 总件数
type CartView struct {
	Items         []*model.CartItem `json:"items"`
	SubtotalCents int64             `json:"subtotal_cents"`
	TotalItems    int64             `json:"total_items"`
}

// GetCart 获取购物车，小计按有效单价（促销价优先）累加，无副作用
func (s *CartService) GetCart(ctx context.Context, principal model.Principal) (*CartView, error) {
	items, err := s.cartStore.GetCartItems(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: items}
	for _, item := range items {
		if item.Product != nil {
			view.SubtotalCents += item.Quantity * item.Product.EffectivePriceCents()
		}
		view.TotalItems += item.Quantity
	}
	return view, nil
}

// AddItem 加入购物车。已有同商品行时数量累加（非替换），并重新校验库存
func (s *CartService) AddItem(ctx context.Context, principal model.Principal, productID, quantity int64) (*model.CartItem, error) {
	productInfo, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		return nil, err
	}

	if !productInfo.IsActive {
		return nil, e.InvalidState(e.ERROR_PRODUCT_INACTIVE)
	}

	existing, err := s.cartStore.GetCartItemByProduct(ctx, principal.UserID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	newQuantity := quantity
	if existing != nil {
		newQuantity += existing.Quantity
	}
	if newQuantity > productInfo.Stock {
		return nil, e.InsufficientStock(productInfo.Name)
	}

	if existing != nil {
		if err := s.cartStore.UpdateQuantity(ctx, existing.ID, newQuantity); err != nil {
			return nil, err
		}
		existing.Quantity = newQuantity
		existing.Product = productInfo
		return existing, nil
	}

	item := &model.CartItem{
		UserID:    principal.UserID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cartStore.CreateCartItem(ctx, item); err != nil {
		return nil, err
	}
	item.Product = productInfo
	return item, nil
}

// UpdateItem 修改购物车行数量，校验归属与实时库存
func (s *CartService) UpdateItem(ctx context.Context, principal model.Principal, itemID, quantity int64) (*model.CartItem, error) {
	item, err := s.cartStore.GetCartItem(ctx, principal.UserID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_CART_ITEM_NOT_EXISTS)
		}
		return nil, err
	}

	productInfo, err := s.products.GetProductByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		return nil, err
	}
	if quantity > productInfo.Stock {
		return nil, e.InsufficientStock(productInfo.Name)
	}

	if err := s.cartStore.UpdateQuantity(ctx, item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	item.Product = productInfo
	return item, nil
}

// RemoveItem 删除购物车行，非本人条目视为不存在
func (s *CartService) RemoveItem(ctx context.Context, principal model.Principal, itemID int64) error {
	affected, err := s.cartStore.DeleteCartItem(ctx, principal.UserID, itemID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return e.NotFound(e.ERROR_CART_ITEM_NOT_EXISTS)
	}
	return nil
}

// Clear 清空购物车（幂等）
func (s *CartService) Clear(ctx context.Context, principal model.Principal) error {
	return s.cartStore.ClearCart(ctx, principal.UserID)
}
