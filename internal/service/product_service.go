package service

import (
	"context"
	"errors"

	"github.com/CCDD2022/mall-system/internal/dao"
	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/e"

	"gorm.io/gorm"
)

// ProductStore 目录存储能力
type ProductStore interface {
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
	GetProductCached(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) (int64, error)
	UpdateProduct(ctx context.Context, id int64, updates map[string]interface{}) error
	DeleteProductByID(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, offset, limit int, filter dao.ProductListFilter) ([]*model.Product, int64, error)
	CreateCategory(ctx context.Context, c *model.Category) (int64, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	ListCategories(ctx context.Context) ([]*model.Category, error)
}

type ProductService struct {
	store ProductStore
}

func NewProductService(store ProductStore) *ProductService {
	return &ProductService{
		store: store,
	}
}

// GetProduct 获取商品详情（走读缓存）
func (s *ProductService) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	productInfo, err := s.store.GetProductCached(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		return nil, err
	}
	return productInfo, nil
}

// ListProducts 分页查询商品列表
func (s *ProductService) ListProducts(ctx context.Context, page, limit int, filter dao.ProductListFilter) ([]*model.Product, int64, error) {
	offset := (page - 1) * limit
	products, total, err := s.store.ListProducts(ctx, offset, limit, filter)
	if err != nil {
		return nil, 0, err
	}
	if int64(offset) >= total {
		return []*model.Product{}, total, nil
	}
	return products, total, nil
}

// CreateProductInput 创建商品参数
type CreateProductInput struct {
	CategoryID     int64
	Name           string
	Description    string
	PriceCents     int64
	SalePriceCents *int64
	Stock          int64
	ImageURL       string
}

// CreateProduct 创建商品（vendor/admin），归属到操作者名下
func (s *ProductService) CreateProduct(ctx context.Context, principal model.Principal, input CreateProductInput) (*model.Product, error) {
	if !principal.Role.CanManageOrders() {
		return nil, e.Forbidden()
	}

	// 分类必须存在
	if _, err := s.store.GetCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_CATEGORY_NOT_EXISTS)
		}
		return nil, err
	}

	productModel := &model.Product{
		VendorID:       principal.UserID,
		CategoryID:     input.CategoryID,
		Name:           input.Name,
		Description:    input.Description,
		PriceCents:     input.PriceCents,
		SalePriceCents: input.SalePriceCents,
		Stock:          input.Stock,
		IsActive:       true,
		ImageURL:       input.ImageURL,
	}

	if _, err := s.store.CreateProduct(ctx, productModel); err != nil {
		return nil, err
	}

	return productModel, nil
}

// UpdateProductInput 更新商品参数，nil字段不更新
type UpdateProductInput struct {
	Name           *string
	Description    *string
	PriceCents     *int64
	SalePriceCents *int64
	Stock          *int64
	IsActive       *bool
	ImageURL       *string
	CategoryID     *int64
}

// UpdateProduct 更新商品，vendor仅能改自己的商品
func (s *ProductService) UpdateProduct(ctx context.Context, principal model.Principal, productID int64, input UpdateProductInput) (*model.Product, error) {
	productInfo, err := s.authorizeProductWrite(ctx, principal, productID)
	if err != nil {
		return nil, err
	}

	// 构建更新字段
	updates := make(map[string]interface{})
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.PriceCents != nil {
		updates["price_cents"] = *input.PriceCents
	}
	if input.SalePriceCents != nil {
		updates["sale_price_cents"] = *input.SalePriceCents
	}
	if input.Stock != nil {
		updates["stock"] = *input.Stock
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if input.CategoryID != nil {
		if _, err := s.store.GetCategoryByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, e.NotFound(e.ERROR_CATEGORY_NOT_EXISTS)
			}
			return nil, err
		}
		updates["category_id"] = *input.CategoryID
	}

	if len(updates) == 0 {
		return productInfo, nil
	}

	if err := s.store.UpdateProduct(ctx, productID, updates); err != nil {
		return nil, err
	}

	return s.store.GetProductByID(ctx, productID)
}

// DeleteProduct 删除商品，vendor仅能删自己的商品
func (s *ProductService) DeleteProduct(ctx context.Context, principal model.Principal, productID int64) error {
	if _, err := s.authorizeProductWrite(ctx, principal, productID); err != nil {
		return err
	}
	return s.store.DeleteProductByID(ctx, productID)
}

// authorizeProductWrite 商品写操作的归属校验
func (s *ProductService) authorizeProductWrite(ctx context.Context, principal model.Principal, productID int64) (*model.Product, error) {
	if !principal.Role.CanManageOrders() {
		return nil, e.Forbidden()
	}

	productInfo, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_PRODUCT_NOT_EXISTS)
		}
		return nil, err
	}

	if !principal.IsAdmin() && productInfo.VendorID != principal.UserID {
		return nil, e.Forbidden()
	}
	return productInfo, nil
}

// CreateCategory 创建分类（仅admin）
func (s *ProductService) CreateCategory(ctx context.Context, principal model.Principal, name, description string) (*model.Category, error) {
	if !principal.IsAdmin() {
		return nil, e.Forbidden()
	}

	categoryModel := &model.Category{
		Name:        name,
		Description: description,
		IsActive:    true,
	}
	if _, err := s.store.CreateCategory(ctx, categoryModel); err != nil {
		return nil, err
	}
	return categoryModel, nil
}

// ListCategories 获取分类列表
func (s *ProductService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return s.store.ListCategories(ctx)
}
