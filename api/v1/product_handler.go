package v1

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/CCDD2022/mall-system/internal/dao"
	"github.com/CCDD2022/mall-system/internal/service"
	"github.com/gin-gonic/gin"
)

// ProductHandler 商品目录 HTTP 处理器
type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// RegisterPublicRoutes 公开目录路由（无需JWT）
func (h *ProductHandler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.GET("/categories", h.ListCategories)
}

// RegisterRoutes 商品写路由（需JWT，service内校验角色）
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/products", h.CreateProduct)
	rg.PUT("/products/:id", h.UpdateProduct)
	rg.DELETE("/products/:id", h.DeleteProduct)
	rg.POST("/categories", h.CreateCategory)
}

// GetProduct 获取单个商品信息
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := h.productService.GetProduct(ctx, productID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, product)
}

// ListProducts 获取商品列表
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, limit := parsePageLimit(c)

	filter := dao.ProductListFilter{}
	if v, err := strconv.ParseInt(c.Query("category_id"), 10, 64); err == nil {
		filter.CategoryID = v
	}
	if v, err := strconv.ParseInt(c.Query("vendor_id"), 10, 64); err == nil {
		filter.VendorID = v
	}
	// available=1 仅返回上架且有库存的商品
	filter.OnlyActive = c.Query("available") == "1"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	products, total, err := h.productService.ListProducts(ctx, page, limit, filter)
	if err != nil {
		Fail(c, err)
		return
	}

	OK(c, http.StatusOK, gin.H{
		"products":   products,
		"pagination": Pagination{Page: page, Limit: limit, Total: total},
	})
}

type createProductRequest struct {
	CategoryID     int64  `json:"category_id" binding:"required"`
	Name           string `json:"name" binding:"required,max=100"`
	Description    string `json:"description"`
	PriceCents     int64  `json:"price_cents" binding:"required,gt=0"`
	SalePriceCents *int64 `json:"sale_price_cents" binding:"omitempty,gt=0"`
	Stock          int64  `json:"stock" binding:"gte=0"`
	ImageURL       string `json:"image_url" binding:"omitempty,max=255"`
}

// CreateProduct 创建商品（vendor/admin）
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadParams(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := h.productService.CreateProduct(ctx, GetPrincipal(c), service.CreateProductInput{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Description:    req.Description,
		PriceCents:     req.PriceCents,
		SalePriceCents: req.SalePriceCents,
		Stock:          req.Stock,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, product)
}

type updateProductRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=100"`
	Description    *string `json:"description"`
	PriceCents     *int64  `json:"price_cents" binding:"omitempty,gt=0"`
	SalePriceCents *int64  `json:"sale_price_cents" binding:"omitempty,gt=0"`
	Stock          *int64  `json:"stock" binding:"omitempty,gte=0"`
	IsActive       *bool   `json:"is_active"`
	ImageURL       *string `json:"image_url" binding:"omitempty,max=255"`
	CategoryID     *int64  `json:"category_id"`
}

// UpdateProduct 更新商品
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadParams(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	product, err := h.productService.UpdateProduct(ctx, GetPrincipal(c), productID, service.UpdateProductInput{
		Name:           req.Name,
		Description:    req.Description,
		PriceCents:     req.PriceCents,
		SalePriceCents: req.SalePriceCents,
		Stock:          req.Stock,
		IsActive:       req.IsActive,
		ImageURL:       req.ImageURL,
		CategoryID:     req.CategoryID,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, product)
}

// DeleteProduct 删除商品
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, GetPrincipal(c), productID); err != nil {
		Fail(c, err)
		return
	}
	OKMsg(c, "商品已删除")
}

type createCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// CreateCategory 创建分类（仅admin）
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadParams(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	category, err := h.productService.CreateCategory(ctx, GetPrincipal(c), req.Name, req.Description)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusCreated, category)
}

// ListCategories 获取分类列表
func (h *ProductHandler) ListCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	categories, err := h.productService.ListCategories(ctx)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, http.StatusOK, categories)
}
