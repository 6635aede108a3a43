package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type ProductDao struct {
	db       *gorm.DB
	redis    redis.UniversalClient
	cacheTTL time.Duration
}

func NewProductDao(db *gorm.DB, rdb redis.UniversalClient, cacheTTL time.Duration) *ProductDao {
	return &ProductDao{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
	}
}

func productCacheKey(id int64) string {
	return fmt.Sprintf("mall:product:%d", id)
}

// GetProductByID 根据ID获取商品（直读数据库，供业务校验使用）
func (d *ProductDao) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := d.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductCached 商品详情读缓存，未命中回源并写入
// 库存等实时字段以数据库为准，缓存仅服务于目录读流量
func (d *ProductDao) GetProductCached(ctx context.Context, id int64) (*model.Product, error) {
	if d.redis != nil {
		if raw, err := d.redis.Get(ctx, productCacheKey(id)).Bytes(); err == nil {
			var p model.Product
			if jErr := json.Unmarshal(raw, &p); jErr == nil {
				return &p, nil
			}
		}
	}

	p, err := d.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if d.redis != nil {
		if raw, jErr := json.Marshal(p); jErr == nil {
			if sErr := d.redis.Set(ctx, productCacheKey(id), raw, d.cacheTTL).Err(); sErr != nil {
				logger.Warn("商品缓存写入失败", "product_id", id, "err", sErr)
			}
		}
	}
	return p, nil
}

// InvalidateCache 商品写操作后删除缓存
func (d *ProductDao) InvalidateCache(ctx context.Context, id int64) {
	if d.redis == nil {
		return
	}
	if err := d.redis.Del(ctx, productCacheKey(id)).Err(); err != nil {
		logger.Warn("商品缓存删除失败", "product_id", id, "err", err)
	}
}

// CreateProduct 创建商品
func (d *ProductDao) CreateProduct(ctx context.Context, p *model.Product) (int64, error) {
	if err := d.db.WithContext(ctx).Create(p).Error; err != nil {
		return 0, err
	}
	return p.ID, nil
}

// UpdateProduct 部分字段更新
func (d *ProductDao) UpdateProduct(ctx context.Context, id int64, updates map[string]interface{}) error {
	err := d.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return err
	}
	d.InvalidateCache(ctx, id)
	return nil
}

// DeleteProductByID 删除商品
func (d *ProductDao) DeleteProductByID(ctx context.Context, id int64) error {
	if err := d.db.WithContext(ctx).Delete(&model.Product{}, id).Error; err != nil {
		return err
	}
	d.InvalidateCache(ctx, id)
	return nil
}

// ProductListFilter 列表筛选条件
type ProductListFilter struct {
	CategoryID int64
	VendorID   int64
	// onlyActive=true 时仅返回上架且有库存的商品
	OnlyActive bool
}

// ListProducts 分页查询商品列表
func (d *ProductDao) ListProducts(ctx context.Context, offset, limit int, filter ProductListFilter) ([]*model.Product, int64, error) {
	var products []*model.Product
	var total int64

	q := d.db.WithContext(ctx).Model(&model.Product{})
	if filter.CategoryID > 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.VendorID > 0 {
		q = q.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.OnlyActive {
		q = q.Where("is_active = ? AND stock > 0", true)
	}

	// 获取总数
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 获取分页数据
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

// CountActiveByVendor 统计商家上架商品数
func (d *ProductDao) CountActiveByVendor(ctx context.Context, vendorID int64) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Product{}).
		Where("vendor_id = ? AND is_active = ?", vendorID, true).
		Count(&count).Error
	return count, err
}

// UpdateRating 在事务内重算并写回商品均分
func UpdateRating(tx *gorm.DB, productID int64) error {
	type agg struct {
		Avg   float64
		Count int64
	}
	var a agg
	err := tx.Model(&model.Review{}).
		Select("COALESCE(AVG(rating),0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&a).Error
	if err != nil {
		return err
	}
	return tx.Model(&model.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating_avg":   a.Avg,
			"rating_count": a.Count,
		}).Error
}

// CreateCategory 创建分类
func (d *ProductDao) CreateCategory(ctx context.Context, c *model.Category) (int64, error) {
	if err := d.db.WithContext(ctx).Create(c).Error; err != nil {
		return 0, err
	}
	return c.ID, nil
}

// GetCategoryByID 根据ID获取分类
func (d *ProductDao) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	if err := d.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories 获取全部分类
func (d *ProductDao) ListCategories(ctx context.Context) ([]*model.Category, error) {
	var cs []*model.Category
	err := d.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&cs).Error
	return cs, err
}
