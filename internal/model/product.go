package model

import (
	"time"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	VendorID    int64  `gorm:"not null;index" json:"vendor_id"`
	CategoryID  int64  `gorm:"not null;index" json:"category_id"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// 金额统一使用分，避免浮点舍入漂移
	PriceCents     int64      `gorm:"not null" json:"price_cents"`
	SalePriceCents *int64     `json:"sale_price_cents"`
	Stock          int64      `gorm:"not null;default:0" json:"stock"`
	IsActive       bool       `gorm:"not null;default:true;index" json:"is_active"`
	ImageURL       string     `gorm:"size:255" json:"image_url"`
	RatingAvg      float64    `gorm:"not null;default:0" json:"rating_avg"`
	RatingCount    int64      `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Product) TableName() string {
	return "products"
}

// EffectivePriceCents 有效单价：有促销价取促销价
func (p *Product) EffectivePriceCents() int64 {
	if p.SalePriceCents != nil {
		return *p.SalePriceCents
	}
	return p.PriceCents
}

type Category struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Category) TableName() string {
	return "categories"
}
