package model

import "time"

// Review 商品评价，(user_id, product_id) 唯一，仅限已送达订单的买家
type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_review_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:uk_review_user_product" json:"product_id"`
	Rating    int       `gorm:"not null" json:"rating"` // 1~5
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Review) TableName() string {
	return "reviews"
}
