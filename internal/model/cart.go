package model

import "time"

// CartItem 购物车行，(user_id, product_id) 唯一
type CartItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_cart_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:uk_cart_user_product" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (*CartItem) TableName() string {
	return "cart_items"
}

// WishlistItem 收藏条目，(user_id, product_id) 唯一
type WishlistItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_wish_user_product" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:uk_wish_user_product" json:"product_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (*WishlistItem) TableName() string {
	return "wishlist_items"
}
