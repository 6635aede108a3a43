package model

import "time"

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
	OrderStatusRefunded   OrderStatus = "REFUNDED"
)

// Valid 判断状态是否合法
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// orderTransitions 显式状态流转表
// 正向：PENDING→CONFIRMED→PROCESSING→SHIPPED→DELIVERED
// 取消：PENDING/CONFIRMED→CANCELLED；退款：非取消态均可→REFUNDED（vendor/admin覆盖）
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusRefunded},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusRefunded},
	OrderStatusDelivered:  {OrderStatusRefunded},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// CanTransitionTo 判断状态流转是否合法
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Cancelable 仅PENDING/CONFIRMED可由买家取消
func (s OrderStatus) Cancelable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// RevenueCounted 计入营收统计的状态集合
func (s OrderStatus) RevenueCounted() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// RevenueStatuses 供聚合查询的IN条件使用
var RevenueStatuses = []OrderStatus{
	OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
}

// Address 订单地址快照，下单时新建，不做复用或版本化
type Address struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64     `gorm:"not null;index" json:"user_id"`
	AddressType  string    `gorm:"size:20" json:"address_type"`
	FirstName    string    `gorm:"size:50;not null" json:"first_name"`
	LastName     string    `gorm:"size:50;not null" json:"last_name"`
	AddressLine1 string    `gorm:"size:255;not null" json:"address_line1"`
	AddressLine2 string    `gorm:"size:255" json:"address_line2"`
	City         string    `gorm:"size:100;not null" json:"city"`
	State        string    `gorm:"size:100;not null" json:"state"`
	PostalCode   string    `gorm:"size:20;not null" json:"postal_code"`
	Country      string    `gorm:"size:100;not null" json:"country"`
	Phone        string    `gorm:"size:20" json:"phone"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (*Address) TableName() string {
	return "addresses"
}

// Order 订单模型
type Order struct {
	ID                int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber       string      `gorm:"size:40;not null;uniqueIndex" json:"order_number"`
	UserID            int64       `gorm:"not null;index" json:"user_id"`
	Status            OrderStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	TotalCents        int64       `gorm:"not null" json:"total_cents"`
	ShippingAddressID int64       `gorm:"not null" json:"shipping_address_id"`
	BillingAddressID  int64       `gorm:"not null" json:"billing_address_id"`
	Notes             string      `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Items           []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payment         *Payment    `gorm:"foreignKey:OrderID" json:"payment,omitempty"`
	ShippingAddress *Address    `gorm:"foreignKey:ShippingAddressID" json:"shipping_address,omitempty"`
	BillingAddress  *Address    `gorm:"foreignKey:BillingAddressID" json:"billing_address,omitempty"`
}

func (*Order) TableName() string {
	return "orders"
}

// OrderItem 订单行，下单时的数量与单价快照，创建后不再变更
type OrderItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64     `gorm:"not null;index" json:"order_id"`
	ProductID  int64     `gorm:"not null;index" json:"product_id"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	PriceCents int64     `gorm:"not null" json:"price_cents"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (*OrderItem) TableName() string {
	return "order_items"
}
