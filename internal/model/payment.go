package model

import "time"

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// Payment 支付记录，与订单1:1，随订单创建，状态由支付确认/退款流程驱动
type Payment struct {
	ID            int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID       int64         `gorm:"not null;uniqueIndex" json:"order_id"`
	AmountCents   int64         `gorm:"not null" json:"amount_cents"`
	Method        string        `gorm:"size:30;not null" json:"method"`
	Status        PaymentStatus `gorm:"size:20;not null;default:PENDING" json:"status"`
	TransactionID string        `gorm:"size:64" json:"transaction_id"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Payment) TableName() string {
	return "payments"
}
