package model

import (
	"time"
)

// Role 闭合角色枚举
type Role string

const (
	RoleUser   Role = "user"
	RoleVendor Role = "vendor"
	RoleAdmin  Role = "admin"
)

// Valid 判断角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// CanManageOrders 集中收拢"vendor或admin"判定，避免各处重复布尔检查
func (r Role) CanManageOrders() bool {
	return r == RoleVendor || r == RoleAdmin
}

// Principal 认证主体，由JWT中间件解析后显式传入各service方法
type Principal struct {
	UserID   int64
	Username string
	Role     Role
}

// IsAdmin admin拥有跨用户读取与管理能力
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Email        string    `gorm:"size:100" json:"email"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Role         Role      `gorm:"size:20;not null;default:user" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*User) TableName() string {
	return "users"
}
