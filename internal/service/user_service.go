package service

import (
	"context"
	"errors"

	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/e"
	"github.com/CCDD2022/mall-system/pkg/utils"

	"gorm.io/gorm"
)

// UserStore 用户资料存储能力
type UserStore interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	UpdateUser(ctx context.Context, userID int64, updates map[string]interface{}) error
	UpdateUserPassword(ctx context.Context, userID int64, newPasswordHash string) error
}

type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

// GetProfile 获取本人资料
func (s *UserService) GetProfile(ctx context.Context, principal model.Principal) (*model.User, error) {
	userInfo, err := s.store.GetUserByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, e.NotFound(e.ERROR_USER_NOT_EXISTS)
		}
		return nil, err
	}
	return userInfo, nil
}

// UpdateProfile 更新资料（仅 email 和 phone）
func (s *UserService) UpdateProfile(ctx context.Context, principal model.Principal, email, phone string) (*model.User, error) {
	userInfo, err := s.GetProfile(ctx, principal)
	if err != nil {
		return nil, err
	}

	// 构建更新字段
	updates := map[string]interface{}{}
	if email != "" && userInfo.Email != email {
		updates["email"] = email
	}
	if phone != "" && userInfo.Phone != phone {
		updates["phone"] = phone
	}

	// 没有更新字段则直接返回
	if len(updates) == 0 {
		return userInfo, nil
	}

	if err := s.store.UpdateUser(ctx, principal.UserID, updates); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, principal)
}

// ChangePassword 修改密码，需校验旧密码
func (s *UserService) ChangePassword(ctx context.Context, principal model.Principal, oldPassword, newPassword string) error {
	userInfo, err := s.GetProfile(ctx, principal)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(oldPassword, userInfo.PasswordHash) {
		return e.Unauthorized(e.ERROR_PASSWORD)
	}

	if len(newPassword) < 8 {
		return e.Newf(e.INVALID_PARAMS, 400, "新密码长度至少8位")
	}

	newHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.store.UpdateUserPassword(ctx, principal.UserID, newHash)
}
