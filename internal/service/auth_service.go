package service

import (
	"context"
	"errors"

	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/e"
	"github.com/CCDD2022/mall-system/pkg/utils"

	"gorm.io/gorm"
)

// AuthStore 认证依赖的存储能力
type AuthStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UserExists(ctx context.Context, username string) (bool, error)
}

type AuthService struct {
	store   AuthStore
	jwtUtil *utils.JWTUtil
}

func NewAuthService(store AuthStore, jwtUtil *utils.JWTUtil) *AuthService {
	return &AuthService{
		store:   store,
		jwtUtil: jwtUtil,
	}
}

// RegisterInput 注册参数
type RegisterInput struct {
	Username string
	Password string
	Email    string
	Phone    string
}

// Register 注册用户，角色固定为普通用户
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	// 检查用户是否存在
	exists, err := s.store.UserExists(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, e.InvalidState(e.ERROR_USER_EXISTS)
	}

	if len(input.Password) < 8 {
		return nil, e.Newf(e.INVALID_PARAMS, 400, "密码长度至少8位")
	}

	// 加密密码
	passwordHash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	newUser := &model.User{
		Username:     input.Username,
		PasswordHash: passwordHash,
		Email:        input.Email,
		Phone:        input.Phone,
		Role:         model.RoleUser,
	}

	// 调用dao层执行数据库操作
	if err := s.store.CreateUser(ctx, newUser); err != nil {
		return nil, err
	}

	return newUser, nil
}

// Login 验证凭证并签发token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	dbUser, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, e.NotFound(e.ERROR_USER_NOT_EXISTS)
		}
		return "", nil, err
	}

	// 验证密码
	if !utils.CheckPassword(password, dbUser.PasswordHash) {
		return "", nil, e.Unauthorized(e.ERROR_PASSWORD)
	}

	// 生成 token
	token, err := s.jwtUtil.GenerateToken(dbUser.ID, dbUser.Username, string(dbUser.Role))
	if err != nil {
		return "", nil, e.New(e.ERROR_AUTH_TOKEN, 500)
	}

	return token, dbUser, nil
}
