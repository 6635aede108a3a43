package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/e"
	"github.com/CCDD2022/mall-system/pkg/utils"
	"github.com/gin-gonic/gin"
)

// PrincipalKey gin context中认证主体的键名
const PrincipalKey = "principal"

// JWTAuthMiddleware JWT认证中间件，解析claims并注入Principal
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    e.ERROR_AUTH,
				"message": e.GetMsg(e.ERROR_AUTH),
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    e.ERROR_AUTH,
				"message": "Invalid Authorization format",
			})
			c.Abort()
			return
		}

		claims, err := jwtUtil.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, utils.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"code":    e.ERROR_AUTH_CHECK_TOKEN_TIMEOUT,
					"message": e.GetMsg(e.ERROR_AUTH_CHECK_TOKEN_TIMEOUT),
				})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"code":    e.ERROR_AUTH_CHECK_TOKEN_FAIL,
					"message": e.GetMsg(e.ERROR_AUTH_CHECK_TOKEN_FAIL),
				})
			}
			c.Abort()
			return
		}

		role := model.Role(claims.Role)
		if !role.Valid() {
			role = model.RoleUser
		}

		// 注入认证主体，handler层显式传入service
		c.Set(PrincipalKey, model.Principal{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     role,
		})

		c.Next()
	}
}

// RequireOrderManager 限定vendor/admin角色的路由组
func RequireOrderManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(PrincipalKey)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    e.ERROR_AUTH,
				"message": e.GetMsg(e.ERROR_AUTH),
			})
			c.Abort()
			return
		}
		if !v.(model.Principal).Role.CanManageOrders() {
			c.JSON(http.StatusForbidden, gin.H{
				"code":    e.ERROR_FORBIDDEN,
				"message": e.GetMsg(e.ERROR_FORBIDDEN),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
