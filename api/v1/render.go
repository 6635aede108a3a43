package v1

import (
	"net/http"
	"strconv"

	"github.com/CCDD2022/mall-system/api/middleware"
	"github.com/CCDD2022/mall-system/internal/model"
	"github.com/CCDD2022/mall-system/pkg/e"
	"github.com/CCDD2022/mall-system/pkg/logger"
	"github.com/gin-gonic/gin"
)

// OK 统一成功响应
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"code":    e.SUCCESS,
		"message": e.GetMsg(e.SUCCESS),
		"data":    data,
	})
}

// OKMsg 仅消息的成功响应
func OKMsg(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"code":    e.SUCCESS,
		"message": message,
	})
}

// Fail 统一失败响应。业务错误按携带的状态码返回，
// 其余一律500且不向客户端透出内部细节
func Fail(c *gin.Context, err error) {
	if be := e.AsBiz(err); be != nil {
		c.JSON(be.Status, gin.H{
			"code":    be.Code,
			"message": be.Msg,
		})
		return
	}

	logger.ErrorContext(c.Request.Context(), "请求处理失败",
		"path", c.FullPath(),
		"err", err,
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    e.ERROR,
		"message": e.GetMsg(e.ERROR),
	})
}

// BadParams 参数绑定失败响应
func BadParams(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    e.INVALID_PARAMS,
		"message": e.GetMsg(e.INVALID_PARAMS),
	})
}

// GetPrincipal 从gin context取认证主体
func GetPrincipal(c *gin.Context) model.Principal {
	v, _ := c.Get(middleware.PrincipalKey)
	p, _ := v.(model.Principal)
	return p
}

// Pagination 分页响应结构
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// parsePageLimit 解析分页参数，越界回退默认值
func parsePageLimit(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// parseID 解析路径中的数字ID
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		BadParams(c)
		return 0, false
	}
	return id, true
}
