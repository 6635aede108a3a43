package e

import (
	"errors"
	"fmt"
	"net/http"
)

// BizError 业务错误，携带错误码与HTTP状态，由handler层统一渲染
type BizError struct {
	Code   int
	Status int
	Msg    string
}

func (b *BizError) Error() string {
	return fmt.Sprintf("[%d] %s", b.Code, b.Msg)
}

// New 按错误码构造业务错误，消息取MsgFlags
func New(code, status int) *BizError {
	return &BizError{Code: code, Status: status, Msg: GetMsg(code)}
}

// Newf 按错误码构造业务错误并覆盖消息
func Newf(code, status int, format string, args ...any) *BizError {
	return &BizError{Code: code, Status: status, Msg: fmt.Sprintf(format, args...)}
}

// ========== 错误分类构造 ==========

// NotFound 资源不存在或不属于调用方
func NotFound(code int) *BizError {
	return New(code, http.StatusNotFound)
}

// InvalidState 当前实体状态下不允许该操作
func InvalidState(code int) *BizError {
	return New(code, http.StatusBadRequest)
}

// InsufficientStock 库存不足，带商品名便于定位是哪一行
func InsufficientStock(productName string) *BizError {
	return Newf(ERROR_STOCK_NOT_ENOUGH, http.StatusBadRequest, "商品「%s」库存不足", productName)
}

// Forbidden 角色或归属不满足
func Forbidden() *BizError {
	return New(ERROR_FORBIDDEN, http.StatusForbidden)
}

// Unauthorized 凭证缺失或无效
func Unauthorized(code int) *BizError {
	return New(code, http.StatusUnauthorized)
}

// AsBiz 提取业务错误；非业务错误返回nil
func AsBiz(err error) *BizError {
	var be *BizError
	if errors.As(err, &be) {
		return be
	}
	return nil
}
