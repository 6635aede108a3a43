package e

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMsg(t *testing.T) {
	assert.Equal(t, "库存不足", GetMsg(ERROR_STOCK_NOT_ENOUGH))
	// 未知错误码回退到通用失败
	assert.Equal(t, MsgFlags[ERROR], GetMsg(-12345))
}

func TestBizErrorConstructors(t *testing.T) {
	nf := NotFound(ERROR_ORDER_NOT_EXISTS)
	assert.Equal(t, 404, nf.Status)
	assert.Equal(t, "订单不存在", nf.Msg)

	is := InvalidState(ERROR_CART_EMPTY)
	assert.Equal(t, 400, is.Status)

	fb := Forbidden()
	assert.Equal(t, 403, fb.Status)
	assert.Equal(t, ERROR_FORBIDDEN, fb.Code)

	ua := Unauthorized(ERROR_PASSWORD)
	assert.Equal(t, 401, ua.Status)

	stock := InsufficientStock("机械键盘")
	assert.Equal(t, ERROR_STOCK_NOT_ENOUGH, stock.Code)
	assert.Contains(t, stock.Msg, "机械键盘")
}

func TestAsBiz(t *testing.T) {
	biz := NotFound(ERROR_PRODUCT_NOT_EXISTS)

	// 直接与包装后的错误均可提取
	require.NotNil(t, AsBiz(biz))
	wrapped := fmt.Errorf("handler: %w", biz)
	got := AsBiz(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ERROR_PRODUCT_NOT_EXISTS, got.Code)

	// 非业务错误返回nil
	assert.Nil(t, AsBiz(errors.New("boom")))
	assert.Nil(t, AsBiz(nil))
}
