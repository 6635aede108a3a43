package e

// 错误码定义
const (
	SUCCESS        = 0
	ERROR          = 1
	INVALID_PARAMS = 2

	ERROR_AUTH_CHECK_TOKEN_FAIL    = 10001
	ERROR_AUTH_CHECK_TOKEN_TIMEOUT = 10002
	ERROR_AUTH_TOKEN               = 10003
	ERROR_AUTH                     = 10004
	ERROR_FORBIDDEN                = 10005

	ERROR_USER_EXISTS     = 20001
	ERROR_USER_NOT_EXISTS = 20002
	ERROR_PASSWORD        = 20003

	ERROR_PRODUCT_NOT_EXISTS  = 30001
	ERROR_STOCK_NOT_ENOUGH    = 30002
	ERROR_PRODUCT_INACTIVE    = 30003
	ERROR_CATEGORY_NOT_EXISTS = 30004

	ERROR_CART_ITEM_NOT_EXISTS = 40001
	ERROR_CART_EMPTY           = 40002

	ERROR_ORDER_NOT_EXISTS     = 50001
	ERROR_ORDER_STATUS_CHANGED = 50002
	ERROR_ORDER_NOT_CANCELABLE = 50003
	ERROR_ORDER_BAD_TRANSITION = 50004
	ERROR_CHECKOUT_IN_PROGRESS = 50005
	ERROR_PAYMENT_NOT_EXISTS   = 50006

	ERROR_REVIEW_EXISTS        = 60001
	ERROR_REVIEW_NOT_PURCHASED = 60002
	ERROR_REVIEW_NOT_EXISTS    = 60003
	ERROR_WISHLIST_NOT_EXISTS  = 60004
	ERROR_WISHLIST_EXISTS      = 60005
	ERROR_ALREADY_IN_CART      = 60006
)

var MsgFlags = map[int]string{
	SUCCESS:        "成功",
	ERROR:          "失败",
	INVALID_PARAMS: "请求参数错误",

	ERROR_AUTH_CHECK_TOKEN_FAIL:    "Token验证失败",
	ERROR_AUTH_CHECK_TOKEN_TIMEOUT: "Token已超时",
	ERROR_AUTH_TOKEN:               "Token生成失败",
	ERROR_AUTH:                     "认证失败",
	ERROR_FORBIDDEN:                "无权执行该操作",

	ERROR_USER_EXISTS:     "用户已存在",
	ERROR_USER_NOT_EXISTS: "用户不存在",
	ERROR_PASSWORD:        "密码错误",

	ERROR_PRODUCT_NOT_EXISTS:  "商品不存在",
	ERROR_STOCK_NOT_ENOUGH:    "库存不足",
	ERROR_PRODUCT_INACTIVE:    "商品已下架",
	ERROR_CATEGORY_NOT_EXISTS: "分类不存在",

	ERROR_CART_ITEM_NOT_EXISTS: "购物车条目不存在",
	ERROR_CART_EMPTY:           "购物车为空",

	ERROR_ORDER_NOT_EXISTS:     "订单不存在",
	ERROR_ORDER_STATUS_CHANGED: "订单状态已变更",
	ERROR_ORDER_NOT_CANCELABLE: "当前状态不可取消",
	ERROR_ORDER_BAD_TRANSITION: "非法的订单状态流转",
	ERROR_CHECKOUT_IN_PROGRESS: "下单处理中，请勿重复提交",
	ERROR_PAYMENT_NOT_EXISTS:   "支付记录不存在",

	ERROR_REVIEW_EXISTS:        "已评价过该商品",
	ERROR_REVIEW_NOT_PURCHASED: "仅限已完成订单的买家评价",
	ERROR_REVIEW_NOT_EXISTS:    "评价不存在",
	ERROR_WISHLIST_NOT_EXISTS:  "收藏不存在",
	ERROR_WISHLIST_EXISTS:      "已收藏该商品",
	ERROR_ALREADY_IN_CART:      "商品已在购物车中",
}

func GetMsg(code int) string {
	msg, ok := MsgFlags[code]
	if ok {
		return msg
	}
	return MsgFlags[ERROR]
}
