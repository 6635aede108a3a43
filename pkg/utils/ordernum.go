package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const base36Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNumber 生成订单号：ORD-<毫秒时间戳>-<9位base36随机后缀>
// 冲突概率可忽略，不做重试；orders.order_number 上仍有唯一索引兜底
func GenerateOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), randBase36(9))
}

func randBase36(n int) string {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(base36Chars)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand 失败时退化为时间噪声
			idx = big.NewInt(time.Now().UnixNano() % int64(len(base36Chars)))
		}
		buf[i] = base36Chars[idx.Int64()]
	}
	return string(buf)
}
