package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false}, // 不可跳级
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusDelivered, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, false}, // 备货后仅可退款
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusRefunded, true},
		{OrderStatusDelivered, OrderStatusRefunded, true},
		{OrderStatusDelivered, OrderStatusShipped, false}, // 不可回退
		{OrderStatusCancelled, OrderStatusPending, false}, // 终态
		{OrderStatusCancelled, OrderStatusRefunded, false},
		{OrderStatusRefunded, OrderStatusCancelled, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderStatusPending.Valid())
	assert.True(t, OrderStatusRefunded.Valid())
	assert.False(t, OrderStatus("UNKNOWN").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestOrderStatusCancelable(t *testing.T) {
	assert.True(t, OrderStatusPending.Cancelable())
	assert.True(t, OrderStatusConfirmed.Cancelable())
	assert.False(t, OrderStatusProcessing.Cancelable())
	assert.False(t, OrderStatusShipped.Cancelable())
	assert.False(t, OrderStatusCancelled.Cancelable())
}

func TestRevenueCounted(t *testing.T) {
	assert.False(t, OrderStatusPending.RevenueCounted())
	assert.True(t, OrderStatusConfirmed.RevenueCounted())
	assert.True(t, OrderStatusDelivered.RevenueCounted())
	assert.False(t, OrderStatusCancelled.RevenueCounted())
	assert.False(t, OrderStatusRefunded.RevenueCounted())

	// IN条件集合与谓词保持一致
	for _, s := range RevenueStatuses {
		assert.True(t, s.RevenueCounted())
	}
}

func TestRoleChecks(t *testing.T) {
	assert.True(t, RoleVendor.CanManageOrders())
	assert.True(t, RoleAdmin.CanManageOrders())
	assert.False(t, RoleUser.CanManageOrders())
	assert.False(t, Role("ghost").Valid())

	assert.True(t, Principal{Role: RoleAdmin}.IsAdmin())
	assert.False(t, Principal{Role: RoleVendor}.IsAdmin())
}

func TestEffectivePriceCents(t *testing.T) {
	p := &Product{PriceCents: 1000}
	assert.Equal(t, int64(1000), p.EffectivePriceCents())

	sale := int64(750)
	p.SalePriceCents = &sale
	assert.Equal(t, int64(750), p.EffectivePriceCents())
}
