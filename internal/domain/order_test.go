package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusProcessing, OrderStatusInTransit, true},
		{OrderStatusInTransit, OrderStatusDelivered, true},

		// cancellation from any non-terminal state
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusInTransit, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusRefunded, OrderStatusCancelled, false},

		// refund only after delivery or cancellation
		{OrderStatusDelivered, OrderStatusRefunded, true},
		{OrderStatusCancelled, OrderStatusRefunded, true},
		{OrderStatusPending, OrderStatusRefunded, false},
		{OrderStatusInTransit, OrderStatusRefunded, false},

		// no skipping or going backwards
		{OrderStatusPending, OrderStatusInTransit, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusDelivered, OrderStatusProcessing, false},
		{OrderStatusInTransit, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusPending, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatus_IsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusProcessing.IsTerminal())
	assert.False(t, OrderStatusInTransit.IsTerminal())
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.True(t, OrderStatusRefunded.IsTerminal())
}

func TestToOrderStatus(t *testing.T) {
	for _, valid := range []string{"pending", "processing", "in_transit", "delivered", "cancelled", "refunded"} {
		status, err := ToOrderStatus(valid)
		assert.NoError(t, err, valid)
		assert.Equal(t, OrderStatus(valid), status)
	}

	_, err := ToOrderStatus("shipped")
	assert.Error(t, err)
}

func TestToShippingMethod(t *testing.T) {
	for _, valid := range []string{"standard", "express", "overnight", "pickup"} {
		method, err := ToShippingMethod(valid)
		assert.NoError(t, err, valid)
		assert.Equal(t, ShippingMethod(valid), method)
	}

	_, err := ToShippingMethod("drone")
	assert.Error(t, err)
}
