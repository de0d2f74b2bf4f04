package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransportTransitionAllowed(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{TransportPending, TransportDispatched, true},
		{TransportPending, TransportCancelled, true},
		{TransportPending, TransportDelivered, false},
		{TransportDispatched, TransportDelivered, true},
		{TransportDispatched, TransportCancelled, true},
		{TransportDispatched, TransportPending, false},
		{TransportDelivered, TransportCancelled, false},
		{TransportDelivered, TransportPending, false},
		{TransportCancelled, TransportDispatched, false},
		{TransportPending, TransportPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, TransportTransitionAllowed(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusPending, DerivePaymentStatus(1000, nil))
	assert.Equal(t, PaymentStatusPending, DerivePaymentStatus(1000, []Payment{
		{AmountCents: 1000, Status: PaymentPending},
		{AmountCents: 1000, Status: PaymentFailed},
	}))
	assert.Equal(t, PaymentStatusPartial, DerivePaymentStatus(1000, []Payment{
		{AmountCents: 400, Status: PaymentPaid},
	}))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(1000, []Payment{
		{AmountCents: 600, Status: PaymentPaid},
		{AmountCents: 400, Status: PaymentPaid},
	}))
	// Overpayment still reads as paid.
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(1000, []Payment{
		{AmountCents: 1500, Status: PaymentPaid},
	}))
	// Zero-total orders with no paid payments stay pending.
	assert.Equal(t, PaymentStatusPending, DerivePaymentStatus(0, nil))
}
