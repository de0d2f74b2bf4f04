package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/store"
)

func TestPaymentStatusDerivation(t *testing.T) {
	svc := newTestService()
	order := createTestOrder(t, svc) // total 24500

	// A pending payment does not count toward paid.
	_, err := svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: 10000, Method: "bank_transfer", Status: domain.PaymentPending,
	})
	require.NoError(t, err)

	reloaded, err := svc.GetOrder(asOwner(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, reloaded.PaymentStatus)

	// A paid partial moves the order to partial.
	first, err := svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: 10000, Method: "cash", Status: domain.PaymentPaid,
	})
	require.NoError(t, err)

	reloaded, err = svc.GetOrder(asOwner(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPartial, reloaded.PaymentStatus)

	// Covering the total moves it to paid.
	_, err = svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: 14500, Method: "cash", Status: domain.PaymentPaid,
	})
	require.NoError(t, err)

	reloaded, err = svc.GetOrder(asOwner(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, reloaded.PaymentStatus)

	// Deleting a paid payment drops it back to partial.
	require.NoError(t, svc.DeletePayment(asOwner(), first.ID))

	reloaded, err = svc.GetOrder(asOwner(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPartial, reloaded.PaymentStatus)
}

func TestDeletingAllPaidPaymentsResetsToPending(t *testing.T) {
	svc := newTestService()
	order := createTestOrder(t, svc)

	payment, err := svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: 3000, Method: "cash", Status: domain.PaymentPaid,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePayment(asOwner(), payment.ID))

	reloaded, err := svc.GetOrder(asOwner(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, reloaded.PaymentStatus)
}

func TestFailedPaymentsNeverCount(t *testing.T) {
	svc := newTestService()
	order := createTestOrder(t, svc)

	_, err := svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: order.TotalCents, Method: "cheque", Status: domain.PaymentFailed,
	})
	require.NoError(t, err)

	reloaded, err := svc.GetOrder(asOwner(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, reloaded.PaymentStatus)
}

func TestUpdatePaymentReconcilesOrder(t *testing.T) {
	svc := newTestService()
	order := createTestOrder(t, svc)

	payment, err := svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: order.TotalCents, Method: "cash", Status: domain.PaymentPending,
	})
	require.NoError(t, err)

	paid := domain.PaymentPaid
	_, err = svc.UpdatePayment(asOwner(), payment.ID, domain.PaymentUpdateRequest{Status: &paid})
	require.NoError(t, err)

	reloaded, err := svc.GetOrder(asOwner(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, reloaded.PaymentStatus)
}

func TestOverrideThenReconcile(t *testing.T) {
	svc := newTestService()
	order := createTestOrder(t, svc)

	// Manual override sticks until the next payment mutation.
	overridden, err := svc.OverridePaymentStatus(asOwner(), order.ID, domain.PaymentStatusRequest{Status: domain.PaymentStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, overridden.PaymentStatus)

	_, err = svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: 100, Method: "cash", Status: domain.PaymentPaid,
	})
	require.NoError(t, err)

	reloaded, err := svc.GetOrder(asOwner(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPartial, reloaded.PaymentStatus,
		"payment mutation re-derives status from the payment set")
}

func TestPaymentWriteScope(t *testing.T) {
	svc := newTestService()
	order := createTestOrder(t, svc)

	// Dealer can see the order but not write payments.
	_, err := svc.RecordPayment(asDealer("dlr-1"), order.ID, domain.PaymentCreateRequest{
		AmountCents: 100, Method: "cash", Status: domain.PaymentPaid,
	})
	assert.ErrorIs(t, err, store.ErrAccessDenied)

	// Foreign warehouse cannot even see it.
	_, err = svc.RecordPayment(asWarehouse("wh-east"), order.ID, domain.PaymentCreateRequest{
		AmountCents: 100, Method: "cash", Status: domain.PaymentPaid,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Owning warehouse may.
	_, err = svc.RecordPayment(asWarehouse("wh-central"), order.ID, domain.PaymentCreateRequest{
		AmountCents: 100, Method: "cash", Status: domain.PaymentPaid,
	})
	require.NoError(t, err)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc := newTestService()
	order := createTestOrder(t, svc)

	_, err := svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: 0, Method: "cash", Status: domain.PaymentPaid,
	})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: 100, Method: "cash", Status: "settled",
	})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: 100, Method: "cash", Status: domain.PaymentPaid, DueDate: "not-a-date",
	})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestDeleteOrderRemovesItsPayments(t *testing.T) {
	svc := newTestService()
	order := createTestOrder(t, svc)

	payment, err := svc.RecordPayment(asOwner(), order.ID, domain.PaymentCreateRequest{
		AmountCents: 100, Method: "cash", Status: domain.PaymentPending,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(asOwner(), order.ID))

	_, err = svc.GetPayment(asOwner(), payment.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
