package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/store"
)

func createTestReturn(t *testing.T, svc *Service) *domain.ReturnOrder {
	t.Helper()
	ret, err := svc.CreateReturn(asDealer("dlr-1"), domain.ReturnCreateRequest{
		WarehouseID: "wh-central",
		ItemID:      "itm-pipe-20",
		Quantity:    10,
		Reason:      "damaged in transit",
	})
	require.NoError(t, err)
	return ret
}

func TestCreateReturnStartsPendingWithoutInventoryEffect(t *testing.T) {
	svc := newTestService()

	ret := createTestReturn(t, svc)
	assert.Equal(t, domain.ReturnPending, ret.Status)
	assert.Equal(t, "dlr-1", ret.DealerID)
	assert.Equal(t, 100, quantity(t, svc, "wh-central", "itm-pipe-20"))
}

func TestApproveReturnRestocksOnce(t *testing.T) {
	svc := newTestService()
	ret := createTestReturn(t, svc)

	approved, err := svc.DecideReturn(asOwner(), ret.ID, domain.ReturnStatusRequest{Status: domain.ReturnApproved})
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnApproved, approved.Status)
	assert.Equal(t, 110, quantity(t, svc, "wh-central", "itm-pipe-20"))

	// Approving twice is an invalid transition, not a double restock.
	_, err = svc.DecideReturn(asOwner(), ret.ID, domain.ReturnStatusRequest{Status: domain.ReturnApproved})
	assert.ErrorIs(t, err, store.ErrInvalidState)
	assert.Equal(t, 110, quantity(t, svc, "wh-central", "itm-pipe-20"))
}

func TestRejectPendingReturnLeavesInventoryAlone(t *testing.T) {
	svc := newTestService()
	ret := createTestReturn(t, svc)

	rejected, err := svc.DecideReturn(asOwner(), ret.ID, domain.ReturnStatusRequest{Status: domain.ReturnRejected})
	require.NoError(t, err)
	assert.Equal(t, domain.ReturnRejected, rejected.Status)
	assert.Equal(t, 100, quantity(t, svc, "wh-central", "itm-pipe-20"))

	// A rejected return may still be approved later.
	_, err = svc.DecideReturn(asOwner(), ret.ID, domain.ReturnStatusRequest{Status: domain.ReturnApproved})
	require.NoError(t, err)
	assert.Equal(t, 110, quantity(t, svc, "wh-central", "itm-pipe-20"))
}

func TestUnapproveReversesRestockClampedAtZero(t *testing.T) {
	svc := newTestService()
	ret := createTestReturn(t, svc)

	_, err := svc.DecideReturn(asOwner(), ret.ID, domain.ReturnStatusRequest{Status: domain.ReturnApproved})
	require.NoError(t, err)
	assert.Equal(t, 110, quantity(t, svc, "wh-central", "itm-pipe-20"))

	// Drain the stock below the restocked amount, then flip to rejected:
	// the reversal clamps at zero instead of going negative.
	_, err = svc.AdjustInventory(asOwner(), domain.InventoryAdjustRequest{
		WarehouseID: "wh-central", ItemID: "itm-pipe-20", Quantity: 5, Mode: domain.AdjustSet,
	})
	require.NoError(t, err)

	_, err = svc.DecideReturn(asOwner(), ret.ID, domain.ReturnStatusRequest{Status: domain.ReturnRejected})
	require.NoError(t, err)
	assert.Equal(t, 0, quantity(t, svc, "wh-central", "itm-pipe-20"))
}

func TestDecideReturnRejectsPendingTarget(t *testing.T) {
	svc := newTestService()
	ret := createTestReturn(t, svc)

	_, err := svc.DecideReturn(asOwner(), ret.ID, domain.ReturnStatusRequest{Status: domain.ReturnPending})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestReturnDecisionScope(t *testing.T) {
	svc := newTestService()
	ret := createTestReturn(t, svc)

	// The requesting dealer cannot decide their own return.
	_, err := svc.DecideReturn(asDealer("dlr-1"), ret.ID, domain.ReturnStatusRequest{Status: domain.ReturnApproved})
	assert.ErrorIs(t, err, store.ErrAccessDenied)

	// A foreign warehouse cannot even see it.
	_, err = svc.DecideReturn(asWarehouse("wh-east"), ret.ID, domain.ReturnStatusRequest{Status: domain.ReturnApproved})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The owning warehouse may decide.
	_, err = svc.DecideReturn(asWarehouse("wh-central"), ret.ID, domain.ReturnStatusRequest{Status: domain.ReturnApproved})
	require.NoError(t, err)
}

func TestReturnScopeOnReadsAndLists(t *testing.T) {
	svc := newTestService()
	ret := createTestReturn(t, svc)

	_, err := svc.GetReturn(asDealer("dlr-other"), ret.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	mine, err := svc.ListReturns(asDealer("dlr-1"))
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.ListReturns(asDealer("dlr-other"))
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestCreateReturnRequiresParty(t *testing.T) {
	svc := newTestService()

	// Owner-created returns must still name a dealer or salesman.
	_, err := svc.CreateReturn(asOwner(), domain.ReturnCreateRequest{
		WarehouseID: "wh-central",
		ItemID:      "itm-pipe-20",
		Quantity:    1,
		Reason:      "surplus",
	})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestCreateReturnValidation(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateReturn(asDealer("dlr-1"), domain.ReturnCreateRequest{
		WarehouseID: "wh-central", ItemID: "itm-pipe-20", Quantity: 0, Reason: "broken",
	})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.CreateReturn(asDealer("dlr-1"), domain.ReturnCreateRequest{
		WarehouseID: "wh-central", ItemID: "itm-pipe-20", Quantity: 1, Reason: "  ",
	})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.CreateReturn(asDealer("dlr-1"), domain.ReturnCreateRequest{
		WarehouseID: "wh-central", ItemID: "itm-ghost", Quantity: 1, Reason: "broken",
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
