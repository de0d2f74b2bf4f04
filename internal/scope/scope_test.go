package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/store"
)

func TestOrderFilterByRole(t *testing.T) {
	assert.Equal(t, domain.OrderFilter{}, OrderFilter(domain.Actor{ID: "x", Role: domain.RoleOwner}))
	assert.Equal(t, domain.OrderFilter{WarehouseID: "wh-1"}, OrderFilter(domain.Actor{ID: "wh-1", Role: domain.RoleWarehouse}))
	assert.Equal(t, domain.OrderFilter{DealerID: "dlr-1"}, OrderFilter(domain.Actor{ID: "dlr-1", Role: domain.RoleDealer}))
	assert.Equal(t, domain.OrderFilter{SalesmanID: "slm-1"}, OrderFilter(domain.Actor{ID: "slm-1", Role: domain.RoleSalesman}))
}

func TestCanSeeOrder(t *testing.T) {
	order := domain.Order{WarehouseID: "wh-1", DealerID: "dlr-1", SalesmanID: "slm-1"}

	assert.True(t, CanSeeOrder(domain.Actor{Role: domain.RoleOwner}, order))
	assert.True(t, CanSeeOrder(domain.Actor{ID: "wh-1", Role: domain.RoleWarehouse}, order))
	assert.False(t, CanSeeOrder(domain.Actor{ID: "wh-2", Role: domain.RoleWarehouse}, order))
	assert.True(t, CanSeeOrder(domain.Actor{ID: "dlr-1", Role: domain.RoleDealer}, order))
	assert.False(t, CanSeeOrder(domain.Actor{ID: "dlr-2", Role: domain.RoleDealer}, order))
	assert.True(t, CanSeeOrder(domain.Actor{ID: "slm-1", Role: domain.RoleSalesman}, order))
	assert.False(t, CanSeeOrder(domain.Actor{ID: "slm-2", Role: domain.RoleSalesman}, order))
	assert.False(t, CanSeeOrder(domain.Actor{ID: "x", Role: "ghost"}, order))
}

func TestCheckInventoryRead(t *testing.T) {
	assert.NoError(t, CheckInventoryRead(domain.Actor{Role: domain.RoleOwner}, "wh-1"))
	assert.NoError(t, CheckInventoryRead(domain.Actor{ID: "wh-1", Role: domain.RoleWarehouse}, "wh-1"))
	assert.ErrorIs(t, CheckInventoryRead(domain.Actor{ID: "wh-1", Role: domain.RoleWarehouse}, "wh-2"), store.ErrNotFound)

	// Dealers and salesmen may check availability in any warehouse.
	assert.NoError(t, CheckInventoryRead(domain.Actor{ID: "dlr-1", Role: domain.RoleDealer}, "wh-1"))
	assert.NoError(t, CheckInventoryRead(domain.Actor{ID: "slm-1", Role: domain.RoleSalesman}, "wh-1"))
}

func TestCheckInventoryWrite(t *testing.T) {
	assert.NoError(t, CheckInventoryWrite(domain.Actor{Role: domain.RoleOwner}, "wh-1"))
	assert.NoError(t, CheckInventoryWrite(domain.Actor{ID: "wh-1", Role: domain.RoleWarehouse}, "wh-1"))
	assert.ErrorIs(t, CheckInventoryWrite(domain.Actor{ID: "wh-1", Role: domain.RoleWarehouse}, "wh-2"), store.ErrAccessDenied)
	assert.ErrorIs(t, CheckInventoryWrite(domain.Actor{ID: "dlr-1", Role: domain.RoleDealer}, "wh-1"), store.ErrAccessDenied)
}

func TestCheckTransportTransition(t *testing.T) {
	order := domain.Order{WarehouseID: "wh-1", DealerID: "dlr-1"}

	assert.NoError(t, CheckTransportTransition(domain.Actor{Role: domain.RoleOwner}, order, domain.TransportCancelled))
	assert.NoError(t, CheckTransportTransition(domain.Actor{ID: "wh-1", Role: domain.RoleWarehouse}, order, domain.TransportDispatched))

	// Foreign warehouse gets NotFound, not AccessDenied.
	assert.ErrorIs(t, CheckTransportTransition(domain.Actor{ID: "wh-2", Role: domain.RoleWarehouse}, order, domain.TransportDispatched), store.ErrNotFound)

	// Dealers may only mark their own orders delivered.
	assert.NoError(t, CheckTransportTransition(domain.Actor{ID: "dlr-1", Role: domain.RoleDealer}, order, domain.TransportDelivered))
	assert.ErrorIs(t, CheckTransportTransition(domain.Actor{ID: "dlr-1", Role: domain.RoleDealer}, order, domain.TransportCancelled), store.ErrAccessDenied)
	assert.ErrorIs(t, CheckTransportTransition(domain.Actor{ID: "dlr-2", Role: domain.RoleDealer}, order, domain.TransportDelivered), store.ErrNotFound)

	assert.ErrorIs(t, CheckTransportTransition(domain.Actor{ID: "slm-1", Role: domain.RoleSalesman}, order, domain.TransportDelivered), store.ErrAccessDenied)
}

func TestCheckOrderCreateBindsParties(t *testing.T) {
	dealerReq := domain.OrderCreateRequest{WarehouseID: "wh-1"}
	assert.NoError(t, CheckOrderCreate(domain.Actor{ID: "dlr-1", Role: domain.RoleDealer}, &dealerReq))
	assert.Equal(t, "dlr-1", dealerReq.DealerID)

	salesmanReq := domain.OrderCreateRequest{WarehouseID: "wh-1", DealerID: "dlr-1"}
	assert.NoError(t, CheckOrderCreate(domain.Actor{ID: "slm-1", Role: domain.RoleSalesman}, &salesmanReq))
	assert.Equal(t, "slm-1", salesmanReq.SalesmanID)

	noDealer := domain.OrderCreateRequest{WarehouseID: "wh-1"}
	assert.ErrorIs(t, CheckOrderCreate(domain.Actor{ID: "slm-1", Role: domain.RoleSalesman}, &noDealer), store.ErrValidation)

	foreign := domain.OrderCreateRequest{WarehouseID: "wh-2", DealerID: "dlr-1"}
	assert.ErrorIs(t, CheckOrderCreate(domain.Actor{ID: "wh-1", Role: domain.RoleWarehouse}, &foreign), store.ErrAccessDenied)
}

func TestCheckPaymentWriteAndReturnDecision(t *testing.T) {
	order := domain.Order{WarehouseID: "wh-1", DealerID: "dlr-1"}
	assert.NoError(t, CheckPaymentWrite(domain.Actor{Role: domain.RoleOwner}, order))
	assert.NoError(t, CheckPaymentWrite(domain.Actor{ID: "wh-1", Role: domain.RoleWarehouse}, order))
	assert.ErrorIs(t, CheckPaymentWrite(domain.Actor{ID: "wh-2", Role: domain.RoleWarehouse}, order), store.ErrNotFound)
	assert.ErrorIs(t, CheckPaymentWrite(domain.Actor{ID: "dlr-1", Role: domain.RoleDealer}, order), store.ErrAccessDenied)

	ret := domain.ReturnOrder{WarehouseID: "wh-1", DealerID: "dlr-1"}
	assert.NoError(t, CheckReturnDecision(domain.Actor{Role: domain.RoleOwner}, ret))
	assert.NoError(t, CheckReturnDecision(domain.Actor{ID: "wh-1", Role: domain.RoleWarehouse}, ret))
	assert.ErrorIs(t, CheckReturnDecision(domain.Actor{ID: "wh-2", Role: domain.RoleWarehouse}, ret), store.ErrNotFound)
	assert.ErrorIs(t, CheckReturnDecision(domain.Actor{ID: "dlr-1", Role: domain.RoleDealer}, ret), store.ErrAccessDenied)
}
