// Package scope narrows every query and mutation to the rows an actor may
// see or change. Filters are applied to list queries; single-row checks
// report an out-of-scope row exactly like a missing one.
package scope

import (
	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/store"
)

func KnownRole(role string) bool {
	switch role {
	case domain.RoleOwner, domain.RoleWarehouse, domain.RoleDealer, domain.RoleSalesman:
		return true
	}
	return false
}

// OrderFilter computes the list predicate for the actor's role.
func OrderFilter(actor domain.Actor) domain.OrderFilter {
	switch actor.Role {
	case domain.RoleWarehouse:
		return domain.OrderFilter{WarehouseID: actor.ID}
	case domain.RoleDealer:
		return domain.OrderFilter{DealerID: actor.ID}
	case domain.RoleSalesman:
		return domain.OrderFilter{SalesmanID: actor.ID}
	}
	return domain.OrderFilter{}
}

func ReturnFilter(actor domain.Actor) domain.ReturnFilter {
	switch actor.Role {
	case domain.RoleWarehouse:
		return domain.ReturnFilter{WarehouseID: actor.ID}
	case domain.RoleDealer:
		return domain.ReturnFilter{DealerID: actor.ID}
	case domain.RoleSalesman:
		return domain.ReturnFilter{SalesmanID: actor.ID}
	}
	return domain.ReturnFilter{}
}

// CanSeeOrder reports whether the order falls inside the actor's row scope.
func CanSeeOrder(actor domain.Actor, order domain.Order) bool {
	switch actor.Role {
	case domain.RoleOwner:
		return true
	case domain.RoleWarehouse:
		return order.WarehouseID == actor.ID
	case domain.RoleDealer:
		return order.DealerID == actor.ID
	case domain.RoleSalesman:
		return order.SalesmanID == actor.ID
	}
	return false
}

func CanSeeReturn(actor domain.Actor, ret domain.ReturnOrder) bool {
	switch actor.Role {
	case domain.RoleOwner:
		return true
	case domain.RoleWarehouse:
		return ret.WarehouseID == actor.ID
	case domain.RoleDealer:
		return ret.DealerID == actor.ID
	case domain.RoleSalesman:
		return ret.SalesmanID == actor.ID
	}
	return false
}

// CheckInventoryRead gates stock reads. Warehouse accounts see only their
// own rows, reported as missing rather than forbidden. Dealers and salesmen
// may read availability anywhere.
func CheckInventoryRead(actor domain.Actor, warehouseID string) error {
	if actor.Role == domain.RoleWarehouse && warehouseID != actor.ID {
		return store.ErrNotFound
	}
	return nil
}

// CheckInventoryWrite gates direct set/add/subtract and bulk updates.
// Owners may touch any warehouse, warehouse accounts only their own.
func CheckInventoryWrite(actor domain.Actor, warehouseID string) error {
	switch actor.Role {
	case domain.RoleOwner:
		return nil
	case domain.RoleWarehouse:
		if warehouseID == actor.ID {
			return nil
		}
		return store.ErrAccessDenied
	}
	return store.ErrAccessDenied
}

// CheckTransfer gates cross-warehouse transfers. Transfer is owner-only;
// warehouse accounts may never move stock between warehouses.
func CheckTransfer(actor domain.Actor) error {
	if actor.Role == domain.RoleOwner {
		return nil
	}
	return store.ErrAccessDenied
}

// CheckTransportTransition gates transport-status changes on an order the
// actor can already see. Dealers may only mark their own orders delivered,
// salesmen may never change transport status.
func CheckTransportTransition(actor domain.Actor, order domain.Order, target string) error {
	switch actor.Role {
	case domain.RoleOwner:
		return nil
	case domain.RoleWarehouse:
		if order.WarehouseID != actor.ID {
			return store.ErrNotFound
		}
		return nil
	case domain.RoleDealer:
		if order.DealerID != actor.ID {
			return store.ErrNotFound
		}
		if target != domain.TransportDelivered {
			return store.ErrAccessDenied
		}
		return nil
	case domain.RoleSalesman:
		return store.ErrAccessDenied
	}
	return store.ErrAccessDenied
}

// CheckPaymentWrite gates payment mutations and direct payment-status
// overrides: warehouse (own orders) and owner only.
func CheckPaymentWrite(actor domain.Actor, order domain.Order) error {
	switch actor.Role {
	case domain.RoleOwner:
		return nil
	case domain.RoleWarehouse:
		if order.WarehouseID != actor.ID {
			return store.ErrNotFound
		}
		return nil
	}
	return store.ErrAccessDenied
}

// CheckOrderCreate enforces the role-specific creation contract and fills
// the actor-bound party fields.
func CheckOrderCreate(actor domain.Actor, req *domain.OrderCreateRequest) error {
	switch actor.Role {
	case domain.RoleOwner:
		return nil
	case domain.RoleWarehouse:
		if req.WarehouseID != actor.ID {
			return store.ErrAccessDenied
		}
		if req.DealerID == "" {
			return store.ErrValidation
		}
		return nil
	case domain.RoleDealer:
		req.DealerID = actor.ID
		return nil
	case domain.RoleSalesman:
		req.SalesmanID = actor.ID
		if req.DealerID == "" {
			return store.ErrValidation
		}
		return nil
	}
	return store.ErrAccessDenied
}

// CheckReturnCreate mirrors the creation gate for return orders.
func CheckReturnCreate(actor domain.Actor, req *domain.ReturnCreateRequest) error {
	switch actor.Role {
	case domain.RoleOwner:
		return nil
	case domain.RoleWarehouse:
		if req.WarehouseID != actor.ID {
			return store.ErrAccessDenied
		}
		return nil
	case domain.RoleDealer:
		req.DealerID = actor.ID
		return nil
	case domain.RoleSalesman:
		req.SalesmanID = actor.ID
		return nil
	}
	return store.ErrAccessDenied
}

// CheckReturnDecision gates approve/reject: owner anywhere, warehouse on
// its own warehouse only.
func CheckReturnDecision(actor domain.Actor, ret domain.ReturnOrder) error {
	switch actor.Role {
	case domain.RoleOwner:
		return nil
	case domain.RoleWarehouse:
		if ret.WarehouseID != actor.ID {
			return store.ErrNotFound
		}
		return nil
	}
	return store.ErrAccessDenied
}
