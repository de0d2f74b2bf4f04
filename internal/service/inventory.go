package service

import (
	"context"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/scope"
	"github.com/Skywalker147/sorath-sub001/internal/store"
)

func (s *Service) GetInventory(ctx context.Context, warehouseID string, itemID string) (*domain.InventoryRow, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if warehouseID == "" || itemID == "" {
		return nil, store.ErrValidation
	}
	if err := scope.CheckInventoryRead(actor, warehouseID); err != nil {
		return nil, err
	}

	qty, err := s.repo.GetInventory(ctx, warehouseID, itemID)
	if err != nil {
		return nil, err
	}
	return &domain.InventoryRow{WarehouseID: warehouseID, ItemID: itemID, Quantity: qty}, nil
}

func (s *Service) ListInventory(ctx context.Context, warehouseID string) ([]domain.InventoryRow, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if warehouseID == "" {
		return nil, store.ErrValidation
	}
	if err := scope.CheckInventoryRead(actor, warehouseID); err != nil {
		return nil, err
	}
	return s.repo.ListInventory(ctx, warehouseID)
}

// CheckAvailability answers "can this warehouse cover qty of this item right
// now". It is a point-in-time read, not a reservation.
func (s *Service) CheckAvailability(ctx context.Context, warehouseID string, itemID string, qty int) (*domain.AvailabilityResponse, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if warehouseID == "" || itemID == "" || qty < 1 {
		return nil, store.ErrValidation
	}
	if err := scope.CheckInventoryRead(actor, warehouseID); err != nil {
		return nil, err
	}

	current, err := s.repo.GetInventory(ctx, warehouseID, itemID)
	if err != nil {
		return nil, err
	}
	return &domain.AvailabilityResponse{
		WarehouseID:     warehouseID,
		ItemID:          itemID,
		Available:       current >= qty,
		CurrentQuantity: current,
	}, nil
}

func (s *Service) AdjustInventory(ctx context.Context, req domain.InventoryAdjustRequest) (*domain.InventoryRow, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := scope.CheckInventoryWrite(actor, req.WarehouseID); err != nil {
		return nil, err
	}
	if err := s.requireActiveTargets(ctx, req.WarehouseID, req.ItemID); err != nil {
		return nil, err
	}

	row, err := s.repo.AdjustInventory(ctx, req)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "inventory_"+req.Mode, req.WarehouseID+"/"+req.ItemID)
	return row, nil
}

func (s *Service) TransferInventory(ctx context.Context, req domain.InventoryTransferRequest) error {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return err
	}
	if err := scope.CheckTransfer(actor); err != nil {
		return err
	}
	if err := s.requireActiveTargets(ctx, req.FromWarehouseID, req.ItemID); err != nil {
		return err
	}
	if _, err := s.repo.GetWarehouse(ctx, req.ToWarehouseID); err != nil {
		return err
	}

	if err := s.repo.TransferInventory(ctx, req); err != nil {
		return err
	}

	s.audit(actor, "inventory_transfer", req.FromWarehouseID+"->"+req.ToWarehouseID+"/"+req.ItemID)
	return nil
}

// BulkAdjustInventory applies every update or none. All rows must fall in
// the actor's write scope before anything is applied.
func (s *Service) BulkAdjustInventory(ctx context.Context, req domain.InventoryBulkUpdateRequest) error {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return err
	}
	if len(req.Updates) == 0 {
		return store.ErrValidation
	}
	for _, update := range req.Updates {
		if err := scope.CheckInventoryWrite(actor, update.WarehouseID); err != nil {
			return err
		}
	}

	if err := s.repo.BulkAdjustInventory(ctx, req.Updates); err != nil {
		return err
	}

	s.audit(actor, "inventory_bulk", "")
	return nil
}

// requireActiveTargets verifies the warehouse and item exist before a stock
// write so a typo creates an error, not a phantom inventory row.
func (s *Service) requireActiveTargets(ctx context.Context, warehouseID string, itemID string) error {
	if _, err := s.repo.GetWarehouse(ctx, warehouseID); err != nil {
		return err
	}
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return err
	}
	return nil
}
