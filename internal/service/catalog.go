package service

import (
	"context"
	"strings"
	"time"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/store"
	"github.com/Skywalker147/sorath-sub001/internal/xid"
)

func (s *Service) CreateWarehouse(ctx context.Context, req domain.WarehouseCreateRequest) (*domain.Warehouse, error) {
	actor, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, store.ErrValidation
	}

	created, err := s.repo.CreateWarehouse(ctx, domain.Warehouse{
		ID:        xid.New("wh"),
		Name:      req.Name,
		Address:   strings.TrimSpace(req.Address),
		Phone:     strings.TrimSpace(req.Phone),
		Status:    domain.WarehouseActive,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.audit(actor, "warehouse_create", created.ID)
	return created, nil
}

func (s *Service) GetWarehouse(ctx context.Context, id string) (*domain.Warehouse, error) {
	if _, err := s.requireActor(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetWarehouse(ctx, id)
}

func (s *Service) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	if _, err := s.requireActor(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListWarehouses(ctx)
}

func (s *Service) SetWarehouseStatus(ctx context.Context, id string, status string) (*domain.Warehouse, error) {
	actor, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.SetWarehouseStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "warehouse_status", id+":"+status)
	return updated, nil
}

func (s *Service) CreateItem(ctx context.Context, req domain.ItemCreateRequest) (*domain.Item, error) {
	actor, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.UnitPriceCents < 1 {
		return nil, store.ErrValidation
	}

	created, err := s.repo.CreateItem(ctx, domain.Item{
		ID:             xid.New("itm"),
		Name:           req.Name,
		UnitPriceCents: req.UnitPriceCents,
		Status:         domain.ItemActive,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.items.Invalidate(ctx)
	s.audit(actor, "item_create", created.ID)
	return created, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	if _, err := s.requireActor(ctx); err != nil {
		return nil, err
	}
	return s.repo.GetItem(ctx, id)
}

// ListItems serves the catalog through the read-through cache. A cache
// miss falls back to the store and repopulates.
func (s *Service) ListItems(ctx context.Context) ([]domain.Item, error) {
	if _, err := s.requireActor(ctx); err != nil {
		return nil, err
	}

	if items, ok := s.items.GetItems(ctx); ok {
		return items, nil
	}

	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	s.items.SetItems(ctx, items)
	return items, nil
}

func (s *Service) UpdateItem(ctx context.Context, id string, req domain.ItemUpdateRequest) (*domain.Item, error) {
	actor, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, store.ErrValidation
		}
		updated.Name = name
	}
	if req.UnitPriceCents != nil {
		if *req.UnitPriceCents < 1 {
			return nil, store.ErrValidation
		}
		updated.UnitPriceCents = *req.UnitPriceCents
	}
	if req.Status != nil {
		if *req.Status != domain.ItemActive && *req.Status != domain.ItemInactive {
			return nil, store.ErrValidation
		}
		updated.Status = *req.Status
	}

	saved, err := s.repo.UpdateItem(ctx, updated)
	if err != nil {
		return nil, err
	}

	s.items.Invalidate(ctx)
	s.audit(actor, "item_update", id)
	return saved, nil
}
