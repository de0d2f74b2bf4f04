package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/scope"
	"github.com/Skywalker147/sorath-sub001/internal/store"
	"github.com/Skywalker147/sorath-sub001/internal/xid"
)

// CreateReturn opens a return request in the pending state. Inventory is
// untouched until the return is approved.
func (s *Service) CreateReturn(ctx context.Context, req domain.ReturnCreateRequest) (*domain.ReturnOrder, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := scope.CheckReturnCreate(actor, &req); err != nil {
		return nil, err
	}

	req.Reason = strings.TrimSpace(req.Reason)
	if req.WarehouseID == "" || req.ItemID == "" || req.Quantity < 1 || req.Reason == "" {
		return nil, store.ErrValidation
	}
	if req.DealerID == "" && req.SalesmanID == "" {
		return nil, store.ErrValidation
	}

	if _, err := s.repo.GetWarehouse(ctx, req.WarehouseID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetItem(ctx, req.ItemID); err != nil {
		return nil, err
	}
	if req.OriginalOrderID != "" {
		order, err := s.repo.GetOrder(ctx, req.OriginalOrderID)
		if err != nil {
			return nil, err
		}
		if !scope.CanSeeOrder(actor, *order) {
			return nil, store.ErrNotFound
		}
	}

	ret := domain.ReturnOrder{
		OriginalOrderID: req.OriginalOrderID,
		WarehouseID:     req.WarehouseID,
		DealerID:        req.DealerID,
		SalesmanID:      req.SalesmanID,
		ItemID:          req.ItemID,
		Quantity:        req.Quantity,
		Reason:          req.Reason,
		Status:          domain.ReturnPending,
		CreatedAt:       time.Now().UTC(),
	}

	var created *domain.ReturnOrder
	for attempt := 0; attempt < 3; attempt++ {
		ret.ID = xid.New("ret")
		ret.ReturnNumber = xid.New("RET")
		created, err = s.repo.CreateReturnOrder(ctx, ret)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	s.audit(actor, "return_create", created.ID)
	return created, nil
}

func (s *Service) GetReturn(ctx context.Context, id string) (*domain.ReturnOrder, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}

	ret, err := s.repo.GetReturnOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanSeeReturn(actor, *ret) {
		return nil, store.ErrNotFound
	}
	return ret, nil
}

func (s *Service) ListReturns(ctx context.Context) ([]domain.ReturnOrder, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListReturnOrders(ctx, scope.ReturnFilter(actor))
}

// DecideReturn approves or rejects a return. Approval restocks the target
// warehouse; flipping an approved return to rejected reverses the restock.
// The target must be approved or rejected, never back to pending.
func (s *Service) DecideReturn(ctx context.Context, id string, req domain.ReturnStatusRequest) (*domain.ReturnOrder, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.ReturnApproved && req.Status != domain.ReturnRejected {
		return nil, store.ErrValidation
	}

	ret, err := s.repo.GetReturnOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanSeeReturn(actor, *ret) {
		return nil, store.ErrNotFound
	}
	if err := scope.CheckReturnDecision(actor, *ret); err != nil {
		return nil, err
	}

	updated, err := s.repo.SetReturnStatus(ctx, id, req.Status)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "return_"+req.Status, id)
	return updated, nil
}
