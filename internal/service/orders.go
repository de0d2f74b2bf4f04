package service

import (
	"context"
	"errors"
	"time"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/scope"
	"github.com/Skywalker147/sorath-sub001/internal/store"
	"github.com/Skywalker147/sorath-sub001/internal/xid"
)

// CreateOrder validates the line inputs against the current catalog and
// snapshots each item's unit price into the order. Later price changes
// never touch an existing order.
func (s *Service) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (*domain.Order, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := scope.CheckOrderCreate(actor, &req); err != nil {
		return nil, err
	}
	if req.WarehouseID == "" || len(req.Lines) == 0 {
		return nil, store.ErrValidation
	}

	warehouse, err := s.repo.GetWarehouse(ctx, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse.Status != domain.WarehouseActive {
		return nil, store.ErrInvalidState
	}

	lines, totalCents, err := s.snapshotLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	order := domain.Order{
		WarehouseID:     req.WarehouseID,
		DealerID:        req.DealerID,
		SalesmanID:      req.SalesmanID,
		TotalCents:      totalCents,
		TransportStatus: domain.TransportPending,
		PaymentStatus:   domain.PaymentStatusPending,
		OrderDate:       time.Now().UTC(),
		Lines:           lines,
	}

	// Number collisions are vanishingly rare but cheap to retry.
	var created *domain.Order
	for attempt := 0; attempt < 3; attempt++ {
		order.ID = xid.New("ord")
		order.OrderNumber = xid.New("ORD")
		created, err = s.repo.CreateOrder(ctx, order)
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

	s.audit(actor, "order_create", created.ID)
	return created, nil
}

// snapshotLines resolves line inputs against the catalog: every item must
// exist and be active, quantities must be positive, and unit prices are
// copied into the lines at this moment.
func (s *Service) snapshotLines(ctx context.Context, inputs []domain.OrderLineInput) ([]domain.OrderLine, int64, error) {
	ids := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if input.ItemID == "" || input.Quantity < 1 {
			return nil, 0, store.ErrValidation
		}
		ids = append(ids, input.ItemID)
	}

	items, err := s.repo.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	lines := make([]domain.OrderLine, 0, len(inputs))
	totalCents := int64(0)
	for _, input := range inputs {
		item, ok := items[input.ItemID]
		if !ok {
			return nil, 0, store.ErrNotFound
		}
		if item.Status != domain.ItemActive {
			return nil, 0, store.ErrInvalidState
		}
		lineTotal := item.UnitPriceCents * int64(input.Quantity)
		lines = append(lines, domain.OrderLine{
			ItemID:         input.ItemID,
			Quantity:       input.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			LineTotalCents: lineTotal,
		})
		totalCents += lineTotal
	}
	return lines, totalCents, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanSeeOrder(actor, *order) {
		return nil, store.ErrNotFound
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListOrders(ctx, scope.OrderFilter(actor))
}

// UpdateOrder replaces the line set of a pending order. Prices are
// re-snapshotted from the current catalog, the same as a fresh create.
func (s *Service) UpdateOrder(ctx context.Context, id string, req domain.OrderUpdateRequest) (*domain.Order, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, store.ErrValidation
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanSeeOrder(actor, *order) {
		return nil, store.ErrNotFound
	}
	// Dealers may rework their own pending orders; salesmen may not.
	if actor.Role == domain.RoleSalesman {
		return nil, store.ErrAccessDenied
	}
	if order.TransportStatus != domain.TransportPending {
		return nil, store.ErrInvalidState
	}

	lines, totalCents, err := s.snapshotLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.ReplaceOrderLines(ctx, id, lines, totalCents)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "order_update", id)
	return updated, nil
}

func (s *Service) UpdateTransportStatus(ctx context.Context, id string, req domain.TransportStatusRequest) (*domain.Order, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !domain.KnownTransportStatus(req.Status) {
		return nil, store.ErrValidation
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanSeeOrder(actor, *order) {
		return nil, store.ErrNotFound
	}
	if err := scope.CheckTransportTransition(actor, *order, req.Status); err != nil {
		return nil, err
	}
	if !domain.TransportTransitionAllowed(order.TransportStatus, req.Status) {
		return nil, store.ErrInvalidState
	}

	updated, err := s.repo.UpdateTransportStatus(ctx, id, req.Status, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.audit(actor, "order_transport", id+":"+req.Status)
	return updated, nil
}

// OverridePaymentStatus sets the derived payment status directly. The next
// payment mutation reconciles it back from the payment set.
func (s *Service) OverridePaymentStatus(ctx context.Context, id string, req domain.PaymentStatusRequest) (*domain.Order, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !domain.KnownPaymentStatus(req.Status) {
		return nil, store.ErrValidation
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanSeeOrder(actor, *order) {
		return nil, store.ErrNotFound
	}
	if err := scope.CheckPaymentWrite(actor, *order); err != nil {
		return nil, err
	}

	updated, err := s.repo.SetPaymentStatus(ctx, id, req.Status)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "order_payment_status", id+":"+req.Status)
	return updated, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return err
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if !scope.CanSeeOrder(actor, *order) {
		return store.ErrNotFound
	}
	if actor.Role != domain.RoleOwner && actor.Role != domain.RoleWarehouse {
		return store.ErrAccessDenied
	}
	if order.TransportStatus != domain.TransportPending {
		return store.ErrInvalidState
	}

	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return err
	}

	s.audit(actor, "order_delete", id)
	return nil
}
