package service

import (
	"context"
	"strings"
	"time"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/scope"
	"github.com/Skywalker147/sorath-sub001/internal/store"
)

// RecordPayment appends a payment against an order. The store re-derives the
// order's payment status from the full payment set in the same transaction.
func (s *Service) RecordPayment(ctx context.Context, orderID string, req domain.PaymentCreateRequest) (*domain.Payment, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !scope.CanSeeOrder(actor, *order) {
		return nil, store.ErrNotFound
	}
	if err := scope.CheckPaymentWrite(actor, *order); err != nil {
		return nil, err
	}

	req.Method = strings.TrimSpace(req.Method)
	if req.AmountCents < 1 || req.Method == "" {
		return nil, store.ErrValidation
	}
	if req.Status == "" {
		req.Status = domain.PaymentPending
	}
	switch req.Status {
	case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed:
	default:
		return nil, store.ErrValidation
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			return nil, store.ErrValidation
		}
		dueDate = &parsed
	}

	created, err := s.repo.CreatePayment(ctx, domain.Payment{
		OrderID:        orderID,
		AmountCents:    req.AmountCents,
		Method:         req.Method,
		Status:         req.Status,
		TransactionRef: strings.TrimSpace(req.TransactionRef),
		PaymentDate:    time.Now().UTC(),
		DueDate:        dueDate,
		Notes:          req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.audit(actor, "payment_create", created.ID)
	return created, nil
}

func (s *Service) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrder(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if !scope.CanSeeOrder(actor, *order) {
		return nil, store.ErrNotFound
	}
	return payment, nil
}

func (s *Service) ListPayments(ctx context.Context, orderID string) ([]domain.Payment, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !scope.CanSeeOrder(actor, *order) {
		return nil, store.ErrNotFound
	}
	return s.repo.ListPayments(ctx, orderID)
}

func (s *Service) UpdatePayment(ctx context.Context, id string, req domain.PaymentUpdateRequest) (*domain.Payment, error) {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return nil, err
	}

	payment, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.GetOrder(ctx, payment.OrderID)
	if err != nil {
		return nil, err
	}
	if !scope.CanSeeOrder(actor, *order) {
		return nil, store.ErrNotFound
	}
	if err := scope.CheckPaymentWrite(actor, *order); err != nil {
		return nil, err
	}

	updated := *payment
	if req.AmountCents != nil {
		if *req.AmountCents < 1 {
			return nil, store.ErrValidation
		}
		updated.AmountCents = *req.AmountCents
	}
	if req.Status != nil {
		switch *req.Status {
		case domain.PaymentPending, domain.PaymentPaid, domain.PaymentFailed:
		default:
			return nil, store.ErrValidation
		}
		updated.Status = *req.Status
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}

	saved, err := s.repo.UpdatePayment(ctx, updated)
	if err != nil {
		return nil, err
	}

	s.audit(actor, "payment_update", id)
	return saved, nil
}

func (s *Service) DeletePayment(ctx context.Context, id string) error {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return err
	}

	payment, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return err
	}
	order, err := s.repo.GetOrder(ctx, payment.OrderID)
	if err != nil {
		return err
	}
	if !scope.CanSeeOrder(actor, *order) {
		return store.ErrNotFound
	}
	if err := scope.CheckPaymentWrite(actor, *order); err != nil {
		return err
	}

	if err := s.repo.DeletePayment(ctx, id); err != nil {
		return err
	}

	s.audit(actor, "payment_delete", id)
	return nil
}
