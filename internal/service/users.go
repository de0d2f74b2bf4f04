package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/store"
)

// ListUsers returns every account without credential material. Owner only.
func (s *Service) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	if _, err := s.requireOwner(ctx); err != nil {
		return nil, err
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, domain.UserSummary{
			ID:          user.ID,
			Username:    user.Username,
			Role:        user.Role,
			WarehouseID: user.WarehouseID,
			Phone:       user.Phone,
			Active:      user.Active,
			CreatedAt:   user.CreatedAt,
		})
	}
	return summaries, nil
}

// ChangePassword rotates the calling account's own password after verifying
// the current one.
func (s *Service) ChangePassword(ctx context.Context, req domain.PasswordChangeRequest) error {
	actor, err := s.requireActor(ctx)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(req.NewPassword)) < 6 {
		return store.ErrValidation
	}

	user, err := s.repo.GetUserByUsername(ctx, actor.Username)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return store.ErrAccessDenied
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUserPassword(ctx, user.Username, string(hash)); err != nil {
		return err
	}

	s.audit(actor, "password_change", user.Username)
	return nil
}
