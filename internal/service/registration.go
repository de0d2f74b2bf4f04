package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/scope"
	"github.com/Skywalker147/sorath-sub001/internal/store"
	"github.com/Skywalker147/sorath-sub001/internal/xid"
)

// MintRegistrationCode creates a single-use onboarding code. Owner only.
// Warehouse-role codes must name an existing warehouse so the new account
// has a scope to bind to.
func (s *Service) MintRegistrationCode(ctx context.Context, req domain.RegistrationCodeRequest) (*domain.RegistrationCode, error) {
	actor, err := s.requireOwner(ctx)
	if err != nil {
		return nil, err
	}

	if !scope.KnownRole(req.Role) || req.Role == domain.RoleOwner {
		return nil, store.ErrValidation
	}
	if req.Role == domain.RoleWarehouse {
		if req.WarehouseID == "" {
			return nil, store.ErrValidation
		}
		if _, err := s.repo.GetWarehouse(ctx, req.WarehouseID); err != nil {
			return nil, err
		}
	} else if req.WarehouseID != "" {
		return nil, store.ErrValidation
	}

	ttl := time.Duration(req.ExpiresInHrs) * time.Hour
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}

	created, err := s.repo.CreateRegistrationCode(ctx, domain.RegistrationCode{
		Code:        xid.New("reg"),
		Role:        req.Role,
		WarehouseID: req.WarehouseID,
		ExpiresAt:   time.Now().UTC().Add(ttl),
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.audit(actor, "registration_code", created.Role)
	return created, nil
}

// Register consumes a registration code and creates the account it
// authorizes. No actor is required; the code is the credential.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if len(username) < 4 || strings.ContainsAny(username, " \t\r\n") {
		return nil, store.ErrValidation
	}
	if len(strings.TrimSpace(req.Password)) < 6 {
		return nil, store.ErrValidation
	}
	if req.Code == "" {
		return nil, store.ErrValidation
	}

	// Check the username before consuming the code so a duplicate name does
	// not burn a still-valid code.
	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, store.ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	code, err := s.repo.ConsumeRegistrationCode(ctx, req.Code, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, domain.UserAccount{
		ID:           xid.New("usr"),
		Username:     username,
		PasswordHash: string(hash),
		Role:         code.Role,
		WarehouseID:  code.WarehouseID,
		Phone:        strings.TrimSpace(req.Phone),
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		// The username check above can race a concurrent registration.
		// Hand the code back so the loser keeps a redeemable code.
		if releaseErr := s.repo.ReleaseRegistrationCode(ctx, code.Code); releaseErr != nil {
			s.logger.Printf("release registration code %s: %v", code.Code, releaseErr)
		}
		return nil, err
	}

	s.notifier.SendRegistrationNotice(user.Phone, user.Username)
	s.logger.Printf("registered %s role=%s", user.Username, user.Role)

	return &domain.RegisterResponse{
		Username: user.Username,
		Role:     user.Role,
		ActorID:  user.ActorID(),
	}, nil
}
