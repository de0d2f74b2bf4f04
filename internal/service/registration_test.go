package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/store"
	"github.com/Skywalker147/sorath-sub001/internal/store/memory"
)

func TestMintRegistrationCodeOwnerOnly(t *testing.T) {
	svc := newTestService()

	_, err := svc.MintRegistrationCode(asWarehouse("wh-central"), domain.RegistrationCodeRequest{Role: domain.RoleDealer})
	assert.ErrorIs(t, err, store.ErrAccessDenied)

	code, err := svc.MintRegistrationCode(asOwner(), domain.RegistrationCodeRequest{Role: domain.RoleDealer})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDealer, code.Role)
	assert.True(t, code.ExpiresAt.After(time.Now()))
}

func TestMintRegistrationCodeWarehouseBinding(t *testing.T) {
	svc := newTestService()

	// Warehouse-role codes must name an existing warehouse.
	_, err := svc.MintRegistrationCode(asOwner(), domain.RegistrationCodeRequest{Role: domain.RoleWarehouse})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.MintRegistrationCode(asOwner(), domain.RegistrationCodeRequest{Role: domain.RoleWarehouse, WarehouseID: "wh-ghost"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	code, err := svc.MintRegistrationCode(asOwner(), domain.RegistrationCodeRequest{Role: domain.RoleWarehouse, WarehouseID: "wh-east"})
	require.NoError(t, err)
	assert.Equal(t, "wh-east", code.WarehouseID)

	// Non-warehouse codes must not carry a warehouse.
	_, err = svc.MintRegistrationCode(asOwner(), domain.RegistrationCodeRequest{Role: domain.RoleDealer, WarehouseID: "wh-east"})
	assert.ErrorIs(t, err, store.ErrValidation)

	// Owner codes cannot be minted at all.
	_, err = svc.MintRegistrationCode(asOwner(), domain.RegistrationCodeRequest{Role: domain.RoleOwner})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestRegisterConsumesCodeOnce(t *testing.T) {
	svc := newTestService()

	code, err := svc.MintRegistrationCode(asOwner(), domain.RegistrationCodeRequest{Role: domain.RoleWarehouse, WarehouseID: "wh-east"})
	require.NoError(t, err)

	resp, err := svc.Register(context.Background(), domain.RegisterRequest{
		Username: "eastwh",
		Password: "secret-pass",
		Code:     code.Code,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWarehouse, resp.Role)
	assert.Equal(t, "wh-east", resp.ActorID, "warehouse accounts act as their warehouse")

	// Second use of the same code fails.
	_, err = svc.Register(context.Background(), domain.RegisterRequest{
		Username: "eastwh2",
		Password: "secret-pass",
		Code:     code.Code,
	})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestRegisterRejectsExpiredCode(t *testing.T) {
	repo := memory.NewSeeded()
	svc := New(repo, nil, nil, nil)

	_, err := repo.CreateRegistrationCode(context.Background(), domain.RegistrationCode{
		Code:      "stale-code",
		Role:      domain.RoleDealer,
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), domain.RegisterRequest{
		Username: "latecomer",
		Password: "secret-pass",
		Code:     "stale-code",
	})
	assert.ErrorIs(t, err, store.ErrValidation)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()

	code, err := svc.MintRegistrationCode(asOwner(), domain.RegistrationCodeRequest{Role: domain.RoleDealer})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), domain.RegisterRequest{Username: "ab", Password: "secret-pass", Code: code.Code})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.Register(context.Background(), domain.RegisterRequest{Username: "newdealer", Password: "short", Code: code.Code})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = svc.Register(context.Background(), domain.RegisterRequest{Username: "newdealer", Password: "secret-pass", Code: "no-such-code"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	// A duplicate username fails without burning the code.
	_, err = svc.Register(context.Background(), domain.RegisterRequest{Username: "owner", Password: "secret-pass", Code: code.Code})
	assert.ErrorIs(t, err, store.ErrConflict)

	resp, err := svc.Register(context.Background(), domain.RegisterRequest{Username: "newdealer", Password: "secret-pass", Code: code.Code})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDealer, resp.Role)
}

// staleLookupRepo misses one username on lookup, the way a read can miss a
// row committed by a concurrent registration. The unique constraint on
// create is then the arbiter.
type staleLookupRepo struct {
	store.Repository
	missed string
}

func (r staleLookupRepo) GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	if username == r.missed {
		return nil, store.ErrNotFound
	}
	return r.Repository.GetUserByUsername(ctx, username)
}

func TestRegisterReturnsCodeWhenUsernameRaceIsLost(t *testing.T) {
	repo := memory.NewSeeded()
	svc := New(staleLookupRepo{Repository: repo, missed: "owner"}, nil, nil, nil)

	code, err := repo.CreateRegistrationCode(context.Background(), domain.RegistrationCode{
		Code:      "fresh-code",
		Role:      domain.RoleDealer,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	// "owner" already exists, but the lookup misses it, so the attempt
	// consumes the code and then fails on the create.
	_, err = svc.Register(context.Background(), domain.RegisterRequest{
		Username: "owner", Password: "secret-pass", Code: code.Code,
	})
	assert.ErrorIs(t, err, store.ErrConflict)

	// The code was handed back and is still redeemable.
	resp, err := svc.Register(context.Background(), domain.RegisterRequest{
		Username: "seconddealer", Password: "secret-pass", Code: code.Code,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDealer, resp.Role)
}
