package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skywalker147/sorath-sub001/internal/domain"
	"github.com/Skywalker147/sorath-sub001/internal/store"
)

func TestListUsersOwnerOnly(t *testing.T) {
	svc := newTestService()

	users, err := svc.ListUsers(asOwner())
	require.NoError(t, err)
	require.NotEmpty(t, users)
	for _, user := range users {
		assert.NotEmpty(t, user.Username)
		assert.NotEmpty(t, user.Role)
	}

	_, err = svc.ListUsers(asDealer("dlr-1"))
	assert.ErrorIs(t, err, store.ErrAccessDenied)

	_, err = svc.ListUsers(asWarehouse("wh-central"))
	assert.ErrorIs(t, err, store.ErrAccessDenied)
}

func TestChangePasswordRotatesHash(t *testing.T) {
	svc := newTestService()

	err := svc.ChangePassword(asOwner(), domain.PasswordChangeRequest{
		CurrentPassword: "owner123",
		NewPassword:     "fresh-secret",
	})
	require.NoError(t, err)

	user, err := svc.repo.GetUserByUsername(asOwner(), "owner")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("fresh-secret")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("owner123")))
}

func TestChangePasswordRejectsBadInput(t *testing.T) {
	svc := newTestService()

	err := svc.ChangePassword(asOwner(), domain.PasswordChangeRequest{
		CurrentPassword: "wrong", NewPassword: "fresh-secret",
	})
	assert.ErrorIs(t, err, store.ErrAccessDenied)

	err = svc.ChangePassword(asOwner(), domain.PasswordChangeRequest{
		CurrentPassword: "owner123", NewPassword: "tiny",
	})
	assert.ErrorIs(t, err, store.ErrValidation)
}
