package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
)

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))

	user := &model.User{Email: "amina@example.com", Name: "Amina", Password: "s3cret"}
	require.NoError(t, svc.Register(user))

	assert.Equal(t, model.RoleStudent, user.Role)
	assert.NotEqual(t, "s3cret", user.Password, "password must be stored hashed")
}

func TestRegisterDuplicateEmailReturnsSentinel(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))

	require.NoError(t, svc.Register(&model.User{Email: "amina@example.com", Password: "s3cret"}))

	err := svc.Register(&model.User{Email: "amina@example.com", Password: "other"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(repository.NewUserRepository(db))

	assert.ErrorIs(t, svc.Register(&model.User{Password: "s3cret"}), ErrInvalidRegistration)
	assert.ErrorIs(t, svc.Register(&model.User{Email: "amina@example.com"}), ErrInvalidRegistration)
}
