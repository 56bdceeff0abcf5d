package service

import (
	"context"
	"testing"

	"polling-backend/errs"
	"polling-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users)

	view, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, models.RoleUser, view.Role)

	// The stored hash never matches the plaintext.
	var stored models.User
	require.NoError(t, env.db.First(&stored, view.ID).Error)
	assert.NotEqual(t, "correct horse battery", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing username", RegisterInput{Email: "a@example.com", Password: "longenough"}},
		{"missing email", RegisterInput{Username: "a", Password: "longenough"}},
		{"short password", RegisterInput{Username: "a", Email: "a@example.com", Password: "short"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Username: "imposter", Email: "alice@example.com", Password: "longenough",
	})
	assert.ErrorIs(t, err, errs.ErrBusiness)
	assert.Equal(t, "Email already registered", err.Error())
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "longenough",
	})
	require.NoError(t, err)

	view, err := svc.Login(context.Background(), "alice@example.com", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)

	// Wrong password and unknown account produce the same message.
	_, err = svc.Login(context.Background(), "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, errs.ErrBusiness)
	assert.Equal(t, "Invalid email or password", err.Error())

	_, err = svc.Login(context.Background(), "nobody@example.com", "longenough")
	assert.ErrorIs(t, err, errs.ErrBusiness)
	assert.Equal(t, "Invalid email or password", err.Error())
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users)
	user := env.createUser(t, "alice", models.RoleUser)

	view, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", view.Username)

	_, err = svc.GetUser(context.Background(), 404)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Equal(t, "User not found with id 404", err.Error())
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := NewUserService(env.users)
	user := env.createUser(t, "alice", models.RoleUser)
	env.createUser(t, "bob", models.RoleUser)

	view, err := svc.UpdateProfile(context.Background(), user.ID, "alice2", "alice2@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice2", view.Username)
	assert.Equal(t, "alice2@example.com", view.Email)

	// Another account already owns this address.
	_, err = svc.UpdateProfile(context.Background(), user.ID, "alice2", "bob@example.com")
	assert.ErrorIs(t, err, errs.ErrBusiness)
	assert.Equal(t, "Email already taken", err.Error())

	// Keeping your own email is not a conflict.
	_, err = svc.UpdateProfile(context.Background(), user.ID, "alice3", "alice2@example.com")
	require.NoError(t, err)
}
