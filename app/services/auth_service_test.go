package services_test

import (
	"errors"
	"testing"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registration(email, username string) services.RegisterInput {
	return services.RegisterInput{
		Email:           email,
		Username:        username,
		Password:        "s3cret-pass",
		PasswordConfirm: "s3cret-pass",
		FirstName:       "Ada",
		LastName:        "Lovelace",
	}
}

func TestRegisterIssuesTokens(t *testing.T) {
	f := newFixture(t)

	res, err := f.auth.Register(ctx, registration("Ada@Example.com ", "ada"))
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.True(t, res.User.IsActive)
	assert.False(t, res.User.IsStaff)
	assert.NotEqual(t, "s3cret-pass", res.User.Password)
	assert.NotEmpty(t, res.Tokens.Access)
	assert.NotEmpty(t, res.Tokens.Refresh)

	user, err := f.auth.Authenticate(ctx, res.Tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)
}

func TestRegisterDuplicateEmailConflictsBeforeWriting(t *testing.T) {
	f := newFixture(t)
	f.user(t, "taken@example.com")

	_, err := f.auth.Register(ctx, registration("taken@example.com", "newname"))

	var conflict *services.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Contains(t, conflict.Fields, "email")
	assert.NotContains(t, conflict.Fields, "username")

	_, err = f.auth.Login(ctx, services.LoginInput{Email: "taken@example.com", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, services.ErrInvalidLogin)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	in := registration("not-an-email", "ad")
	in.Password = "short"
	in.PasswordConfirm = "different"

	_, err := f.auth.Register(ctx, in)
	var verr *services.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password")
	assert.Contains(t, verr.Fields, "password_confirm")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "login@example.com")

	res, err := f.auth.Login(ctx, services.LoginInput{Email: "login@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)
	assert.NotNil(t, res.User.LastLogin)

	_, err = f.auth.Login(ctx, services.LoginInput{Email: "login@example.com", Password: "nope-nope"})
	assert.ErrorIs(t, err, services.ErrInvalidLogin)

	hash, _ := f.hasher.Hash("password123")
	f.store.AddUser(models.User{Email: "off@example.com", Username: "off", Password: hash, IsActive: false})
	_, err = f.auth.Login(ctx, services.LoginInput{Email: "off@example.com", Password: "password123"})
	assert.ErrorIs(t, err, services.ErrAccountDisabled)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	f.user(t, "r@example.com")

	res, err := f.auth.Login(ctx, services.LoginInput{Email: "r@example.com", Password: "password123"})
	require.NoError(t, err)

	access, _, err := f.auth.Refresh(ctx, res.Tokens.Refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	_, _, err = f.auth.Refresh(ctx, res.Tokens.Access)
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, _, err = f.auth.Refresh(ctx, "")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "me@example.com")
	f.user(t, "someone@example.com")

	updated, err := f.auth.UpdateProfile(ctx, u.ID, services.UpdateProfileInput{
		Username:  ptr("fresh-name"),
		FirstName: ptr("Grace"),
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh-name", updated.Username)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "me@example.com", updated.Email)

	_, err = f.auth.UpdateProfile(ctx, u.ID, services.UpdateProfileInput{Username: ptr("someone@example.com")})
	var conflict *services.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Contains(t, conflict.Fields, "username")
}

func TestCreateAdmin(t *testing.T) {
	f := newFixture(t)

	admin, err := f.auth.CreateAdmin(ctx, services.RegisterInput{
		Email:    "root@example.com",
		Username: "root",
		Password: "very-secure-1",
	})
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.IsActive)
}
