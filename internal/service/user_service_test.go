package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkboard/internal/repository"
)

func newUserFixture(t *testing.T) (*UserService, *repository.UserRepository) {
	t.Helper()
	repo := repository.NewUserRepository(filepath.Join(t.TempDir(), "users.json"))
	return NewUserService(repo), repo
}

func TestUserService_Register(t *testing.T) {
	svc, repo := newUserFixture(t)

	user, err := svc.Register("Alice", "alice@example.com", "hash-1")

	require.NoError(t, err)
	assert.Equal(t, "Alice", user.FirstName)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.ID)

	stored, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "hash-1", stored[0].Password)
	assert.NotEmpty(t, stored[0].CreatedAt)
}

func TestUserService_RegisterMissingFields(t *testing.T) {
	svc, repo := newUserFixture(t)

	cases := []struct {
		name                       string
		firstName, email, password string
	}{
		{"no first name", "", "a@example.com", "h"},
		{"no email", "Alice", "", "h"},
		{"no password", "Alice", "a@example.com", ""},
		{"all empty", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(tc.firstName, tc.email, tc.password)
			assert.ErrorIs(t, err, ErrMissingFields)
		})
	}

	stored, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, stored, "no record added on rejected registrations")
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	svc, repo := newUserFixture(t)
	_, err := svc.Register("Alice", "alice@example.com", "hash-1")
	require.NoError(t, err)

	_, err = svc.Register("Alice Again", "alice@example.com", "hash-2")

	assert.ErrorIs(t, err, ErrEmailTaken)
	stored, err := repo.Load()
	require.NoError(t, err)
	assert.Len(t, stored, 1, "duplicate registration adds nothing")
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newUserFixture(t)
	registered, err := svc.Register("Alice", "alice@example.com", "hash-1")
	require.NoError(t, err)

	user, err := svc.Login("alice@example.com", "hash-1")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "Alice", user.FirstName)
}

func TestUserService_LoginInvalidCredentials(t *testing.T) {
	svc, _ := newUserFixture(t)
	_, err := svc.Register("Alice", "alice@example.com", "hash-1")
	require.NoError(t, err)

	_, err = svc.Login("alice@example.com", "wrong-hash")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "hash-1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
