package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkboard/internal/db"
)

func TestUserRepository_MissingFileReadsEmpty(t *testing.T) {
	repo := NewUserRepository(filepath.Join(t.TempDir(), "users.json"))

	users, err := repo.Load()

	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_CorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	repo := NewUserRepository(path)

	users, err := repo.Load()

	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_SaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	repo := NewUserRepository(path)
	want := []db.User{
		{ID: "1", FirstName: "Alice", Email: "alice@example.com", Password: "h1", CreatedAt: "2026-01-01T00:00:00Z"},
		{ID: "2", FirstName: "Bob", Email: "bob@example.com", Password: "h2", CreatedAt: "2026-01-02T00:00:00Z"},
	}

	require.NoError(t, repo.Save(want))
	got, err := repo.Load()

	require.NoError(t, err)
	assert.Equal(t, want, got, "order is preserved")
}

func TestUserRepository_AppendRewritesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	repo := NewUserRepository(path)

	err := repo.Append(func(users []db.User) ([]db.User, error) {
		return append(users, db.User{ID: "1", Email: "alice@example.com"}), nil
	})
	require.NoError(t, err)
	err = repo.Append(func(users []db.User) ([]db.User, error) {
		return append(users, db.User{ID: "2", Email: "bob@example.com"}), nil
	})
	require.NoError(t, err)

	users, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice@example.com", users[0].Email)
	assert.Equal(t, "bob@example.com", users[1].Email)
}

func TestUserRepository_AppendErrorLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	repo := NewUserRepository(path)
	require.NoError(t, repo.Save([]db.User{{ID: "1", Email: "alice@example.com"}}))

	err := repo.Append(func(users []db.User) ([]db.User, error) {
		return nil, assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	users, err := repo.Load()
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
