package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"parkboard/internal/db"
)

// UserRepository persists registered users as one JSON-encoded ordered
// list, rewritten wholesale on every save. The mutex keeps the file itself
// consistent under concurrent handlers; the read-check-insert sequence in
// the service above it is still racy across processes, which is a known
// limitation of the flat-file format.
type UserRepository struct {
	path string
	mu   sync.Mutex
}

func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

// Load returns every stored user. A missing or unparsable file reads as an
// empty list.
func (r *UserRepository) Load() ([]db.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

// Save rewrites the whole list.
func (r *UserRepository) Save(users []db.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(users)
}

// Append loads, mutates and rewrites under one lock so concurrent
// registrations in this process cannot interleave.
func (r *UserRepository) Append(mutate func(users []db.User) ([]db.User, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, err := r.load()
	if err != nil {
		return err
	}
	users, err = mutate(users)
	if err != nil {
		return err
	}
	return r.save(users)
}

func (r *UserRepository) load() ([]db.User, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return []db.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading users file: %w", err)
	}
	var users []db.User
	if err := json.Unmarshal(data, &users); err != nil {
		return []db.User{}, nil
	}
	return users, nil
}

func (r *UserRepository) save(users []db.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding users: %w", err)
	}
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return fmt.Errorf("writing users file: %w", err)
	}
	return nil
}
