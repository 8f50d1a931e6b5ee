package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"parkboard/internal/db"
	"parkboard/internal/entities"
	"parkboard/internal/repository"
)

var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserService handles registration and login over the flat-file store.
// Passwords arrive pre-hashed by the caller; login is an equality compare
// of the stored hash.
type UserService struct {
	Repo *repository.UserRepository
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{Repo: repo}
}

// Register appends a new user. Email uniqueness is enforced by a linear
// scan immediately before the insert.
func (s *UserService) Register(firstName, email, passwordHash string) (*entities.PublicUser, error) {
	if firstName == "" || email == "" || passwordHash == "" {
		return nil, ErrMissingFields
	}

	user := db.User{
		ID:        strconv.FormatInt(time.Now().UnixMilli(), 10),
		FirstName: firstName,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	err := s.Repo.Append(func(users []db.User) ([]db.User, error) {
		for _, u := range users {
			if u.Email == email {
				return nil, ErrEmailTaken
			}
		}
		return append(users, user), nil
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("registering user: %w", err)
	}

	return &entities.PublicUser{ID: user.ID, FirstName: user.FirstName, Email: user.Email}, nil
}

// Login matches email and password hash against the stored list.
func (s *UserService) Login(email, passwordHash string) (*entities.PublicUser, error) {
	users, err := s.Repo.Load()
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	for _, u := range users {
		if u.Email == email && u.Password == passwordHash {
			return &entities.PublicUser{ID: u.ID, FirstName: u.FirstName, Email: u.Email}, nil
		}
	}
	return nil, ErrInvalidCredentials
}
