package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type UserId int64

type Email string

// Normalized returns the lower-cased, trimmed address used as a login key.
func (e Email) Normalized() Email {
	return Email(strings.ToLower(strings.TrimSpace(string(e))))
}

type User struct {
	Id           UserId
	CreatedAt    time.Time
	Email        Email
	DisplayName  string
	PasswordHash []byte
	Roles        Roles
}

func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt generate: %w", err)
	}
	return hash, nil
}

// CheckPassword fails with ErrInvalidCredentials on mismatch.
func (u User) CheckPassword(password string) error {
	err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrInvalidCredentials
	default:
		return fmt.Errorf("bcrypt compare: %w", err)
	}
}

type UserStore interface {
	// Register inserts a new user and returns it with the assigned id.
	Register(ctx context.Context, user User) (User, error)

	ById(ctx context.Context, userId UserId) (User, error)

	ByEmail(ctx context.Context, email Email) (User, error)

	Update(ctx context.Context, user User) error
}
