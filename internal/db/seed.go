package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smithpartners/lawdesk/auth"
	"github.com/smithpartners/lawdesk/internal/models"
	"gorm.io/gorm"
)

// ErrUserExists is returned by CreateUser for a duplicate email.
var ErrUserExists = errors.New("user already exists")

// CreateUser stores a user with a bcrypt hash of password.
func CreateUser(ctx context.Context, gdb *gorm.DB, email, name, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	var count int64
	if err := gdb.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{Email: email, Name: name, Password: hash}
	if err := gdb.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Seed creates the administrator account when it does not exist yet.
// It reports whether a user was created.
func Seed(ctx context.Context, gdb *gorm.DB, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	_, err := CreateUser(ctx, gdb, email, "Administrator", password)
	if errors.Is(err, ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
