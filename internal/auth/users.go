package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"go_releasehub/internal/model"
)

// ErrUserNotFound is returned when no account has the given username
var ErrUserNotFound = errors.New("user not found")

// UserStore 控制台账号存储
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a user store
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// FindByUsername loads an account
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// EnsureAdmin creates a publisher account when the users table is empty.
// An empty password skips seeding.
func (s *UserStore) EnsureAdmin(ctx context.Context, username, password string) error {
	if password == "" {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	user := model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RolePublisher,
		Status:       model.UserStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	log.Printf("✓ Seeded console user %q", username)
	return nil
}
