package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/phuslu/log"
	"gorm.io/gorm"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// EnsureDefaultUser returns the user with the given email, creating it on
// first start.
func (s *UserService) EnsureDefaultUser(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	user := models.User{Email: email, DisplayName: "Default collector"}
	result := s.db.WithContext(ctx).Where(models.User{Email: email}).FirstOrCreate(&user)
	if result.Error != nil {
		return nil, fmt.Errorf("ensure default user: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Info().Str("email", email).Uint("user_id", user.ID).Msg("created default user")
	}
	return &user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

func (s *UserService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	user := models.User{Email: email, DisplayName: strings.TrimSpace(req.DisplayName)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Watches are matched to users by contact address, so both sides are
// compared in this normalized form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
