package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/trentd187/tournament-finder/internal/models"
	"github.com/trentd187/tournament-finder/internal/validation"
)

// NewsletterStore persists newsletter subscriptions.
// The database must be opened with gorm.Config{TranslateError: true} so unique-constraint
// violations surface as gorm.ErrDuplicatedKey.
type NewsletterStore struct {
	db *gorm.DB
}

func NewNewsletterStore(db *gorm.DB) *NewsletterStore {
	return &NewsletterStore{db: db}
}

// Subscribe records a new subscription for email.
// The address is normalized by the model's BeforeSave hook; an address that normalizes to an
// existing subscription returns ErrDuplicateEmail, a malformed one models.ErrInvalidEmail.
func (s *NewsletterStore) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	sub := &models.NewsletterSubscription{Email: email}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("subscribe %s: %w", sub.Email, ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	return sub, nil
}

// FindByEmail looks up a subscription by address, normalizing it first.
func (s *NewsletterStore) FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	var sub models.NewsletterSubscription
	err := s.db.WithContext(ctx).
		Where("email = ?", validation.NormalizeEmail(email)).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find subscription: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return &sub, nil
}
