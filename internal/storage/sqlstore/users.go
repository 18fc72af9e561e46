package sqlstore

import (
	"context"
	"fmt"
	"time"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	defer metrics.TrackDBOperation("users.get")(time.Now())

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, lookupError("get user", err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer metrics.TrackDBOperation("users.get_by_email")(time.Now())

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, lookupError("get user by email", err)
	}
	return &user, nil
}

// CreateUser relies on the unique email index; a duplicate surfaces as the
// driver's constraint error.
func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	defer metrics.TrackDBOperation("users.create")(time.Now())

	storage.PrepareUser(&user)
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}
