package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	defer metrics.TrackDBOperation("users.get")(time.Now())
	return findOne[models.User](ctx, s.users(), "get user", bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	defer metrics.TrackDBOperation("users.get_by_email")(time.Now())
	return findOne[models.User](ctx, s.users(), "get user by email", bson.M{"email": email})
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	defer metrics.TrackDBOperation("users.create")(time.Now())

	storage.PrepareUser(&user)
	if err := insert(ctx, s.users(), "create user", user); err != nil {
		return nil, err
	}
	return &user, nil
}
