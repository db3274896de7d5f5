package store

import (
	"context"
	"time"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserByUsername returns (nil, nil) when no such user exists so the login
// handler can show the same generic message for unknown users and bad
// passwords.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.AdminUser) error {
	user.CreatedAt = time.Now().UTC()
	_, err := s.users.InsertOne(ctx, user)
	return err
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.users.CountDocuments(ctx, bson.M{})
}
