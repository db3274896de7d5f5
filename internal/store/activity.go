package store

import (
	"context"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) RecordActivity(ctx context.Context, entry *models.ActivityEntry) error {
	_, err := s.activities.InsertOne(ctx, entry)
	return err
}

func (s *Store) RecentActivities(ctx context.Context, limit int64) ([]models.ActivityEntry, error) {
	cursor, err := s.activities.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.ActivityEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
