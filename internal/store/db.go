package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sentinel errors surfaced to handlers for integrity violations.
var (
	ErrDuplicateCategory = errors.New("category name already exists")
	ErrInvalidID         = errors.New("invalid document id")
)

type Store struct {
	client *mongo.Client

	products   *mongo.Collection
	categories *mongo.Collection
	enquiries  *mongo.Collection
	users      *mongo.Collection
	activities *mongo.Collection
}

func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	db := client.Database(dbName)
	return &Store{
		client:     client,
		products:   db.Collection("products"),
		categories: db.Collection("categories"),
		enquiries:  db.Collection("enquiries"),
		users:      db.Collection("admin_users"),
		activities: db.Collection("activity_logs"),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the two indexes the application depends on: the
// product text index backing full-text search and the unique category name.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.products.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
	})
	if err != nil {
		return fmt.Errorf("creating product text index: %w", err)
	}

	_, err = s.categories.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("creating category name index: %w", err)
	}
	return nil
}
