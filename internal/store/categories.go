package store

import (
	"context"
	"time"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) (string, error) {
	c.CreatedAt = time.Now().UTC()
	res, err := s.categories.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicateCategory
	}
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *Store) CategoryByID(ctx context.Context, id string) (*models.Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var c models.Category
	err = s.categories.FindOne(ctx, bson.M{"_id": oid}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCategory(ctx context.Context, id string, c *models.Category) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	update := bson.M{"$set": bson.M{
		"name":        c.Name,
		"description": c.Description,
		"icon_class":  c.IconClass,
		"updated_at":  time.Now().UTC(),
	}}
	_, err = s.categories.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateCategory
	}
	return err
}

// DeleteCategory removes the category document. The in-use check lives with
// the caller, which has to report the live product count either way.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	_, err = s.categories.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// ListCategories returns every category sorted by name. limit 0 means all.
func (s *Store) ListCategories(ctx context.Context, limit int64) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.categories.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
