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

func (s *Store) CreateEnquiry(ctx context.Context, e *models.Enquiry) (string, error) {
	res, err := s.enquiries.InsertOne(ctx, e)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (s *Store) EnquiryByID(ctx context.Context, id string) (*models.Enquiry, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var e models.Enquiry
	err = s.enquiries.FindOne(ctx, bson.M{"_id": oid}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEnquiries returns one page of enquiries, newest first. status "" or
// "all" disables the status filter.
func (s *Store) ListEnquiries(ctx context.Context, status string, page, perPage int) ([]models.Enquiry, int64, error) {
	query := bson.M{}
	if status != "" && status != "all" {
		query["status"] = status
	}

	total, err := s.enquiries.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))

	cursor, err := s.enquiries.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var enquiries []models.Enquiry
	if err := cursor.All(ctx, &enquiries); err != nil {
		return nil, 0, err
	}
	return enquiries, total, nil
}

func (s *Store) RecentEnquiries(ctx context.Context, limit int64) ([]models.Enquiry, error) {
	cursor, err := s.enquiries.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enquiries []models.Enquiry
	if err := cursor.All(ctx, &enquiries); err != nil {
		return nil, err
	}
	return enquiries, nil
}

func (s *Store) UpdateEnquiryStatus(ctx context.Context, id, status string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	_, err = s.enquiries.UpdateOne(ctx, bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	return err
}

func (s *Store) CountNewEnquiries(ctx context.Context) (int64, error) {
	return s.enquiries.CountDocuments(ctx, bson.M{"status": models.EnquiryNew})
}

// StaleNewEnquiries lists enquiries that have sat in status "new" for longer
// than the given age. Feeds the daily reminder digest.
func (s *Store) StaleNewEnquiries(ctx context.Context, olderThan time.Duration) ([]models.Enquiry, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	cursor, err := s.enquiries.Find(ctx,
		bson.M{"status": models.EnquiryNew, "created_at": bson.M{"$lte": cutoff}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enquiries []models.Enquiry
	if err := cursor.All(ctx, &enquiries); err != nil {
		return nil, err
	}
	return enquiries, nil
}
