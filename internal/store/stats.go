package store

import (
	"context"

	"github.com/amalvarghese-30/mumbai-tech/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// StatsCounts issues the four count queries behind the dashboard snapshot.
// Timestamps are stamped by the stats cache, not here.
func (s *Store) StatsCounts(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot
	var err error

	if snap.TotalProducts, err = s.products.CountDocuments(ctx, bson.M{}); err != nil {
		return models.Snapshot{}, err
	}
	if snap.TotalCategories, err = s.categories.CountDocuments(ctx, bson.M{}); err != nil {
		return models.Snapshot{}, err
	}
	if snap.NewEnquiries, err = s.enquiries.CountDocuments(ctx, bson.M{"status": models.EnquiryNew}); err != nil {
		return models.Snapshot{}, err
	}
	if snap.TotalEnquiries, err = s.enquiries.CountDocuments(ctx, bson.M{}); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}
