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

// ProductFilter narrows admin and public product listings.
type ProductFilter struct {
	Search      string // regex match on name, part number or description (case-insensitive)
	Text        string // full-text search against the text index
	CategoryID  string
	StockStatus string
	Page        int
	PerPage     int // 0 disables pagination
}

func (f ProductFilter) query() bson.M {
	q := bson.M{}
	if f.Text != "" {
		q["$text"] = bson.M{"$search": f.Text}
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: f.Search, Options: "i"}
		q["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"part_number": pattern},
			bson.M{"description": pattern},
		}
	}
	if f.CategoryID != "" {
		q["category_id"] = f.CategoryID
	}
	if f.StockStatus != "" {
		q["stock_status"] = f.StockStatus
	}
	return q
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) (string, error) {
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	res, err := s.products.InsertOne(ctx, p)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// ProductByID returns (nil, nil) when the id is malformed or does not
// resolve, so callers treat both the same way: not found.
func (s *Store) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var p models.Product
	err = s.products.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, p *models.Product) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	update := bson.M{"$set": bson.M{
		"name":            p.Name,
		"description":     p.Description,
		"category_id":     p.CategoryID,
		"part_number":     p.PartNumber,
		"manufacturer":    p.Manufacturer,
		"machine_type":    p.MachineType,
		"technical_specs": p.TechnicalSpecs,
		"price":           p.Price,
		"currency":        p.Currency,
		"stock_status":    p.StockStatus,
		"is_featured":     p.IsFeatured,
		"images":          p.Images,
		"updated_at":      time.Now().UTC(),
	}}
	_, err = s.products.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	_, err = s.products.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// ListProducts applies the filter and returns the matching page together with
// the total match count for pagination.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	query := f.query()

	total, err := s.products.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.PerPage > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * f.PerPage)).SetLimit(int64(f.PerPage))
	}

	cursor, err := s.products.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *Store) FeaturedProducts(ctx context.Context, limit int64) ([]models.Product, error) {
	cursor, err := s.products.Find(ctx, bson.M{"is_featured": "yes"},
		options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SearchProducts runs a full-text query against the name+description text
// index, best matches first.
func (s *Store) SearchProducts(ctx context.Context, query string, limit int64) ([]models.Product, error) {
	filter := bson.M{"$text": bson.M{"$search": query}}
	opts := options.Find().
		SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.M{"score": bson.M{"$meta": "textScore"}}).
		SetLimit(limit)

	cursor, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) CountProductsInCategory(ctx context.Context, categoryID string) (int64, error) {
	return s.products.CountDocuments(ctx, bson.M{"category_id": categoryID})
}
