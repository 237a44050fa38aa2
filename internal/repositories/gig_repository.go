package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rasel39/gigmarket/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GigRepository defines the interface for gig data operations
type GigRepository interface {
	CreateGig(ctx context.Context, gig *models.Gig) error
	GetGigByID(ctx context.Context, id string) (*models.Gig, error)
	GetGigsByIDs(ctx context.Context, ids []string) ([]models.Gig, error)
	ListGigs(ctx context.Context, filter models.GigFilter, skip, limit int64) ([]models.Gig, error)
	UpdateStars(ctx context.Context, gigID string, starDelta, countDelta int) error
	DeleteGig(ctx context.Context, id string) error
}

// MongoGigRepository implements GigRepository for MongoDB
type MongoGigRepository struct {
	collection *mongo.Collection
}

// NewMongoGigRepository creates a new MongoGigRepository
func NewMongoGigRepository(db *mongo.Database) *MongoGigRepository {
	return &MongoGigRepository{collection: db.Collection("gigs")}
}

// CreateGig creates a new gig in MongoDB
func (r *MongoGigRepository) CreateGig(ctx context.Context, gig *models.Gig) error {
	gig.ID = primitive.NewObjectID()
	gig.CreatedAt = time.Now()
	gig.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, gig)
	return err
}

// GetGigByID retrieves a gig by ID from MongoDB
func (r *MongoGigRepository) GetGigByID(ctx context.Context, id string) (*models.Gig, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	var gig models.Gig
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&gig)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &gig, nil
}

// GetGigsByIDs retrieves gigs matching the given IDs in one query. IDs that
// do not parse as ObjectIDs are skipped rather than failing the batch.
func (r *MongoGigRepository) GetGigsByIDs(ctx context.Context, ids []string) ([]models.Gig, error) {
	if len(ids) == 0 {
		return []models.Gig{}, nil
	}
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	gigs := []models.Gig{}
	if err = cursor.All(ctx, &gigs); err != nil {
		return nil, err
	}
	return gigs, nil
}

// ListGigs retrieves gigs matching the filter with pagination, newest first
func (r *MongoGigRepository) ListGigs(ctx context.Context, filter models.GigFilter, skip, limit int64) ([]models.Gig, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.MinPrice > 0 || filter.MaxPrice > 0 {
		price := bson.M{}
		if filter.MinPrice > 0 {
			price["$gte"] = filter.MinPrice
		}
		if filter.MaxPrice > 0 {
			price["$lte"] = filter.MaxPrice
		}
		query["price"] = price
	}
	if filter.Search != "" {
		query["title"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	gigs := []models.Gig{}
	if err = cursor.All(ctx, &gigs); err != nil {
		return nil, err
	}
	return gigs, nil
}

// UpdateStars adjusts the aggregate review counters of a gig
func (r *MongoGigRepository) UpdateStars(ctx context.Context, gigID string, starDelta, countDelta int) error {
	objID, err := primitive.ObjectIDFromHex(gigID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$inc": bson.M{"total_stars": starDelta, "star_number": countDelta},
	})
	return err
}

// DeleteGig deletes a gig by ID from MongoDB
func (r *MongoGigRepository) DeleteGig(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
