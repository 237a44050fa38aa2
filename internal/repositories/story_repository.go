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

// StoryRepository defines the interface for story operations.
//
// Expiry is enforced twice: a TTL index lets MongoDB reap expired documents
// in the background, and every read and the viewer-insert update filter on
// expires_at so documents the reaper has not collected yet are never served.
type StoryRepository interface {
	CreateStory(ctx context.Context, story *models.Story) error
	GetActiveStoryByID(ctx context.Context, id string) (*models.Story, error)
	GetActiveStories(ctx context.Context) ([]models.Story, error)
	GetActiveStoriesByAuthor(ctx context.Context, authorID string) ([]models.Story, error)
	AddViewer(ctx context.Context, storyID, viewerID string) error
	DeleteStory(ctx context.Context, id string) error
}

// MongoStoryRepository implements StoryRepository for MongoDB
type MongoStoryRepository struct {
	collection *mongo.Collection
}

// NewMongoStoryRepository creates a new MongoStoryRepository
func NewMongoStoryRepository(db *mongo.Database) *MongoStoryRepository {
	return &MongoStoryRepository{collection: db.Collection("stories")}
}

// EnsureIndexes creates the TTL reaper index and the author listing index.
// expireAfterSeconds 0 makes MongoDB delete each document at its expires_at.
func (r *MongoStoryRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "expires_at", Value: 1}},
		},
	})
	return err
}

// CreateStory inserts a new story. The caller stamps CreatedAt/ExpiresAt
// from one instant; the ID and the empty viewer set are set here.
func (r *MongoStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	story.ID = primitive.NewObjectID()
	if story.CreatedAt.IsZero() {
		story.CreatedAt = time.Now()
	}
	if story.ViewerIDs == nil {
		story.ViewerIDs = []string{}
	}
	_, err := r.collection.InsertOne(ctx, story)
	return err
}

// GetActiveStoryByID retrieves a story by ID iff it has not expired
func (r *MongoStoryRepository) GetActiveStoryByID(ctx context.Context, id string) (*models.Story, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	var story models.Story
	err = r.collection.FindOne(ctx, bson.M{
		"_id":        objID,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&story)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &story, nil
}

// GetActiveStories retrieves all unexpired stories, newest first
func (r *MongoStoryRepository) GetActiveStories(ctx context.Context) ([]models.Story, error) {
	return r.findActive(ctx, bson.M{"expires_at": bson.M{"$gt": time.Now()}})
}

// GetActiveStoriesByAuthor retrieves one author's unexpired stories, newest first
func (r *MongoStoryRepository) GetActiveStoriesByAuthor(ctx context.Context, authorID string) ([]models.Story, error) {
	return r.findActive(ctx, bson.M{
		"author_id":  authorID,
		"expires_at": bson.M{"$gt": time.Now()},
	})
}

func (r *MongoStoryRepository) findActive(ctx context.Context, filter bson.M) ([]models.Story, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stories := []models.Story{}
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, err
	}
	return stories, nil
}

// AddViewer appends viewerID to the story's viewer set as a single atomic
// $addToSet update, so concurrent viewers can neither lose updates nor
// create duplicate entries. Returns ErrNotFound if the story is missing or
// already expired.
func (r *MongoStoryRepository) AddViewer(ctx context.Context, storyID, viewerID string) error {
	objID, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":        objID,
			"expires_at": bson.M{"$gt": time.Now()},
		},
		bson.M{"$addToSet": bson.M{"viewer_ids": viewerID}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteStory hard-deletes a story by ID
func (r *MongoStoryRepository) DeleteStory(ctx context.Context, id string) error {
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
