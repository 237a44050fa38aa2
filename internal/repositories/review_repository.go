package repositories

import (
	"errors"

	"github.com/rasel39/gigmarket/backend/internal/models"
	"gorm.io/gorm"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	CreateReview(review *models.Review) error
	GetReviewByID(id uint) (*models.Review, error)
	GetReviewsByGigID(gigID string) ([]models.Review, error)
	DeleteReview(id uint) error
}

// PostgresReviewRepository implements ReviewRepository for PostgreSQL
type PostgresReviewRepository struct {
	db *gorm.DB
}

// NewPostgresReviewRepository creates a new PostgresReviewRepository
func NewPostgresReviewRepository(db *gorm.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

// CreateReview creates a new review; one review per (gig, user)
func (r *PostgresReviewRepository) CreateReview(review *models.Review) error {
	err := r.db.Create(review).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

// GetReviewByID retrieves a review by ID from PostgreSQL
func (r *PostgresReviewRepository) GetReviewByID(id uint) (*models.Review, error) {
	var review models.Review
	if err := r.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// GetReviewsByGigID retrieves all reviews for a gig, newest first
func (r *PostgresReviewRepository) GetReviewsByGigID(gigID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.Where("gig_id = ?", gigID).Order("created_at DESC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// DeleteReview deletes a review by ID from PostgreSQL
func (r *PostgresReviewRepository) DeleteReview(id uint) error {
	return r.db.Delete(&models.Review{}, id).Error
}
