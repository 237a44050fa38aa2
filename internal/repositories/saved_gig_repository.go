package repositories

import (
	"errors"

	"github.com/rasel39/gigmarket/backend/internal/models"
	"gorm.io/gorm"
)

// SavedGigRepository defines the interface for saved gig operations
type SavedGigRepository interface {
	SaveGig(savedGig *models.SavedGig) error
	UnsaveGig(userID uint, gigID string) error
	IsGigSaved(userID uint, gigID string) (bool, error)
	GetSavedGigsByUser(userID uint) ([]models.SavedGig, error)
	GetSavedGigIDs(userID uint, gigIDs []string) (map[string]bool, error)
}

// PostgresSavedGigRepository implements SavedGigRepository
type PostgresSavedGigRepository struct {
	db *gorm.DB
}

func NewPostgresSavedGigRepository(db *gorm.DB) *PostgresSavedGigRepository {
	return &PostgresSavedGigRepository{db: db}
}

// SaveGig inserts the bookmark row. The compound unique index makes a
// concurrent double-save surface as ErrAlreadyExists instead of a duplicate.
func (r *PostgresSavedGigRepository) SaveGig(savedGig *models.SavedGig) error {
	err := r.db.Create(savedGig).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresSavedGigRepository) UnsaveGig(userID uint, gigID string) error {
	res := r.db.Where("user_id = ? AND gig_id = ?", userID, gigID).Delete(&models.SavedGig{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSavedGigRepository) IsGigSaved(userID uint, gigID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SavedGig{}).Where("user_id = ? AND gig_id = ?", userID, gigID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresSavedGigRepository) GetSavedGigsByUser(userID uint) ([]models.SavedGig, error) {
	var saved []models.SavedGig
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&saved).Error
	return saved, err
}

func (r *PostgresSavedGigRepository) GetSavedGigIDs(userID uint, gigIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(gigIDs) == 0 {
		return result, nil
	}
	var saved []models.SavedGig
	err := r.db.Where("user_id = ? AND gig_id IN ?", userID, gigIDs).Find(&saved).Error
	if err != nil {
		return nil, err
	}
	for _, s := range saved {
		result[s.GigID] = true
	}
	return result, nil
}
