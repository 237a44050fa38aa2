package models

import "gorm.io/gorm"

// Review represents a buyer's review of a gig. The gig's aggregate star
// counters (TotalStars, StarNumber) are updated when a review is created
// or deleted.
type Review struct {
	gorm.Model `json:"-"`
	ID         uint   `json:"id" gorm:"primaryKey"`
	GigID      string `json:"gig_id" gorm:"index;uniqueIndex:idx_gig_user_review"` // MongoDB ObjectID as string
	UserID     uint   `json:"user_id" gorm:"index;uniqueIndex:idx_gig_user_review"`
	Star       int    `json:"star"`
	Desc       string `json:"desc"`
}

// CreateReviewRequest defines the request body for creating a review
type CreateReviewRequest struct {
	GigID string `json:"gig_id" validate:"required"`
	Star  int    `json:"star" validate:"required,min=1,max=5"`
	Desc  string `json:"desc" validate:"required,min=1,max=1000"`
}
