package models

import "time"

// SavedGig represents a bookmarked gig. The compound unique index guarantees
// a user can save a given gig at most once; the toggle endpoint relies on the
// database rejecting duplicates rather than a read-modify-write check.
type SavedGig struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_gig_save"`
	GigID     string    `json:"gig_id" gorm:"index;uniqueIndex:idx_user_gig_save"`
	CreatedAt time.Time `json:"created_at"`
}
