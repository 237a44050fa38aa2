package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story durations a creator may choose at creation time, in hours.
const (
	DefaultStoryDurationHours = 24
	StoryCaptionMaxLen        = 200
)

// Story represents an ephemeral post stored in MongoDB. A TTL index on
// expires_at removes expired documents; every read still filters on
// expires_at so a document the reaper has not collected yet is never served.
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  string             `json:"author_id" bson:"author_id"` // marketplace user ID stored as string
	ImageURL  string             `json:"image_url" bson:"image_url"`
	Text      string             `json:"text,omitempty" bson:"text,omitempty"`
	ViewerIDs []string           `json:"viewer_ids" bson:"viewer_ids"` // append-only, author never included
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
}

// Active reports whether the story has not expired at the given instant.
func (s *Story) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// CreateStoryRequest defines the request body for creating a story.
// duration_hours defaults to 24 when omitted. image_url is validated as a
// URI so the rooted paths the upload endpoint returns are accepted.
type CreateStoryRequest struct {
	ImageURL      string `json:"image_url" validate:"required,uri"`
	Text          string `json:"text,omitempty" validate:"omitempty,max=200"`
	DurationHours int    `json:"duration_hours,omitempty" validate:"omitempty,oneof=12 24 48 72"`
}

// StoryResponse is a story annotated with author display data
type StoryResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	ImageURL  string    `json:"image_url"`
	Text      string    `json:"text,omitempty"`
	ViewerIDs []string  `json:"viewer_ids"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	UserImg   string    `json:"user_img,omitempty"`
}
