package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gig represents a seller's service listing stored in MongoDB
type Gig struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID         string             `json:"user_id" bson:"user_id"` // seller's marketplace user ID as string
	Title          string             `json:"title" bson:"title"`
	Desc           string             `json:"desc" bson:"desc"`
	Category       string             `json:"category,omitempty" bson:"category,omitempty"`
	Price          int                `json:"price" bson:"price"`
	Cover          string             `json:"cover" bson:"cover"`
	Images         []string           `json:"images,omitempty" bson:"images,omitempty"`
	ShortTitle     string             `json:"short_title,omitempty" bson:"short_title,omitempty"`
	ShortDesc      string             `json:"short_desc,omitempty" bson:"short_desc,omitempty"`
	DeliveryTime   int                `json:"delivery_time" bson:"delivery_time"` // days
	RevisionNumber int                `json:"revision_number" bson:"revision_number"`
	Features       []string           `json:"features,omitempty" bson:"features,omitempty"`
	TotalStars     int                `json:"total_stars" bson:"total_stars"`
	StarNumber     int                `json:"star_number" bson:"star_number"`
	Sales          int                `json:"sales" bson:"sales"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateGigRequest defines the request body for creating a new gig
type CreateGigRequest struct {
	Title          string   `json:"title" validate:"required,min=1,max=120"`
	Desc           string   `json:"desc" validate:"required,min=1,max=2000"`
	Category       string   `json:"category,omitempty" validate:"omitempty,max=50"`
	Price          int      `json:"price" validate:"required,min=1"`
	Cover          string   `json:"cover" validate:"required,uri"`
	Images         []string `json:"images,omitempty" validate:"omitempty,dive,uri"`
	ShortTitle     string   `json:"short_title,omitempty" validate:"omitempty,max=60"`
	ShortDesc      string   `json:"short_desc,omitempty" validate:"omitempty,max=200"`
	DeliveryTime   int      `json:"delivery_time" validate:"required,min=1"`
	RevisionNumber int      `json:"revision_number" validate:"min=0"`
	Features       []string `json:"features,omitempty" validate:"omitempty,dive,max=80"`
}

// GigFilter narrows gig listings. Zero values mean no restriction.
type GigFilter struct {
	UserID   string
	Category string
	MinPrice int
	MaxPrice int
	Search   string
}
