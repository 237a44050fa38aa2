package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	Username    string `json:"username" gorm:"uniqueIndex"`
	Email       string `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password    string `json:"-"`                        // Store hashed password, ignore for JSON serialization
	Img         string `json:"img,omitempty"`
	Country     string `json:"country,omitempty"`
	Desc        string `json:"desc,omitempty"`
	IsSeller    bool   `json:"is_seller"`
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
}

// UserCompact is the trimmed user shape embedded in annotated responses
type UserCompact struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Img      string `json:"img,omitempty"`
}

// ToCompact returns the compact representation used for author annotation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Username: u.Username,
		Img:      u.Img,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Img      string `json:"img,omitempty" validate:"omitempty,uri"`
	Country  string `json:"country,omitempty" validate:"omitempty,max=56"`
	Desc     string `json:"desc,omitempty" validate:"omitempty,max=500"`
	IsSeller bool   `json:"is_seller"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=2,max=50"`
	Img      string `json:"img,omitempty" validate:"omitempty,uri"`
	Country  string `json:"country,omitempty" validate:"omitempty,max=56"`
	Desc     string `json:"desc,omitempty" validate:"omitempty,max=500"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	IsSeller bool   `json:"is_seller"`
	jwt.RegisteredClaims
}
