package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile defaults applied when signup omits the optional fields.
const (
	DefaultName   = "Jacques Cousteau"
	DefaultAbout  = "Explorer"
	DefaultAvatar = "https://pictures.s3.yandex.net/resources/jacques-cousteau_1604399756.png"
)

// User is a user document in the users collection. It is never serialized
// to clients directly; responses go through PublicUser.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // never serialize
	Name         string             `bson:"name"`
	About        string             `bson:"about"`
	Avatar       string             `bson:"avatar"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

// PublicUser is the client-facing view of a user. It has no password field
// at all, so responses cannot leak credentials even by mistagging.
type PublicUser struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	About  string `json:"about"`
	Avatar string `json:"avatar"`
}

// Public returns the client-facing view of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID.Hex(),
		Email:  u.Email,
		Name:   u.Name,
		About:  u.About,
		Avatar: u.Avatar,
	}
}

// SignupRequest is the JSON body for POST /signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"omitempty,min=2,max=30"`
	About    string `json:"about" validate:"omitempty,min=2,max=30"`
	Avatar   string `json:"avatar" validate:"omitempty,http_url"`
}

// SigninRequest is the JSON body for POST /signin.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the JSON body for PATCH /users/me.
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=30"`
	About string `json:"about" validate:"omitempty,min=2,max=30"`
}

// UpdateAvatarRequest is the JSON body for PATCH /users/me/avatar.
type UpdateAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required,http_url"`
}
