package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Card is a card document in the cards collection. Owner and likes are
// stored as user ids and expanded to full users at read time.
type Card struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty"`
	Name      string               `bson:"name"`
	Link      string               `bson:"link"`
	Owner     primitive.ObjectID   `bson:"owner"`
	Likes     []primitive.ObjectID `bson:"likes"`
	CreatedAt time.Time            `bson:"createdAt"`
}

// CardResponse is the client-facing view of a card with owner and likes
// resolved to full user objects.
type CardResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Link      string       `json:"link"`
	Owner     PublicUser   `json:"owner"`
	Likes     []PublicUser `json:"likes"`
	CreatedAt time.Time    `json:"created_at"`
}

// CreateCardRequest is the JSON body for POST /cards.
type CreateCardRequest struct {
	Name string `json:"name" validate:"required,min=2,max=30"`
	Link string `json:"link" validate:"required,http_url"`
}
