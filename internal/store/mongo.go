// Package store persists users and cards in MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mkozhevn/photocards/internal/apperr"
	"github.com/mkozhevn/photocards/internal/models"
)

// MongoStore handles user and card CRUD in MongoDB.
type MongoStore struct {
	users *mongo.Collection
	cards *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users: db.Collection("users"),
		cards: db.Collection("cards"),
	}
}

// EnsureIndexes creates the unique email index backing the registration
// uniqueness invariant.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// parseID converts a hex id from the URL into an ObjectID. A malformed id is
// a validation failure, distinct from a legitimately absent document.
func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap(apperr.Validation, "invalid "+what+" id", err)
	}
	return oid, nil
}

// ── Users ────────────────────────────────────────────────

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.Wrap(apperr.Conflict, "user with this email already exists", err)
		}
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, fmt.Errorf("mongo find user by email: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return &user, nil
}

func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongo list users: %w", err)
	}
	return users, nil
}

func (s *MongoStore) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("mongo find users by ids: %w", err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("mongo find users by ids: %w", err)
	}
	return users, nil
}

// UpdateProfile sets the provided fields on the user's own profile and
// returns the updated document. Empty fields are left untouched.
func (s *MongoStore) UpdateProfile(ctx context.Context, id, name, about string) (*models.User, error) {
	set := bson.M{}
	if name != "" {
		set["name"] = name
	}
	if about != "" {
		set["about"] = about
	}
	if len(set) == 0 {
		return s.GetUserByID(ctx, id)
	}
	return s.updateUser(ctx, id, set)
}

func (s *MongoStore) UpdateAvatar(ctx context.Context, id, avatar string) (*models.User, error) {
	return s.updateUser(ctx, id, bson.M{"avatar": avatar})
}

func (s *MongoStore) updateUser(ctx context.Context, id string, set bson.M) (*models.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err = s.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Wrap(apperr.NotFound, "user not found", err)
		}
		return nil, fmt.Errorf("mongo update user: %w", err)
	}
	return &user, nil
}

// ── Cards ────────────────────────────────────────────────

func (s *MongoStore) InsertCard(ctx context.Context, card *models.Card) (*models.Card, error) {
	card.CreatedAt = time.Now()
	if card.Likes == nil {
		card.Likes = []primitive.ObjectID{}
	}
	res, err := s.cards.InsertOne(ctx, card)
	if err != nil {
		return nil, fmt.Errorf("mongo insert card: %w", err)
	}
	card.ID = res.InsertedID.(primitive.ObjectID)
	return card, nil
}

func (s *MongoStore) ListCards(ctx context.Context) ([]models.Card, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.cards.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list cards: %w", err)
	}
	defer cur.Close(ctx)

	var cards []models.Card
	if err := cur.All(ctx, &cards); err != nil {
		return nil, fmt.Errorf("mongo list cards: %w", err)
	}
	return cards, nil
}

func (s *MongoStore) GetCardByID(ctx context.Context, id string) (*models.Card, error) {
	oid, err := parseID(id, "card")
	if err != nil {
		return nil, err
	}
	var card models.Card
	if err := s.cards.FindOne(ctx, bson.M{"_id": oid}).Decode(&card); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Wrap(apperr.NotFound, "card not found", err)
		}
		return nil, fmt.Errorf("mongo find card: %w", err)
	}
	return &card, nil
}

func (s *MongoStore) DeleteCard(ctx context.Context, id string) error {
	oid, err := parseID(id, "card")
	if err != nil {
		return err
	}
	res, err := s.cards.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete card: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.New(apperr.NotFound, "card not found")
	}
	return nil
}

// LikeCard adds userID to the card's like set. $addToSet makes the update
// atomic and idempotent: concurrent likes never lose entries or duplicate.
func (s *MongoStore) LikeCard(ctx context.Context, id string, userID primitive.ObjectID) (*models.Card, error) {
	return s.updateLikes(ctx, id, bson.M{"$addToSet": bson.M{"likes": userID}})
}

// UnlikeCard removes userID from the card's like set; a no-op if absent.
func (s *MongoStore) UnlikeCard(ctx context.Context, id string, userID primitive.ObjectID) (*models.Card, error) {
	return s.updateLikes(ctx, id, bson.M{"$pull": bson.M{"likes": userID}})
}

func (s *MongoStore) updateLikes(ctx context.Context, id string, update bson.M) (*models.Card, error) {
	oid, err := parseID(id, "card")
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var card models.Card
	err = s.cards.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&card)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.Wrap(apperr.NotFound, "card not found", err)
		}
		return nil, fmt.Errorf("mongo update likes: %w", err)
	}
	return &card, nil
}
