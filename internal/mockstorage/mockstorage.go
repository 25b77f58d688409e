// Package mockstorage provides an in-memory store used by handler and
// router tests. It mirrors the MongoDB store's error semantics: malformed
// hex ids are validation failures, duplicate emails conflict, and like-set
// updates are idempotent.
package mockstorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mkozhevn/photocards/internal/apperr"
	"github.com/mkozhevn/photocards/internal/models"
)

// Store keeps users and cards in memory behind a mutex.
type Store struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
	cards map[primitive.ObjectID]models.Card
}

func New() *Store {
	return &Store{
		users: map[primitive.ObjectID]models.User{},
		cards: map[primitive.ObjectID]models.Card{},
	}
}

func parseID(id, what string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap(apperr.Validation, "invalid "+what+" id", err)
	}
	return oid, nil
}

// ── Users ────────────────────────────────────────────────

func (s *Store) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, apperr.New(apperr.Conflict, "user with this email already exists")
		}
	}

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return user, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperr.New(apperr.NotFound, "user not found")
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[oid]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return &u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *Store) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Store) UpdateProfile(_ context.Context, id, name, about string) (*models.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[oid]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	if name != "" {
		u.Name = name
	}
	if about != "" {
		u.About = about
	}
	s.users[oid] = u
	return &u, nil
}

func (s *Store) UpdateAvatar(_ context.Context, id, avatar string) (*models.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[oid]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	u.Avatar = avatar
	s.users[oid] = u
	return &u, nil
}

// ── Cards ────────────────────────────────────────────────

func (s *Store) InsertCard(_ context.Context, card *models.Card) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card.ID = primitive.NewObjectID()
	card.CreatedAt = time.Now()
	if card.Likes == nil {
		card.Likes = []primitive.ObjectID{}
	}
	s.cards[card.ID] = *card
	return card, nil
}

func (s *Store) ListCards(_ context.Context) ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetCardByID(_ context.Context, id string) (*models.Card, error) {
	oid, err := parseID(id, "card")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards[oid]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "card not found")
	}
	return &c, nil
}

func (s *Store) DeleteCard(_ context.Context, id string) error {
	oid, err := parseID(id, "card")
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[oid]; !ok {
		return apperr.New(apperr.NotFound, "card not found")
	}
	delete(s.cards, oid)
	return nil
}

func (s *Store) LikeCard(_ context.Context, id string, userID primitive.ObjectID) (*models.Card, error) {
	return s.updateLikes(id, func(likes []primitive.ObjectID) []primitive.ObjectID {
		for _, l := range likes {
			if l == userID {
				return likes
			}
		}
		return append(likes, userID)
	})
}

func (s *Store) UnlikeCard(_ context.Context, id string, userID primitive.ObjectID) (*models.Card, error) {
	return s.updateLikes(id, func(likes []primitive.ObjectID) []primitive.ObjectID {
		out := make([]primitive.ObjectID, 0, len(likes))
		for _, l := range likes {
			if l != userID {
				out = append(out, l)
			}
		}
		return out
	})
}

func (s *Store) updateLikes(id string, apply func([]primitive.ObjectID) []primitive.ObjectID) (*models.Card, error) {
	oid, err := parseID(id, "card")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards[oid]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "card not found")
	}
	c.Likes = apply(c.Likes)
	s.cards[oid] = c
	return &c, nil
}
