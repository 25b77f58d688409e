// Package cards implements the shared card collection HTTP handlers.
package cards

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mkozhevn/photocards/internal/apperr"
	"github.com/mkozhevn/photocards/internal/middleware"
	"github.com/mkozhevn/photocards/internal/models"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// CardStore defines the interface for card persistence.
type CardStore interface {
	InsertCard(ctx context.Context, card *models.Card) (*models.Card, error)
	ListCards(ctx context.Context) ([]models.Card, error)
	GetCardByID(ctx context.Context, id string) (*models.Card, error)
	DeleteCard(ctx context.Context, id string) error
	LikeCard(ctx context.Context, id string, userID primitive.ObjectID) (*models.Card, error)
	UnlikeCard(ctx context.Context, id string, userID primitive.ObjectID) (*models.Card, error)
}

// UserResolver loads the users referenced by cards for read-time expansion.
type UserResolver interface {
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// Handler holds card HTTP handlers.
type Handler struct {
	store    CardStore
	users    UserResolver
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewHandler(store CardStore, users UserResolver, log *zap.SugaredLogger) *Handler {
	return &Handler{
		store:    store,
		users:    users,
		validate: validator.New(),
		log:      log,
	}
}

// expand resolves owner and like references to full users in one lookup.
func (h *Handler) expand(ctx context.Context, cards []models.Card) ([]models.CardResponse, error) {
	seen := map[primitive.ObjectID]struct{}{}
	ids := []primitive.ObjectID{}
	for i := range cards {
		for _, id := range append([]primitive.ObjectID{cards[i].Owner}, cards[i].Likes...) {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	referenced, err := h.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.PublicUser, len(referenced))
	for i := range referenced {
		byID[referenced[i].ID] = referenced[i].Public()
	}

	out := make([]models.CardResponse, 0, len(cards))
	for i := range cards {
		resp := models.CardResponse{
			ID:        cards[i].ID.Hex(),
			Name:      cards[i].Name,
			Link:      cards[i].Link,
			Owner:     byID[cards[i].Owner],
			Likes:     []models.PublicUser{},
			CreatedAt: cards[i].CreatedAt,
		}
		for _, id := range cards[i].Likes {
			if u, ok := byID[id]; ok {
				resp.Likes = append(resp.Likes, u)
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

func (h *Handler) expandOne(ctx context.Context, card *models.Card) (*models.CardResponse, error) {
	resp, err := h.expand(ctx, []models.Card{*card})
	if err != nil {
		return nil, err
	}
	return &resp[0], nil
}

// caller returns the authenticated user's id as an ObjectID.
func caller(r *http.Request) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(middleware.UserID(r.Context()))
	if err != nil {
		return primitive.NilObjectID, apperr.Wrap(apperr.Unauthorized, "authorization required", err)
	}
	return oid, nil
}

// List returns all cards, newest first, with owner and likes resolved.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.store.ListCards(r.Context())
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	out, err := h.expand(r.Context(), cards)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Create adds a card owned by the caller.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	owner, err := caller(r)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	var req models.CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Validation, "invalid card data", err))
		return
	}

	card, err := h.store.InsertCard(r.Context(), &models.Card{
		Name:  req.Name,
		Link:  req.Link,
		Owner: owner,
	})
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	resp, err := h.expandOne(r.Context(), card)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Delete removes a card. Only the owner may delete; everyone else gets 403.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, err := caller(r)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	id := chi.URLParam(r, "id")
	card, err := h.store.GetCardByID(r.Context(), id)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	if card.Owner != owner {
		apperr.Respond(w, h.log, apperr.New(apperr.Forbidden, "no permission to delete this card"))
		return
	}

	resp, err := h.expandOne(r.Context(), card)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	if err := h.store.DeleteCard(r.Context(), id); err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Like adds the caller to the card's like set; repeating it is a no-op.
func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.updateLikes(w, r, h.store.LikeCard)
}

// Unlike removes the caller from the card's like set; a no-op if absent.
func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.updateLikes(w, r, h.store.UnlikeCard)
}

func (h *Handler) updateLikes(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id string, userID primitive.ObjectID) (*models.Card, error),
) {
	userID, err := caller(r)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	card, err := op(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	resp, err := h.expandOne(r.Context(), card)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
