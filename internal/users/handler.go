// Package users implements registration, login and profile HTTP handlers.
package users

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mkozhevn/photocards/internal/apperr"
	"github.com/mkozhevn/photocards/internal/auth"
	"github.com/mkozhevn/photocards/internal/middleware"
	"github.com/mkozhevn/photocards/internal/models"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id, name, about string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id, avatar string) (*models.User, error)
}

// Handler holds user-related HTTP handlers.
type Handler struct {
	store    UserStore
	tokens   *auth.TokenService
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewHandler(store UserStore, tokens *auth.TokenService, log *zap.SugaredLogger) *Handler {
	return &Handler{
		store:    store,
		tokens:   tokens,
		validate: validator.New(),
		log:      log,
	}
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Validation, "invalid user data", err))
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Internal, "hash password", err))
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hashed,
		Name:         req.Name,
		About:        req.About,
		Avatar:       req.Avatar,
	}
	if user.Name == "" {
		user.Name = models.DefaultName
	}
	if user.About == "" {
		user.About = models.DefaultAbout
	}
	if user.Avatar == "" {
		user.Avatar = models.DefaultAvatar
	}

	created, err := h.store.CreateUser(r.Context(), user)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, created.Public())
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the identical response so neither can be probed.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Validation, "invalid credentials format", err))
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			apperr.Respond(w, h.log, apperr.New(apperr.Unauthorized, "wrong email or password"))
			return
		}
		apperr.Respond(w, h.log, err)
		return
	}

	ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Internal, "verify password", err))
		return
	}
	if !ok {
		apperr.Respond(w, h.log, apperr.New(apperr.Unauthorized, "wrong email or password"))
		return
	}

	token, err := h.tokens.Issue(user.ID.Hex())
	if err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Internal, "issue token", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// List returns all users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}

	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns a single user by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// Me returns the caller's own profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUserByID(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// UpdateProfile updates the caller's own name and about fields.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Validation, "invalid profile data", err))
		return
	}

	user, err := h.store.UpdateProfile(r.Context(), middleware.UserID(r.Context()), req.Name, req.About)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

// UpdateAvatar updates the caller's own avatar.
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAvatarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Validation, "invalid request body", err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.Respond(w, h.log, apperr.Wrap(apperr.Validation, "invalid avatar data", err))
		return
	}

	user, err := h.store.UpdateAvatar(r.Context(), middleware.UserID(r.Context()), req.Avatar)
	if err != nil {
		apperr.Respond(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}
