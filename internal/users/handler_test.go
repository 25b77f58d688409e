package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkozhevn/photocards/internal/auth"
	"github.com/mkozhevn/photocards/internal/middleware"
	"github.com/mkozhevn/photocards/internal/mockstorage"
	"github.com/mkozhevn/photocards/internal/models"
)

func newTestHandler(t *testing.T) (*Handler, *mockstorage.Store) {
	t.Helper()
	st := mockstorage.New()
	tokens := auth.NewTokenService([]byte("test-secret"), time.Hour)
	return NewHandler(st, tokens, zap.NewNop().Sugar()), st
}

func register(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	return rec
}

func TestRegister(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	rec := register(t, h, `{"email":"a@b.com","password":"secret1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "a@b.com", user["email"])
	assert.Equal(t, models.DefaultName, user["name"])
	assert.Equal(t, models.DefaultAbout, user["about"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, rec.Body.String(), "secret1")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, register(t, h, `{"email":"a@b.com","password":"x1"}`).Code)

	rec := register(t, h, `{"email":"a@b.com","password":"x2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"nope","password":"x"}`},
		{"missing password", `{"email":"a@b.com"}`},
		{"short name", `{"email":"a@b.com","password":"x","name":"j"}`},
		{"long about", `{"email":"a@b.com","password":"x","about":"` + strings.Repeat("a", 31) + `"}`},
		{"bad avatar", `{"email":"a@b.com","password":"x","avatar":"ftp://pic"}`},
		{"not json", `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, register(t, h, tt.body).Code)
		})
	}
}

func login(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLogin(t *testing.T) {
	t.Parallel()

	h, st := newTestHandler(t)
	require.Equal(t, http.StatusCreated, register(t, h, `{"email":"a@b.com","password":"secret1"}`).Code)

	rec := login(t, h, `{"email":"a@b.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp["token"])

	// The token must verify back to the registered user.
	userID, err := h.tokens.Verify(resp["token"])
	require.NoError(t, err)
	stored, err := st.GetUserByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, stored.ID.Hex(), userID)
}

func TestLoginDoesNotRevealWhichFieldIsWrong(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusCreated, register(t, h, `{"email":"a@b.com","password":"secret1"}`).Code)

	wrongPassword := login(t, h, `{"email":"a@b.com","password":"wrong"}`)
	unknownEmail := login(t, h, `{"email":"nobody@b.com","password":"secret1"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func authedRequest(method, target, body, userID string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func newParamRouter(get http.HandlerFunc) chi.Router {
	r := chi.NewRouter()
	r.Get("/users/{id}", get)
	return r
}

func TestMe(t *testing.T) {
	t.Parallel()

	h, st := newTestHandler(t)
	require.Equal(t, http.StatusCreated, register(t, h, `{"email":"a@b.com","password":"x"}`).Code)
	stored, err := st.GetUserByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.Me(rec, authedRequest(http.MethodGet, "/users/me", "", stored.ID.Hex()))

	require.Equal(t, http.StatusOK, rec.Code)
	var user models.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "a@b.com", user.Email)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	h, st := newTestHandler(t)
	require.Equal(t, http.StatusCreated, register(t, h, `{"email":"a@b.com","password":"x"}`).Code)
	stored, err := st.GetUserByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, authedRequest(http.MethodPatch, "/users/me",
		`{"name":"Cliff","about":"Climber"}`, stored.ID.Hex()))

	require.Equal(t, http.StatusOK, rec.Code)
	var user models.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "Cliff", user.Name)
	assert.Equal(t, "Climber", user.About)
}

func TestUpdateAvatar(t *testing.T) {
	t.Parallel()

	h, st := newTestHandler(t)
	require.Equal(t, http.StatusCreated, register(t, h, `{"email":"a@b.com","password":"x"}`).Code)
	stored, err := st.GetUserByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.UpdateAvatar(rec, authedRequest(http.MethodPatch, "/users/me/avatar",
		`{"avatar":"http://x.com/new.jpg"}`, stored.ID.Hex()))

	require.Equal(t, http.StatusOK, rec.Code)
	var user models.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "http://x.com/new.jpg", user.Avatar)

	// The change is persisted, not just echoed.
	updated, err := st.GetUserByID(context.Background(), stored.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "http://x.com/new.jpg", updated.Avatar)
}

func TestUpdateAvatarValidation(t *testing.T) {
	t.Parallel()

	h, st := newTestHandler(t)
	require.Equal(t, http.StatusCreated, register(t, h, `{"email":"a@b.com","password":"x"}`).Code)
	stored, err := st.GetUserByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.UpdateAvatar(rec, authedRequest(http.MethodPatch, "/users/me/avatar",
		`{"avatar":"not-a-url"}`, stored.ID.Hex()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserMalformedID(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/users/zzz", nil)
	rec := httptest.NewRecorder()

	// Route through chi so URLParam resolves.
	r := newParamRouter(h.Get)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserAbsent(t *testing.T) {
	t.Parallel()

	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/users/507f1f77bcf86cd799439011", nil)
	rec := httptest.NewRecorder()
	newParamRouter(h.Get).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
