package handlers

import (
	"errors"
	"net/http"

	"github.com/aoki-blog/apiserver/internal/auth"
	"github.com/aoki-blog/apiserver/internal/logging"
	"github.com/aoki-blog/apiserver/internal/services"
	"github.com/aoki-blog/apiserver/internal/store"
	"github.com/aoki-blog/apiserver/internal/validate"
	"github.com/aoki-blog/apiserver/types"
)

// AuthHandler provides sign-up and log-in endpoints.
type AuthHandler struct {
	users  *services.UserService
	tokens *auth.TokenService
	log    logging.Logger
	dev    bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(users *services.UserService, tokens *auth.TokenService, log logging.Logger, dev bool) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log, dev: dev}
}

// AuthResponse carries a freshly issued token and its user.
type AuthResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    types.User `json:"user"`
}

// SignUp creates a new public user account and returns a token for it.
// The route's validation middleware has already sanitized the body.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	values := valuesFromContext(r.Context())
	email := values.String(validate.FieldEmail)

	if _, err := h.users.GetByEmail(r.Context(), email); err == nil {
		writeError(w, http.StatusBadRequest, "email already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		internalError(w, r, h.log, h.dev, "failed to check email", err)
		return
	}

	hashed, err := auth.HashPassword(values.String(validate.FieldPassword))
	if err != nil {
		internalError(w, r, h.log, h.dev, "failed to create user", err)
		return
	}

	user, err := h.users.Create(r.Context(), types.User{
		FullName:     values.String(validate.FieldFullName),
		Email:        email,
		PasswordHash: hashed,
	})
	if err != nil {
		internalError(w, r, h.log, h.dev, "failed to create user", err)
		return
	}

	token, err := h.tokens.Issue(types.PrincipalOf(user))
	if err != nil {
		internalError(w, r, h.log, h.dev, "failed to create token", err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "added new public user",
		Token:   token,
		User:    user,
	})
}

// LogIn verifies credentials and returns a token.
func (h *AuthHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	h.logIn(w, r, false)
}

// AdminLogIn verifies credentials and additionally requires the
// administrator flag before issuing a token.
func (h *AuthHandler) AdminLogIn(w http.ResponseWriter, r *http.Request) {
	h.logIn(w, r, true)
}

func (h *AuthHandler) logIn(w http.ResponseWriter, r *http.Request, elevated bool) {
	values := valuesFromContext(r.Context())

	user, err := h.users.GetByEmail(r.Context(), values.String(validate.FieldEmail))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "wrong email")
			return
		}
		internalError(w, r, h.log, h.dev, "failed to authenticate", err)
		return
	}

	// The validator escaped the submitted password exactly as it did at
	// sign-up, so the comparison sees the same bytes that were hashed.
	if !auth.CheckPassword(values.String(validate.FieldPassword), user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	}

	if elevated && !user.IsAdmin {
		writeUnauthorized(w)
		return
	}

	message := "successful public login"
	if elevated {
		message = "successful login of admin"
	}

	token, err := h.tokens.Issue(types.PrincipalOf(user))
	if err != nil {
		internalError(w, r, h.log, h.dev, "failed to create token", err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Message: message,
		Token:   token,
		User:    user,
	})
}
