package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/stockpile-hq/stockpile/internal/model"
	"github.com/stockpile-hq/stockpile/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	secure      bool
	expiry      time.Duration
}

func NewAuthHandler(authService *service.AuthService, secure bool, expiry time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		secure:      secure,
		expiry:      expiry,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	OrganizationID *string   `json:"organizationId"`
	CreatedAt      time.Time `json:"createdAt"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Email:          u.Email,
		OrganizationID: u.OrganizationID,
		CreatedAt:      u.CreatedAt,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.authService.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.issueToken(w, r, user, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	user, err := h.authService.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeErrorBody(w, http.StatusUnauthorized, errorBody{Kind: "unauthorized", Message: service.ErrInvalidCredentials.Error()})
			return
		}
		slog.Error("failed to log in", "error", err)
		writeError(w, r, err)
		return
	}

	h.issueToken(w, r, user, http.StatusOK)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request, user *model.User, status int) {
	token, err := h.authService.GenerateJWT(user)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "user_id", user.ID)
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.expiry.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, status, tokenResponse{Token: token, User: toUserResponse(user)})
}
