package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Marcel-mosha/task-manager/internal/services"
	"github.com/Marcel-mosha/task-manager/types"
	"github.com/go-chi/chi/v5"
)

const registrationMessage = "Registration successful"

// SessionStore resolves and manages cookie sessions. It is optional; a
// nil store disables cookie authentication.
type SessionStore interface {
	Create(ctx context.Context, userID int) (string, error)
	Resolve(ctx context.Context, cookieValue string) (int, error)
	Revoke(ctx context.Context, cookieValue string) error
}

// AuthHandler provides registration, login, and session endpoints.
type AuthHandler struct {
	authService *services.AuthService
	sessions    SessionStore
	cookieName  string
	sessionTTL  time.Duration
}

// NewAuthHandler constructs an AuthHandler. sessions may be nil.
func NewAuthHandler(authService *services.AuthService, sessions SessionStore, cookieName string, sessionTTL time.Duration) *AuthHandler {
	if cookieName == "" {
		cookieName = "sessionid"
	}
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		cookieName:  cookieName,
		sessionTTL:  sessionTTL,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.With(handler.RequireAuth).Get("/users/me", handler.Me)
}

// RequireAuth authenticates the request by bearer token or session
// cookie and injects the resolved user into the request context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), contextUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *AuthHandler) authenticate(r *http.Request) (types.User, error) {
	if key, ok := headerToken(r); ok {
		return h.authService.ResolveToken(r.Context(), key)
	}

	if h.sessions != nil {
		if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" {
			userID, err := h.sessions.Resolve(r.Context(), cookie.Value)
			if err != nil {
				return types.User{}, err
			}
			return h.authService.GetByID(r.Context(), userID)
		}
	}

	return types.User{}, errors.New("no credentials")
}

// headerToken extracts the opaque key from the Authorization header.
// Both the "Token" scheme and the "Bearer" scheme are accepted.
func headerToken(r *http.Request) (string, bool) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Token") && !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	key := strings.TrimSpace(parts[1])
	if key == "" {
		return "", false
	}
	return key, true
}

// Register creates a new account and returns it with its bearer token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.establishSession(w, r, user.ID)
	writeJSON(w, http.StatusCreated, AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
		Message:  registrationMessage,
	})
}

// Login verifies credentials and returns the user with their token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.establishSession(w, r, user.ID)
	writeJSON(w, http.StatusOK, AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	})
}

// Logout revokes the current session cookie, if any. Bearer tokens are
// unaffected; they never expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.sessions != nil {
		if cookie, err := r.Cookie(h.cookieName); err == nil && cookie.Value != "" {
			if err := h.sessions.Revoke(r.Context(), cookie.Value); err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name:     h.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// establishSession sets a session cookie alongside the token response
// when cookie sessions are enabled. A session failure does not fail the
// login; the bearer token already authenticates the caller.
func (h *AuthHandler) establishSession(w http.ResponseWriter, r *http.Request, userID int) {
	if h.sessions == nil {
		return
	}
	value, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(h.sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the user fields at the top level next to the
// token, matching what API clients expect from register and login.
type AuthResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
	Message  string `json:"message,omitempty"`
}
