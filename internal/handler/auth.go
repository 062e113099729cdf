package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/ghala-dashboard/internal/session"
)

type sessionKey struct{}

// SessionFromContext extracts the authenticated session from the request
// context. It returns nil outside RequireAuth-protected routes.
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey{}).(*session.Session)
	return s
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userPayload struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	MerchantID string `json:"merchant_id,omitempty"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    userPayload `json:"user"`
}

// Login authenticates the credentials and issues a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeFailure(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Token:   result.Token,
		User: userPayload{
			Username:   result.Session.Username,
			Name:       result.Session.Name,
			Email:      result.Session.Email,
			Role:       result.Session.Role,
			MerchantID: result.Session.MerchantID,
		},
	})
}

// Logout revokes the caller's bearer token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		_ = h.auth.Logout(r.Context(), token)
	}
	writeSuccess(w, "")
}

// RequireAuth resolves the bearer token to a session and enforces that
// merchant-scoped routes are only reached by their owner or an admin.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeFailure(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		sess, err := h.auth.Authenticate(r.Context(), token)
		if err != nil {
			writeFailure(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		if merchantID := chi.URLParam(r, "merchantID"); merchantID != "" {
			if sess.Role != "admin" && sess.MerchantID != merchantID {
				writeFailure(w, http.StatusForbidden, "merchant access denied")
				return
			}
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header, falling back
// to the token query parameter for WebSocket clients that cannot set headers.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
