package handlers

import (
	"net/http"
	"time"

	"github.com/skilloww/cs2panel/middleware"
	"github.com/skilloww/cs2panel/services"
)

type AuthHandler struct {
	authService   services.AuthService
	secureCookies bool
}

func NewAuthHandler(authService services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

// SteamLogin redirects the browser to Steam's OpenID endpoint.
func (h *AuthHandler) SteamLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.authService.LoginURL(), http.StatusFound)
}

// SteamReturn completes the OpenID handshake, sets the session cookie
// and sends the browser back to the panel.
func (h *AuthHandler) SteamReturn(w http.ResponseWriter, r *http.Request) {
	_, token, err := h.authService.CompleteLogin(r.Context(), r.URL.Query())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
