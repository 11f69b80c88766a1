package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/clipstream/backend/internal/models"
)

const (
	accessCookieName  = "clipstream_access"
	refreshCookieName = "clipstream_refresh"
)

// TokenVerifier validates access tokens and resolves the user they belong to.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// viewerID resolves the authenticated user for the request, or the empty
// string for anonymous callers. The access token is read from the session
// cookie first and the Authorization header as a fallback.
func viewerID(r *http.Request, verifier TokenVerifier) string {
	if verifier == nil {
		return ""
	}

	token := accessTokenFromRequest(r)
	if token == "" {
		return ""
	}

	userID, err := verifier.Verify(token)
	if err != nil {
		return ""
	}
	return userID
}

// requireViewer resolves the viewer and writes a 401 when the request carries
// no valid access token. The caller must return when ok is false.
func requireViewer(w http.ResponseWriter, r *http.Request, verifier TokenVerifier) (string, bool) {
	id := viewerID(r, verifier)
	if id == "" {
		respondError(r.Context(), w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return id, true
}

func accessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(accessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
