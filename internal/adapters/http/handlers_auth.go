package web

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
)

// authState guards the callback against forged redirects. Single-user
// server: one pending consent flow at a time is enough.
var authState string

// handleAuthURL handles GET /auth/url
func handleAuthURL(w http.ResponseWriter, r *http.Request) {
	if deps.Auth == nil {
		http.Error(w, "this backend needs no Google authentication", http.StatusNotFound)
		return
	}
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		internalError(w, err)
		return
	}
	authState = hex.EncodeToString(buf)
	writeJSON(w, http.StatusOK, map[string]string{"url": deps.Auth.AuthURL(authState)})
}

// handleAuthCallback handles GET /auth/callback
func handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	if deps.Auth == nil {
		http.Error(w, "this backend needs no Google authentication", http.StatusNotFound)
		return
	}
	if authState == "" || r.URL.Query().Get("state") != authState {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}
	if err := deps.Auth.Exchange(r.Context(), code); err != nil {
		respondError(w, err)
		return
	}
	authState = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "authenticated"})
}
