// Package web exposes the planner over a JSON HTTP API: role and goal
// CRUD, the closeout state machine, stats, summaries and the Google
// consent flow.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"compass/internal/adapters/auth"
	"compass/internal/adapters/http/middleware"
	goalStore "compass/internal/adapters/storage/goal"
	reflectionStore "compass/internal/adapters/storage/reflection"
	roleStore "compass/internal/adapters/storage/role"
	settingsStore "compass/internal/adapters/storage/settings"
	"compass/internal/application/session"
)

// Stores holds all storage dependencies.
type Stores struct {
	RoleStore       roleStore.Store
	GoalStore       goalStore.Store
	ReflectionStore reflectionStore.Store
	SettingsStore   settingsStore.Store
}

// Deps wires the API to the rest of the application. Auth is nil for
// backends that need no Google consent flow.
type Deps struct {
	Stores  *Stores
	Session *session.Manager
	Auth    *auth.GoogleProvider
}

// loadCSRFKey reads the CSRF secret from COMPASS_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("COMPASS_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("COMPASS_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("COMPASS_ENV") == "production" {
		log.Fatal("COMPASS_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set COMPASS_CSRF_KEY for production.")
	return key
}

// Global deps instance (set by NewMux)
var deps *Deps

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 20

// NewMux wires HTTP handlers for the app.
func NewMux(d *Deps) http.Handler {
	deps = d

	mux := http.NewServeMux()
	registerRoutes(mux)

	csrfKey := loadCSRFKey()
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.RateLimit(limiter),
		middleware.RequestLog,
	)
}
