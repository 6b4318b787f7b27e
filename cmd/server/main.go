package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"compass/internal/adapters/auth"
	emailPkg "compass/internal/adapters/email"
	web "compass/internal/adapters/http"
	"compass/internal/adapters/rowstore"
	"compass/internal/adapters/rowstore/memory"
	"compass/internal/adapters/rowstore/sheets"
	"compass/internal/adapters/rowstore/sqlite"
	goalStore "compass/internal/adapters/storage/goal"
	reflectionStore "compass/internal/adapters/storage/reflection"
	roleStore "compass/internal/adapters/storage/role"
	settingsStore "compass/internal/adapters/storage/settings"
	"compass/internal/application/orchestrators"
	"compass/internal/application/session"
	"compass/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfgPath := envOrDefault("COMPASS_CONFIG", "config.yaml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var provider *auth.GoogleProvider
	var rows rowstore.Store
	switch cfg.Store.Backend {
	case config.BackendSheets:
		passphrase := os.Getenv("COMPASS_TOKEN_PASSPHRASE")
		tokens, err := auth.NewFileTokenStore(cfg.Google.TokenFile, passphrase)
		if err != nil {
			log.Fatalf("failed to open token store: %v", err)
		}
		provider = auth.NewGoogleProvider(
			cfg.Google.ClientID,
			os.Getenv("COMPASS_GOOGLE_CLIENT_SECRET"),
			cfg.Google.RedirectURL,
			tokens,
		)
		rows = sheets.NewStore(sheets.NewClient(provider), cfg.Store.SpreadsheetTitle,
			roleStore.Table, goalStore.Table, settingsStore.Table)
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.Store.SQLitePath,
			roleStore.Table, goalStore.Table, settingsStore.Table)
		if err != nil {
			log.Fatalf("failed to open sqlite store: %v", err)
		}
		defer store.Close()
		rows = store
	case config.BackendMemory:
		rows = memory.NewStore(roleStore.Table, goalStore.Table, settingsStore.Table)
	}

	if err := rows.EnsureStore(context.Background()); err != nil {
		// The sheets backend cannot ensure anything before the user has
		// authenticated; the consent flow fixes this at runtime.
		log.Printf("WARNING: store not ready yet: %v", err)
	}

	stores := &web.Stores{
		RoleStore:       roleStore.NewRowStore(rows),
		GoalStore:       goalStore.NewRowStore(rows),
		ReflectionStore: reflectionStore.NewRowStore(rows),
		SettingsStore:   settingsStore.NewRowStore(rows),
	}
	manager := session.NewManager(stores.RoleStore, stores.GoalStore, stores.ReflectionStore)

	if cfg.Reminder.Enabled {
		var sender emailPkg.Sender
		if resendKey := os.Getenv("COMPASS_RESEND_KEY"); resendKey != "" {
			sender = emailPkg.NewResendSender(resendKey, cfg.Reminder.From)
			log.Println("Email sender configured (Resend)")
		} else {
			sender = emailPkg.NewNoopSender()
			log.Println("Email sender configured (noop; set COMPASS_RESEND_KEY for real delivery)")
		}
		go runReminderLoop(cfg.Reminder, orchestrators.ReminderDeps{
			GoalStore:       stores.GoalStore,
			ReflectionStore: stores.ReflectionStore,
			Sender:          sender,
			To:              cfg.Reminder.To,
			From:            cfg.Reminder.From,
		})
	}

	mux := web.NewMux(&web.Deps{
		Stores:  stores,
		Session: manager,
		Auth:    provider,
	})

	log.Printf("Compass %s starting on %s (backend=%s)", version, cfg.Listen, cfg.Store.Backend)
	if err := http.ListenAndServe(cfg.Listen, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// runReminderLoop sleeps until each cron fire time and sends the weekly
// reminder. Failures are logged and the loop keeps going.
func runReminderLoop(cfg config.ReminderConfig, deps orchestrators.ReminderDeps) {
	for {
		next, err := orchestrators.NextFire(cfg.Cron, time.Now())
		if err != nil {
			log.Printf("reminder loop stopped: %v", err)
			return
		}
		time.Sleep(time.Until(next))
		if err := orchestrators.ExecuteReminder(context.Background(), deps); err != nil {
			log.Printf("reminder failed: %v", err)
		}
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
