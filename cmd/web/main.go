// cmd/web/main.go
//
// Digital Madrasa edge – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (host-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load config (YAML + env overlays, Vault-resolved secrets).
//
//  4. Open the GeoLite2 DB and, when configured, the click-journal pool.
//
//  5. Build the backend client, the session stores/managers, and the
//     referral flow; subscribe the audit logger to session events.
//
//  6. Expose Prometheus /metrics and assemble the middleware chain:
//     request-info enrichment → security headers → route guard → pages.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/digitalmadrasa/edge/internal/backend"
	"github.com/digitalmadrasa/edge/internal/config"
	"github.com/digitalmadrasa/edge/internal/database"
	"github.com/digitalmadrasa/edge/internal/guard"
	"github.com/digitalmadrasa/edge/internal/logger"
	"github.com/digitalmadrasa/edge/internal/middleware"
	"github.com/digitalmadrasa/edge/internal/referral"
	"github.com/digitalmadrasa/edge/internal/requestinfo"
	"github.com/digitalmadrasa/edge/internal/server"
	"github.com/digitalmadrasa/edge/internal/session"
	"github.com/digitalmadrasa/edge/internal/web"
)

const serverEnvPath = "/usr/local/etc/madrasa-edge/global.env"

// loadEnv prefers the host-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Config (YAML + env + Vault) ─────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Request enrichment and the click journal ────────────────────
	//
	if err := requestinfo.InitGeo(cfg.GeoIP.Path); err != nil {
		// Geo is an enrichment, not a dependency; clicks still record.
		logOut.Warnf("geoip disabled: %v", err)
	}

	var journal *referral.Journal
	if cfg.Journal.DSN != "" {
		jdb, err := database.Open(cfg.Journal.DSN)
		if err != nil {
			logOut.Fatalf("open click journal: %v", err)
		}
		defer jdb.Close()
		journal = referral.NewJournal(jdb)
		logOut.Infow("click journal online")
	} else {
		logOut.Infow("click journal disabled")
	}

	//
	// ── 3.  Backend client, sessions, referral flow ─────────────────────
	//
	api := backend.New(cfg.API.BaseURL, cfg.API.Key, time.Duration(cfg.API.Timeout)*time.Second)

	bus := session.NewBroadcaster()
	go auditSessions(bus.Subscribe())

	secure := cfg.HTTP.SecureCookies
	users := session.NewManager(
		session.NewStore(session.KindUser, secure, bus), backend.UserAuth{C: api}, 0)
	admins := session.NewManager(
		session.NewStore(session.KindAdmin, secure, bus), backend.AdminAuth{C: api}, 0)

	flow := referral.NewFlow(api, journal, cfg.Referral.EnrollURL)

	pages := &web.Handler{
		Users:                users,
		Admins:               admins,
		API:                  api,
		Flow:                 flow,
		Journal:              journal,
		FallbackDelaySeconds: cfg.Referral.FallbackDelay,
	}

	//
	// ── 4.  Router: enrichment → headers → guard → pages ───────────────
	//
	r := chi.NewRouter()
	r.Use(requestinfo.Enrich)
	r.Use(middleware.Security)
	r.Use(guard.Protect)
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", pages.Routes())

	var root http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		root = middleware.ForceHTTPS(root)
	}

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, root)
	logOut.Infow("edge online", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
}

// auditSessions writes one log line per session change so logins and
// logouts are traceable without reading cookies anywhere else.
func auditSessions(events <-chan session.Event) {
	for ev := range events {
		role := "user"
		if ev.Kind == session.KindAdmin {
			role = "admin"
		}
		zap.S().Infow("session "+ev.Op.String(), "role", role)
	}
}
