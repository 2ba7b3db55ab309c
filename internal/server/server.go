package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/cors"

	"github.com/dukerupert/dayboard/internal/auth"
	"github.com/dukerupert/dayboard/internal/handler"
	"github.com/dukerupert/dayboard/internal/metrics"
	"github.com/dukerupert/dayboard/internal/middleware"
	"github.com/dukerupert/dayboard/internal/model"
	"github.com/dukerupert/dayboard/internal/notify"
	"github.com/dukerupert/dayboard/internal/store"
	ws "github.com/dukerupert/dayboard/internal/websocket"
)

// Manual digest and message sends per user per minute.
const manualSendLimit = 10

type Config struct {
	Tokens         *auth.Tokens
	Email          notify.EmailSender
	WhatsApp       notify.MessageSender
	Location       *time.Location
	AllowedOrigins []string
}

type Server struct {
	db             *sql.DB
	users          *store.UserStore
	hub            *ws.Hub
	tokens         *auth.Tokens
	dispatcher     *notify.Dispatcher
	scheduler      *notify.Scheduler
	digestH        *handler.DigestHandler
	settingsH      *handler.SettingsHandler
	statsH         *handler.StatsHandler
	rateLimiter    *middleware.RateLimiter
	allowedOrigins []string
	logger         *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	habitStore := store.NewHabitStore(db)
	taskStore := store.NewTaskStore(db)
	journalStore := store.NewJournalStore(db)
	digestLogStore := store.NewDigestLogStore(db)

	opts := []notify.Option{
		notify.WithEvents(hub),
		notify.WithLocation(cfg.Location),
		notify.WithLogger(logger),
	}
	if cfg.Email != nil {
		opts = append(opts, notify.WithEmail(cfg.Email))
	}
	if cfg.WhatsApp != nil {
		opts = append(opts, notify.WithWhatsApp(cfg.WhatsApp))
	}
	dispatcher := notify.NewDispatcher(userStore, habitStore, taskStore, opts...)

	return &Server{
		db:             db,
		users:          userStore,
		hub:            hub,
		tokens:         cfg.Tokens,
		dispatcher:     dispatcher,
		scheduler:      notify.NewScheduler(dispatcher, userStore, digestLogStore, logger),
		digestH:        handler.NewDigestHandler(dispatcher, logger),
		settingsH:      handler.NewSettingsHandler(userStore, hub),
		statsH:         handler.NewStatsHandler(habitStore, taskStore, journalStore, dispatcher.Now),
		rateLimiter:    middleware.NewRateLimiter(manualSendLimit, time.Minute),
		allowedOrigins: cfg.AllowedOrigins,
		logger:         logger,
	}
}

// Scheduler returns the digest scheduler so the caller controls its lifetime.
func (s *Server) Scheduler() *notify.Scheduler {
	return s.scheduler
}

// Dispatcher returns the digest dispatcher.
func (s *Server) Dispatcher() *notify.Dispatcher {
	return s.dispatcher
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", metrics.Handler())

	// Protected routes, wrapped with RequireAuth
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens)
	outerMux.Handle("/", authMiddleware(protectedMux))

	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           600,
	})

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(c.Handler(outerMux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.UserKey)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Digest triggers
	mux.HandleFunc("POST /api/digest/{kind}", s.rateLimitedHandler(s.digestH.Send))
	mux.HandleFunc("POST /api/email/send", s.rateLimitedHandler(s.digestH.SendMessage(model.ChannelEmail)))
	mux.HandleFunc("POST /api/email/{kind}", s.rateLimitedHandler(s.digestH.SendOn(model.ChannelEmail)))
	mux.HandleFunc("POST /api/whatsapp/send", s.rateLimitedHandler(s.digestH.SendMessage(model.ChannelWhatsApp)))
	mux.HandleFunc("POST /api/whatsapp/{kind}", s.rateLimitedHandler(s.digestH.SendOn(model.ChannelWhatsApp)))

	// Admin
	mux.Handle("POST /api/admin/users/{id}/digest/{kind}", middleware.RequireAdmin(s.users)(http.HandlerFunc(s.digestH.SendFor)))

	// Settings API routes
	mux.HandleFunc("GET /api/settings/notifications", s.settingsH.GetNotifications)
	mux.HandleFunc("PUT /api/settings/notifications", s.settingsH.UpdateNotifications)

	// Stats
	mux.HandleFunc("GET /api/stats/today", s.statsH.Today)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.wsOriginPatterns()))
}

// wsOriginPatterns maps CORS origins to websocket host patterns.
func (s *Server) wsOriginPatterns() []string {
	var patterns []string
	for _, o := range s.allowedOrigins {
		if o == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}
