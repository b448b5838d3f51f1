package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/soluo/mental-load/internal/auth"
	"github.com/soluo/mental-load/internal/config"
	"github.com/soluo/mental-load/internal/handler"
	"github.com/soluo/mental-load/internal/metrics"
	"github.com/soluo/mental-load/internal/middleware"
	"github.com/soluo/mental-load/internal/push"
	"github.com/soluo/mental-load/internal/store"
	"github.com/soluo/mental-load/internal/websocket"
)

// Server wires stores, handlers, and middleware into an http.Handler.
type Server struct {
	logger      *slog.Logger
	metrics     *metrics.Metrics
	hub         *websocket.Hub
	rateLimiter *middleware.RateLimiter

	userStore    *store.UserStore
	sessionStore *store.SessionStore
	memberStore  *store.MemberStore
	jwtManager   *auth.JWTManager

	pushService   *push.Service
	pushScheduler *push.Scheduler

	authH       *handler.AuthHandler
	householdH  *handler.HouseholdHandler
	memberH     *handler.MemberHandler
	taskH       *handler.TaskHandler
	completionH *handler.CompletionHandler
	statsH      *handler.StatsHandler
	pushH       *handler.PushHandler
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	users := store.NewUserStore(db)
	sessions := store.NewSessionStore(db)
	households := store.NewHouseholdStore(db)
	members := store.NewMemberStore(db)
	tasks := store.NewTaskStore(db)
	completions := store.NewCompletionStore(db)
	pushStore := store.NewPushStore(db)

	m := metrics.New()
	hub := websocket.NewHub(logger.With("component", "websocket"))
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)

	pushService := push.NewService(cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey, cfg.Push.Subscriber)
	pushScheduler := push.NewScheduler(pushService, pushStore, tasks, m, logger.With("component", "push"))

	return &Server{
		logger:      logger,
		metrics:     m,
		hub:         hub,
		rateLimiter: middleware.NewRateLimiter(),

		userStore:    users,
		sessionStore: sessions,
		memberStore:  members,
		jwtManager:   jwtManager,

		pushService:   pushService,
		pushScheduler: pushScheduler,

		authH:       handler.NewAuthHandler(users, sessions, jwtManager, cfg.SessionTTL, logger.With("component", "auth")),
		householdH:  handler.NewHouseholdHandler(households, members, hub, logger.With("component", "household")),
		memberH:     handler.NewMemberHandler(members, hub, logger.With("component", "member")),
		taskH:       handler.NewTaskHandler(tasks, completions, members, hub, m, logger.With("component", "task")),
		completionH: handler.NewCompletionHandler(completions, tasks, members, hub, logger.With("component", "completion")),
		statsH:      handler.NewStatsHandler(completions, members, tasks, logger.With("component", "stats")),
		pushH:       handler.NewPushHandler(pushStore, pushService, logger.With("component", "push")),
	}
}

// SessionStore exposes the session store for the expiry cleanup loop.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter exposes the limiter for its periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// PushService reports whether push is configured.
func (s *Server) PushService() *push.Service {
	return s.pushService
}

// PushScheduler exposes the overdue reminder scheduler.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// Router builds the full route table.
func (s *Server) Router() http.Handler {
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", s.metrics.Handler())

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore, s.memberStore, s.jwtManager)
	outerMux.Handle("/", authMiddleware(protectedMux))

	h := s.metrics.Instrument(outerMux)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)

	// Households and membership
	mux.HandleFunc("POST /api/households", s.householdH.Create)
	mux.HandleFunc("POST /api/households/{id}/join", s.householdH.Join)
	mux.HandleFunc("GET /api/household", s.householdH.Current)
	mux.HandleFunc("POST /api/household/leave", s.householdH.Leave)
	mux.HandleFunc("GET /api/households/{id}/members", s.memberH.List)
	mux.HandleFunc("POST /api/households/{id}/members", s.memberH.Add)
	mux.HandleFunc("PUT /api/members/{id}", s.memberH.Update)
	mux.HandleFunc("DELETE /api/members/{id}", s.memberH.Remove)

	// Tasks
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/assign", s.taskH.Assign)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/uncomplete", s.taskH.Uncomplete)
	mux.HandleFunc("GET /api/households/{id}/tasks/available", s.taskH.Available)
	mux.HandleFunc("GET /api/households/{id}/tasks/picker", s.taskH.Picker)
	mux.HandleFunc("GET /api/tasks/{id}/history", s.taskH.History)

	// Completions
	mux.HandleFunc("GET /api/households/{id}/completions/recent", s.completionH.Recent)
	mux.HandleFunc("GET /api/completions/{id}", s.completionH.Get)
	mux.HandleFunc("PUT /api/completions/{id}", s.completionH.Update)

	// Stats and reports
	mux.HandleFunc("GET /api/members/{id}/stats", s.statsH.MemberStats)
	mux.HandleFunc("GET /api/households/{id}/activity/daily", s.statsH.DailyActivity)
	mux.HandleFunc("GET /api/households/{id}/report/weekly", s.statsH.WeeklyReport)
	mux.HandleFunc("GET /api/households/{id}/stats/daily", s.statsH.DailyStats)

	// Push notifications
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)

	// WebSocket for live household updates
	mux.HandleFunc("GET /ws", websocket.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
