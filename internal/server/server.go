package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/transitlk/notifier/internal/auth"
	"github.com/transitlk/notifier/internal/dispatch"
	"github.com/transitlk/notifier/internal/handler"
	"github.com/transitlk/notifier/internal/middleware"
	"github.com/transitlk/notifier/internal/push"
	"github.com/transitlk/notifier/internal/store"
	ws "github.com/transitlk/notifier/internal/websocket"
)

// Config holds the service-level settings main reads from the environment.
type Config struct {
	JWTSecret         string
	Push              push.Config
	LookupConcurrency int
	SendConcurrency   int
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	pushH         *handler.PushHandler
	notificationH *handler.NotificationHandler
	verifier      *auth.Verifier
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	subStore := store.NewSubscriptionStore(db)
	userStore := store.NewUserStore(db)
	notifStore := store.NewNotificationStore(db)

	pushSvc := push.NewService(cfg.Push)
	resolver := dispatch.NewResolver(userStore, subStore, cfg.LookupConcurrency, logger.With("component", "resolver"))
	engine := dispatch.NewEngine(pushSvc, subStore, cfg.SendConcurrency, logger.With("component", "engine"))
	dispatcher := dispatch.NewService(notifStore, resolver, engine, logger.With("component", "dispatch"))

	return &Server{
		db:            db,
		hub:           hub,
		pushH:         handler.NewPushHandler(subStore, pushSvc, hub, logger.With("component", "push_handler")),
		notificationH: handler.NewNotificationHandler(dispatcher, notifStore, hub, logger.With("component", "notification_handler")),
		verifier:      auth.NewVerifier(cfg.JWTSecret),
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	admin := middleware.RequireAdmin(s.verifier)
	limited := middleware.RateLimit(s.rateLimiter, 30, time.Minute)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Public push endpoints
	mux.Handle("POST /api/push/subscribe", limited(http.HandlerFunc(s.pushH.Subscribe)))
	mux.Handle("POST /api/push/unsubscribe", limited(http.HandlerFunc(s.pushH.Unsubscribe)))
	mux.HandleFunc("GET /api/push/vapid-public-key", s.pushH.VAPIDPublicKey)

	// Public click tracking
	mux.HandleFunc("POST /api/notifications/click", s.notificationH.Click)

	// Admin notification endpoints
	mux.Handle("POST /api/notifications/send", admin(http.HandlerFunc(s.notificationH.Send)))
	mux.Handle("GET /api/notifications/{id}", admin(http.HandlerFunc(s.notificationH.Details)))
	mux.Handle("GET /api/notifications", admin(http.HandlerFunc(s.notificationH.List)))

	// Admin dispatch-event stream; token arrives as a query parameter
	mux.Handle("GET /ws", admin(ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket"))))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

// StartRateLimiterCleanup prunes expired limiter entries until ctx is done.
func (s *Server) StartRateLimiterCleanup(done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				s.rateLimiter.Cleanup()
			}
		}
	}()
}
