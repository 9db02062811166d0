package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/pawhaven/pawhaven/internal/backup"
	"github.com/pawhaven/pawhaven/internal/handler"
	"github.com/pawhaven/pawhaven/internal/middleware"
	"github.com/pawhaven/pawhaven/internal/push"
	"github.com/pawhaven/pawhaven/internal/store"
	ws "github.com/pawhaven/pawhaven/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	petH          *handler.PetHandler
	reminderH     *handler.ReminderHandler
	scheduleH     *handler.ScheduleHandler
	applicationH  *handler.ApplicationHandler
	lostPetH      *handler.LostPetHandler
	forumH        *handler.ForumHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	pushService   *push.Service
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, backupCfg backup.Config, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	petStore := store.NewPetStore(db)
	reminderStore := store.NewReminderStore(db)
	applicationStore := store.NewApplicationStore(db)
	lostPetStore := store.NewLostPetStore(db)
	forumStore := store.NewForumStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	backupMgr := backup.NewManager(backupCfg, db, backupStore)

	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if pushCfg.Enabled() {
		pushSvc = push.NewService(pushCfg)
		pushSched = push.NewScheduler(pushSvc, pushStore, reminderStore, petStore)
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		petH:          handler.NewPetHandler(petStore, hub, logger.With("component", "pet")),
		reminderH:     handler.NewReminderHandler(reminderStore, petStore, hub, logger.With("component", "reminder")),
		scheduleH:     handler.NewScheduleHandler(reminderStore, logger.With("component", "schedule")),
		applicationH:  handler.NewApplicationHandler(applicationStore, petStore, hub, pushSched, logger.With("component", "application")),
		lostPetH:      handler.NewLostPetHandler(lostPetStore, hub, logger.With("component", "lost_pet")),
		forumH:        handler.NewForumHandler(forumStore, hub, logger.With("component", "forum")),
		pushH:         pushH,
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup")),
		sessionStore:  sessionStore,
		userStore:     userStore,
		pushStore:     pushStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		pushService:   pushSvc,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// PushStore returns the push store for cleanup tasks.
func (s *Server) PushStore() *store.PushStore {
	return s.pushStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the push notification scheduler, nil when VAPID
// keys are not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /api/pets", s.petH.List)
	outerMux.HandleFunc("GET /api/pets/{id}", s.petH.Get)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Everything else requires a session.
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
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

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)

	// Pet management (staff only)
	mux.Handle("POST /api/pets", middleware.RequireStaff(http.HandlerFunc(s.petH.Create)))
	mux.Handle("PUT /api/pets/{id}", middleware.RequireStaff(http.HandlerFunc(s.petH.Update)))
	mux.Handle("DELETE /api/pets/{id}", middleware.RequireStaff(http.HandlerFunc(s.petH.Delete)))

	// Care reminders
	mux.HandleFunc("GET /api/reminders", s.reminderH.List)
	mux.HandleFunc("POST /api/reminders", s.reminderH.Create)
	mux.HandleFunc("GET /api/reminders/{id}", s.reminderH.Get)
	mux.HandleFunc("PUT /api/reminders/{id}", s.reminderH.Update)
	mux.HandleFunc("DELETE /api/reminders/{id}", s.reminderH.Delete)
	mux.HandleFunc("POST /api/reminders/{id}/toggle", s.reminderH.ToggleCompletion)
	mux.HandleFunc("PATCH /api/reminders/{id}/enabled", s.reminderH.SetEnabled)

	// Schedule views
	mux.HandleFunc("GET /api/schedule", s.scheduleH.Get)
	mux.HandleFunc("GET /api/schedule/stats", s.scheduleH.Stats)

	// Adoption applications
	mux.HandleFunc("POST /api/applications", s.applicationH.Create)
	mux.HandleFunc("GET /api/applications", s.applicationH.ListMine)
	mux.Handle("GET /api/applications/pending", middleware.RequireStaff(http.HandlerFunc(s.applicationH.ListPending)))
	mux.HandleFunc("GET /api/applications/{id}", s.applicationH.Get)
	mux.Handle("POST /api/applications/{id}/approve", middleware.RequireStaff(http.HandlerFunc(s.applicationH.Approve)))
	mux.Handle("POST /api/applications/{id}/reject", middleware.RequireStaff(http.HandlerFunc(s.applicationH.Reject)))

	// Lost pet reports
	mux.HandleFunc("GET /api/lost-pets", s.lostPetH.List)
	mux.HandleFunc("POST /api/lost-pets", s.lostPetH.Create)
	mux.HandleFunc("GET /api/lost-pets/{id}", s.lostPetH.Get)
	mux.HandleFunc("PUT /api/lost-pets/{id}", s.lostPetH.Update)
	mux.HandleFunc("POST /api/lost-pets/{id}/resolve", s.lostPetH.Resolve)
	mux.HandleFunc("DELETE /api/lost-pets/{id}", s.lostPetH.Delete)

	// Community forum
	mux.HandleFunc("GET /api/forum/posts", s.forumH.ListPosts)
	mux.HandleFunc("POST /api/forum/posts", s.forumH.CreatePost)
	mux.HandleFunc("GET /api/forum/posts/{id}", s.forumH.GetPost)
	mux.HandleFunc("PUT /api/forum/posts/{id}", s.forumH.UpdatePost)
	mux.HandleFunc("DELETE /api/forum/posts/{id}", s.forumH.DeletePost)
	mux.HandleFunc("GET /api/forum/posts/{id}/comments", s.forumH.ListComments)
	mux.HandleFunc("POST /api/forum/posts/{id}/comments", s.forumH.CreateComment)
	mux.HandleFunc("DELETE /api/forum/comments/{id}", s.forumH.DeleteComment)

	// Push notifications
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
		mux.HandleFunc("GET /api/push/preferences", s.pushH.GetPreferences)
		mux.HandleFunc("PUT /api/push/preferences", s.pushH.UpdatePreferences)
		mux.HandleFunc("POST /api/push/test", s.pushH.SendTest)
	}

	// Backups (staff only)
	mux.Handle("GET /api/backups", middleware.RequireStaff(http.HandlerFunc(s.backupH.List)))
	mux.Handle("GET /api/backups/status", middleware.RequireStaff(http.HandlerFunc(s.backupH.Status)))
	mux.Handle("POST /api/backups/run", middleware.RequireStaff(http.HandlerFunc(s.backupH.RunNow)))
	mux.Handle("GET /api/backups/{id}/download", middleware.RequireStaff(http.HandlerFunc(s.backupH.Download)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
