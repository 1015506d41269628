package api

import (
	"context"
	"database/sql"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/hobbybyrox/hobbyshop/internal/auth"
	"github.com/hobbybyrox/hobbyshop/internal/model"
)

// MaxPayloadBytes caps the save-products body.
const MaxPayloadBytes = 10 << 20

// Publisher commits the three documents; *publish.TreePublisher and
// *publish.SequentialPublisher satisfy it.
type Publisher interface {
	Publish(ctx context.Context, docs model.Documents) (model.Revision, error)
}

// RouterConfig wires the relay's collaborators.
type RouterConfig struct {
	DB        *sql.DB
	Auth      *auth.Authenticator
	Publisher Publisher
	// LoginLimiter throttles /api/login; nil disables throttling.
	LoginLimiter *rate.Limiter
}

// NewRouter creates the relay router with all endpoints registered.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, Auth: cfg.Auth}
	usersHandler := &UsersHandler{DB: cfg.DB}
	syncHandler := &SyncHandler{Publisher: cfg.Publisher}

	authMW := AuthMiddleware(cfg.Auth)
	limit := RateLimit(cfg.LoginLimiter)

	// Public.
	mux.HandleFunc("GET /{$}", syncHandler.Health)
	mux.Handle("POST /api/login", limit(http.HandlerFunc(authHandler.Login)))

	// Authenticated.
	mux.Handle("POST /api/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/password", limit(authMW(http.HandlerFunc(authHandler.ChangePassword))))
	mux.Handle("GET /api/users", authMW(http.HandlerFunc(usersHandler.List)))
	mux.Handle("POST /api/save-products",
		authMW(MaxBody(MaxPayloadBytes)(http.HandlerFunc(syncHandler.SaveProducts))))

	return mux
}
