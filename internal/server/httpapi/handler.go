// Package httpapi serves the public REST API: registration, the session
// lifecycle and profile updates, wrapped in a uniform JSON envelope.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/Batajoo/youtube-backend-clone/internal/logging"
	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
	"github.com/Batajoo/youtube-backend-clone/internal/server/services"
)

// UserService is the part of services.UserService the API calls.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Identity, error)
	LoginByUsernameOrEmail(ctx context.Context, username, email, password string) (*services.Session, error)
	RefreshToken(ctx context.Context, presented string) (*services.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, current, next string) error
	Authenticate(ctx context.Context, accessToken string) (*models.Identity, error)
	CurrentUser(ctx context.Context, userID string) (*models.Identity, error)
	UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.Identity, error)
	UpdateAvatar(ctx context.Context, userID string, file *services.FileUpload) (*models.Identity, error)
	UpdateCoverImage(ctx context.Context, userID string, file *services.FileUpload) (*models.Identity, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Instrumenter wraps the router with request metrics and serves them.
type Instrumenter interface {
	Instrument(next http.Handler) http.Handler
	Handler() http.Handler
}

type Options struct {
	Cookies        CookiePolicy
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	RequestTimeout time.Duration
	MaxUploadBytes int64

	// Optional.
	Health  Pinger
	Metrics Instrumenter
}

type Handler struct {
	users UserService
	log   logging.Logger

	cookies        CookiePolicy
	accessTTL      time.Duration
	refreshTTL     time.Duration
	requestTimeout time.Duration
	maxUploadBytes int64
	health         Pinger
	metrics        Instrumenter
}

const defaultMaxUploadBytes = 10 << 20

func NewHandler(users UserService, log logging.Logger, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		users:          users,
		log:            log.With("module", "http"),
		cookies:        opts.Cookies,
		accessTTL:      opts.AccessTTL,
		refreshTTL:     opts.RefreshTTL,
		requestTimeout: opts.RequestTimeout,
		maxUploadBytes: opts.MaxUploadBytes,
		health:         opts.Health,
		metrics:        opts.Metrics,
	}
}

// Routes returns the full middleware chain around the API mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/healthcheck", h.healthcheck)

	mux.HandleFunc("POST /api/v1/user/register", h.register)
	mux.HandleFunc("POST /api/v1/user/login", h.login)
	mux.HandleFunc("POST /api/v1/user/refresh-token", h.refreshToken)

	mux.HandleFunc("POST /api/v1/user/logout", h.requireAuth(h.logout))
	mux.HandleFunc("POST /api/v1/user/change-password", h.requireAuth(h.changePassword))
	mux.HandleFunc("GET /api/v1/user/current-user", h.requireAuth(h.currentUser))
	mux.HandleFunc("PATCH /api/v1/user/update-account", h.requireAuth(h.updateAccount))
	mux.HandleFunc("PATCH /api/v1/user/update-avatar", h.requireAuth(h.updateAvatar))
	mux.HandleFunc("PATCH /api/v1/user/update-cover-image", h.requireAuth(h.updateCoverImage))

	var next http.Handler = mux
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics.Handler())
		next = h.metrics.Instrument(mux)
	}

	next = timeout(h.requestTimeout, next)
	next = h.recoverer(next)
	next = h.accessLog(next)
	return requestID(next)
}
