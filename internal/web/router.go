// Package web serves the local dashboard: the site's page routes exposed as
// JSON endpoints behind the same session and role guards the CLI uses.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/tahsinratul/life-client/internal/app"
	"github.com/tahsinratul/life-client/internal/logging"
	"github.com/tahsinratul/life-client/internal/navigation"
	"github.com/tahsinratul/life-client/internal/role"
	"github.com/tahsinratul/life-client/pkg/sdk"
)

// Session is the session holder as seen by handlers.
type Session interface {
	Current() *sdk.Identity
	SignOut(ctx context.Context) error
}

// Roles is the role resolver as seen by handlers.
type Roles interface {
	State() role.State
	Invalidate(address string)
}

// RouterOptions controls the construction of the dashboard router.
type RouterOptions struct {
	Session Session
	// Auth may be nil when the session comes from a static token.
	Auth app.Authenticator
	// API is the authenticated backend client; Public never carries credentials.
	API    *sdk.Client
	Public *sdk.Client
	Roles  Roles
	Guards app.Guards

	// PendingWait bounds how long a guarded route waits for a verdict.
	PendingWait time.Duration
	Logger      zerolog.Logger
	CORSOptions *cors.Options
	Middleware  []func(http.Handler) http.Handler
}

// OptionsFromApp fills RouterOptions from a wired App.
func OptionsFromApp(a *app.App) RouterOptions {
	return RouterOptions{
		Session:     a.Session,
		Auth:        a.Auth,
		API:         a.API(),
		Public:      a.Public,
		Roles:       a.Roles,
		Guards:      a.Guards,
		PendingWait: a.Config.Dashboard.PendingWait,
		Logger:      a.Logger,
	}
}

// DefaultCORSOptions allows the local dashboard origins.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"Location", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter assembles the dashboard router.
func NewRouter(opts RouterOptions) chi.Router {
	h := &handlers{
		session: opts.Session,
		auth:    opts.Auth,
		api:     opts.API,
		public:  opts.Public,
		roles:   opts.Roles,
		logger:  logging.Component(opts.Logger, "web"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(requestLogFormatter{logger: h.logger}))
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))
	r.Use(withNavigation)

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	// Public pages use the unauthenticated client so they never redirect.
	r.Get("/", h.home)
	r.Get("/policies", h.listPolicies)
	r.Get("/policies/{id}", h.getPolicy)
	r.Get("/blogs", h.listBlogs)
	r.Get("/blogs/{id}", h.getBlog)
	r.Post("/subscribe", h.subscribe)
	r.Get(navigation.RouteForbidden, h.forbidden)

	r.Get(navigation.RouteLogin, h.loginPage)
	r.Post(navigation.RouteLogin, h.login)
	r.Post("/register", h.register)
	r.Post("/logout", h.logout)

	// Every dashboard page sits behind sign-in; agent and admin pages add
	// their role check on top, so a signed-out visitor is sent to /login.
	r.Group(func(r chi.Router) {
		r.Use(opts.Guards.Authenticated.Middleware(opts.PendingWait))

		r.Get("/quote/{id}", h.getPolicy)
		r.Post("/quote/{id}", h.createQuote)
		r.Post("/apply/{quoteId}", h.apply)
		r.Post("/to-be-agent", h.applyAsAgent)

		r.Get("/dashboard/profile", h.profile)
		r.Patch("/dashboard/profile", h.updateProfile)
		r.Get("/dashboard/my-policies", h.myPolicies)
		r.Post("/dashboard/my-policies/{id}/review", h.submitReview)
		r.Get("/dashboard/claims", h.myClaims)
		r.Post("/dashboard/claims", h.fileClaim)
		r.Get("/dashboard/payment-status", h.paymentStatus)
		r.Post("/dashboard/payment-status/{id}", h.pay)

		r.Group(func(r chi.Router) {
			r.Use(opts.Guards.Agent.Middleware(opts.PendingWait))

			r.Get("/dashboard/assigned-customers", h.assignedCustomers)
			r.Post("/dashboard/assigned-customers/{id}/approve", h.approveApplication)
			r.Get("/dashboard/claim-review", h.claimReview)
			r.Patch("/dashboard/claim-review/{id}", h.setClaimStatus)
			r.Post("/dashboard/post-blog", h.postBlog)
		})

		r.Group(func(r chi.Router) {
			r.Use(opts.Guards.Admin.Middleware(opts.PendingWait))

			r.Get("/dashboard/manage-policies", h.managePolicies)
			r.Post("/dashboard/manage-policies", h.createPolicy)
			r.Delete("/dashboard/manage-policies/{id}", h.deletePolicy)
			r.Get("/dashboard/manage-applications", h.manageApplications)
			r.Post("/dashboard/manage-applications/{id}/assign", h.assignAgent)
			r.Post("/dashboard/manage-applications/{id}/reject", h.rejectApplication)
			r.Get("/dashboard/manage-users", h.manageUsers)
			r.Patch("/dashboard/manage-users/{id}", h.setUserRole)
			r.Delete("/dashboard/manage-users/{id}", h.deleteUser)
			r.Get("/dashboard/manage-blogs", h.manageBlogs)
			r.Delete("/dashboard/manage-blogs/{id}", h.deleteBlog)
			r.Get("/dashboard/manage-transactions", h.manageTransactions)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}

// withNavigation gives every request a redirect slot and records its path as
// the location redirects send the caller back to.
func withNavigation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := navigation.WithLocation(r.Context(), r.URL.Path)
		ctx, _ = navigation.WithSlot(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
