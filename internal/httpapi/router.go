// Package httpapi exposes the core over REST. Handlers stay thin: decode,
// call a service, map the error taxonomy to a status.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rallyhq/rally-core/internal/auth"
	"github.com/rallyhq/rally-core/internal/service"
)

type API struct {
	log  *zap.Logger
	auth *auth.Authenticator

	users         *service.UserService
	events        *service.EventService
	comments      *service.CommentService
	likes         *service.LikeService
	registrations *service.RegistrationService
	payments      *service.PaymentService
	moderation    *service.ModerationService
	signals       *service.SignalService
	banned        *service.BannedUserService
	reasons       *service.ReasonService
	counters      *service.CounterService

	webhookSecret string
}

type Deps struct {
	Log           *zap.Logger
	Auth          *auth.Authenticator
	Users         *service.UserService
	Events        *service.EventService
	Comments      *service.CommentService
	Likes         *service.LikeService
	Registrations *service.RegistrationService
	Payments      *service.PaymentService
	Moderation    *service.ModerationService
	Signals       *service.SignalService
	Banned        *service.BannedUserService
	Reasons       *service.ReasonService
	Counters      *service.CounterService
	WebhookSecret string
}

func NewAPI(d Deps) *API {
	return &API{
		log:           d.Log,
		auth:          d.Auth,
		users:         d.Users,
		events:        d.Events,
		comments:      d.Comments,
		likes:         d.Likes,
		registrations: d.Registrations,
		payments:      d.Payments,
		moderation:    d.Moderation,
		signals:       d.Signals,
		banned:        d.Banned,
		reasons:       d.Reasons,
		counters:      d.Counters,
		webhookSecret: d.WebhookSecret,
	}
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/api/users", a.handleSignup)
	r.Post("/api/login", a.handleLogin)
	r.Post("/webhooks/gateway", a.handleGatewayWebhook)
	r.Get("/api/reasons", a.handleListReasons)
	r.Get("/api/types", a.handleListTypes)

	r.Group(func(r chi.Router) {
		r.Use(a.requireAuth)

		r.Get("/api/users/me", a.handleMe)
		r.Delete("/api/users/{id}", a.handleDeleteUser)
		r.Post("/api/onboarding", a.handleOnboarding)
		r.Get("/api/payments", a.handleListPayments)

		r.Post("/api/events", a.handleCreateEvent)
		r.Get("/api/events/{id}", a.handleGetEvent)
		r.Put("/api/events/{id}", a.handleUpdateEvent)
		r.Delete("/api/events/{id}", a.handleDeleteEvent)
		r.Post("/api/events/{id}/reconcile", a.handleReconcile)
		r.Get("/api/profiles/{id}/events", a.handleListProfileEvents)

		r.Post("/api/events/{id}/comments", a.handleCreateComment)
		r.Get("/api/events/{id}/comments", a.handleListComments)
		r.Get("/api/comments/{id}", a.handleGetComment)
		r.Delete("/api/comments/{id}", a.handleDeleteComment)

		r.Get("/api/events/{id}/likes", a.handleListLikes)
		r.Post("/api/events/{id}/like", a.handleLike)
		r.Delete("/api/events/{id}/like", a.handleUnlike)

		r.Post("/api/events/{id}/register", a.handleRegister)
		r.Post("/api/events/{id}/checkout", a.handleCheckout)
		r.Get("/api/events/{id}/registrations", a.handleListRegistrations)
		r.Delete("/api/events/{id}/registration", a.handleDeleteRegistration)
		r.Delete("/api/registrations/{id}", a.handleDeleteRegistrationByID)

		r.Post("/api/signals/users", a.handleSignalUser)
		r.Post("/api/signals/comments", a.handleSignalComment)
		r.Post("/api/signals/events", a.handleSignalEvent)
		r.Patch("/api/signals/users/{id}", a.handleUpdateUserSignal)
		r.Patch("/api/signals/comments/{id}", a.handleUpdateCommentSignal)
		r.Patch("/api/signals/events/{id}", a.handleUpdateEventSignal)
		r.Delete("/api/signals/users/{id}", a.handleResolveUserSignal)
		r.Delete("/api/signals/comments/{id}", a.handleResolveCommentSignal)
		r.Delete("/api/signals/events/{id}", a.handleResolveEventSignal)

		r.Post("/api/banned-users", a.handleBan)
		r.Get("/api/banned-users", a.handleListBanned)
		r.Get("/api/banned-users/{email}", a.handleCheckBanned)
		r.Delete("/api/banned-users", a.handleUnban)

		r.Post("/api/reasons", a.handleCreateReason)
		r.Delete("/api/reasons/{id}", a.handleDeleteReason)
	})

	return r
}
