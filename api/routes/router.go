package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/impulsa-app/impulsa-backend/api/controllers"
	webhookcontrollers "github.com/impulsa-app/impulsa-backend/api/controllers/webhooks"
	"github.com/impulsa-app/impulsa-backend/api/middleware"
	"github.com/impulsa-app/impulsa-backend/internal/donations"
	"github.com/impulsa-app/impulsa-backend/internal/favorites"
	"github.com/impulsa-app/impulsa-backend/internal/payments"
	"github.com/impulsa-app/impulsa-backend/internal/projects"
	gatewaywebhook "github.com/impulsa-app/impulsa-backend/internal/webhooks/gateway"
	"github.com/impulsa-app/impulsa-backend/pkg/config"
	"github.com/impulsa-app/impulsa-backend/pkg/db"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
	"github.com/impulsa-app/impulsa-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	gatherer prometheus.Gatherer,
	projectsService projects.Service,
	donationsService donations.Service,
	paymentsService payments.Service,
	favoritesService favorites.Service,
	gatewayService *gatewaywebhook.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Route("/v1/projects", func(r chi.Router) {
			r.Get("/", controllers.ProjectList(projectsService, logg))
			r.Get("/slug/{slug}", controllers.ProjectDetailBySlug(projectsService, logg))
			r.Get("/{projectId}", controllers.ProjectDetail(projectsService, logg))
			r.Get("/{projectId}/donations", controllers.DonationsByProject(donationsService, logg))
		})
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/gateway", webhookcontrollers.GatewayWebhook(gatewayService, cfg.Gateway.WebhookSecret, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/projects", func(r chi.Router) {
			r.Post("/", controllers.ProjectCreate(projectsService, logg))
			r.Get("/mine", controllers.ProjectMine(projectsService, logg))
			r.Post("/{projectId}/submit", controllers.ProjectSubmit(projectsService, logg))
			r.Post("/{projectId}/resubmit", controllers.ProjectResubmit(projectsService, logg))
			r.Post("/{projectId}/campaign", controllers.ProjectCampaign(projectsService, logg))
			r.Get("/{projectId}/history", controllers.ProjectHistory(projectsService, logg))
		})

		r.Route("/v1/donations", func(r chi.Router) {
			r.Post("/", controllers.DonationCreate(donationsService, logg))
			r.Get("/mine", controllers.DonationMine(donationsService, logg))
			r.Get("/{donationId}", controllers.DonationDetail(donationsService, logg))
		})

		r.Route("/v1/payments/transactions", func(r chi.Router) {
			r.Post("/", controllers.PaymentTransactionCreate(paymentsService, logg))
			r.Get("/{transactionId}", controllers.PaymentTransactionDetail(paymentsService, logg))
			r.Post("/{transactionId}/confirm", controllers.PaymentConfirm(paymentsService, logg))
			r.Get("/{transactionId}/qr", controllers.PaymentQRCode(paymentsService, logg))
		})

		r.Route("/v1/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoriteList(favoritesService, logg))
			r.Post("/{projectId}", controllers.FavoriteAdd(favoritesService, logg))
			r.Delete("/{projectId}", controllers.FavoriteRemove(favoritesService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.MemberRoleAdmin), logg))

		r.Get("/ping", controllers.AdminPing())
		r.Post("/v1/projects/{projectId}/decision", controllers.ProjectDecision(projectsService, logg))
		r.Get("/v1/webhooks/gateway/events", webhookcontrollers.GatewayEventList(gatewayService, logg))
	})

	return r
}
