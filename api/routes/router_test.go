package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/impulsa-app/impulsa-backend/internal/donations"
	"github.com/impulsa-app/impulsa-backend/internal/favorites"
	"github.com/impulsa-app/impulsa-backend/internal/payments"
	"github.com/impulsa-app/impulsa-backend/internal/projects"
	gatewaywebhook "github.com/impulsa-app/impulsa-backend/internal/webhooks/gateway"
	pkgAuth "github.com/impulsa-app/impulsa-backend/pkg/auth"
	"github.com/impulsa-app/impulsa-backend/pkg/config"
	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubProjectsService struct{}

func (stubProjectsService) Create(context.Context, projects.CreateProjectInput) (*projects.ProjectDetail, error) {
	return &projects.ProjectDetail{}, nil
}

func (stubProjectsService) SubmitForApproval(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubProjectsService) Decide(context.Context, projects.ApprovalDecisionInput) error {
	return nil
}

func (stubProjectsService) Resubmit(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubProjectsService) TransitionCampaign(context.Context, projects.CampaignTransitionInput) error {
	return nil
}

func (stubProjectsService) GetByID(context.Context, uuid.UUID) (*projects.ProjectDetail, error) {
	return &projects.ProjectDetail{}, nil
}

func (stubProjectsService) GetBySlug(context.Context, string) (*projects.ProjectDetail, error) {
	return &projects.ProjectDetail{}, nil
}

func (stubProjectsService) ListPublished(context.Context, pagination.Params, projects.ListFilters) (*projects.ProjectList, error) {
	return &projects.ProjectList{}, nil
}

func (stubProjectsService) ListByCreator(context.Context, uuid.UUID, pagination.Params) (*projects.ProjectList, error) {
	return &projects.ProjectList{}, nil
}

func (stubProjectsService) History(context.Context, uuid.UUID, uuid.UUID, enums.MemberRole) ([]projects.HistoryEntry, error) {
	return nil, nil
}

type stubDonationsService struct{}

func (stubDonationsService) Create(context.Context, donations.CreateDonationInput) (*donations.DonationDetail, error) {
	return &donations.DonationDetail{}, nil
}

func (stubDonationsService) GetByID(context.Context, uuid.UUID) (*donations.DonationDetail, error) {
	return &donations.DonationDetail{}, nil
}

func (stubDonationsService) ListByUser(context.Context, uuid.UUID, pagination.Params) (*donations.UserDonationList, error) {
	return &donations.UserDonationList{}, nil
}

func (stubDonationsService) ListByProject(context.Context, uuid.UUID, pagination.Params) (*donations.ProjectDonationList, error) {
	return &donations.ProjectDonationList{}, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) CreateTransaction(context.Context, payments.CreateTransactionInput) (*payments.TransactionDetail, error) {
	return &payments.TransactionDetail{}, nil
}

func (stubPaymentsService) GetTransaction(context.Context, uuid.UUID) (*payments.TransactionDetail, error) {
	return &payments.TransactionDetail{}, nil
}

func (stubPaymentsService) Confirm(context.Context, uuid.UUID) error {
	return nil
}

func (stubPaymentsService) ConfirmByDonation(context.Context, uuid.UUID) error {
	return nil
}

func (stubPaymentsService) FailByDonation(context.Context, uuid.UUID) error {
	return nil
}

func (stubPaymentsService) QRCode(context.Context, uuid.UUID) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

type stubFavoritesService struct{}

func (stubFavoritesService) Add(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubFavoritesService) Remove(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (stubFavoritesService) List(context.Context, uuid.UUID, pagination.Params) (*favorites.FavoriteList, error) {
	return &favorites.FavoriteList{}, nil
}

type stubEventRepo struct {
	created int
}

func (r *stubEventRepo) CreateEvent(_ context.Context, event *models.WebhookEvent) (*models.WebhookEvent, error) {
	r.created++
	event.ID = uuid.New()
	return event, nil
}

func (r *stubEventRepo) UpdateEventStatus(context.Context, uuid.UUID, enums.WebhookEventStatus) error {
	return nil
}

func (r *stubEventRepo) ListEvents(context.Context, pagination.Params, string) (*gatewaywebhook.EventList, error) {
	return &gatewaywebhook.EventList{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, config.JWTConfig, *stubEventRepo) {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10},
	}
	logg := logger.New(logger.Options{Level: zerolog.Disabled})

	eventRepo := &stubEventRepo{}
	gatewayService, err := gatewaywebhook.NewService(gatewaywebhook.ServiceParams{
		Repo:       eventRepo,
		Settlement: stubPaymentsService{},
		Logger:     logg,
		Source:     "pasarela",
	})
	if err != nil {
		t.Fatalf("build gateway service: %v", err)
	}

	handler := NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		prometheus.NewRegistry(),
		stubProjectsService{},
		stubDonationsService{},
		stubPaymentsService{},
		stubFavoritesService{},
		gatewayService,
	)
	return handler, cfg.JWT, eventRepo
}

func mintToken(t *testing.T, cfg config.JWTConfig, role enums.MemberRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicRoutesNeedNoAuth(t *testing.T) {
	handler, _, _ := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready", "/api/public/ping", "/api/public/v1/projects/", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestPrivateRoutesRequireAuth(t *testing.T) {
	handler, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPrivateRoutesAcceptBearerToken(t *testing.T) {
	handler, jwtCfg, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwtCfg, enums.MemberRoleUser))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	handler, jwtCfg, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwtCfg, enums.MemberRoleUser))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwtCfg, enums.MemberRoleAdmin))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestGatewayWebhookAlwaysAnswers200(t *testing.T) {
	handler, _, eventRepo := newTestRouter(t)

	body := strings.NewReader(`{"eventId":"evt-1","eventType":"payment.completed","status":"completed","donationId":"` + uuid.NewString() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/gateway", body)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if eventRepo.created != 1 {
		t.Fatalf("expected event row, got %d", eventRepo.created)
	}

	malformed := strings.NewReader("not-json")
	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/gateway", malformed)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("malformed payload: expected 200 got %d", resp.Code)
	}
}
