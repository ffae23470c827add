package gatewaywebhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/impulsa-app/impulsa-backend/internal/payments"
	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
	"github.com/impulsa-app/impulsa-backend/pkg/metrics"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

// GatewayEvent is the payload shape the payment gateway posts. Older gateway
// versions send `status` instead of `eventType`.
type GatewayEvent struct {
	EventID    string    `json:"eventId"`
	EventType  string    `json:"eventType"`
	Status     string    `json:"status"`
	DonationID uuid.UUID `json:"donationId"`
}

// EventList wraps a page of logged gateway events.
type EventList struct {
	Events     []models.WebhookEvent `json:"events"`
	NextCursor string                `json:"next_cursor,omitempty"`
}

var errEmptyPayload = errors.New("empty webhook payload")

type settlementService interface {
	ConfirmByDonation(ctx context.Context, donationID uuid.UUID) error
	FailByDonation(ctx context.Context, donationID uuid.UUID) error
}

type idempotencyGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// ServiceParams collects the dependencies of the gateway webhook service.
type ServiceParams struct {
	Repo       Repository
	Settlement settlementService
	Guard      idempotencyGuard
	Logger     *logger.Logger
	Metrics    *metrics.SettlementMetrics
	Source     string
}

// Service logs and dispatches inbound gateway events. Every event is
// persisted before any processing so the raw payload survives failures and
// replays.
type Service struct {
	repo       Repository
	settlement settlementService
	guard      idempotencyGuard
	log        *logger.Logger
	metrics    *metrics.SettlementMetrics
	source     string
}

// NewService builds a gateway webhook service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("webhook repository required")
	}
	if params.Settlement == nil {
		return nil, fmt.Errorf("settlement service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == "" {
		return nil, fmt.Errorf("event source required")
	}
	return &Service{
		repo:       params.Repo,
		settlement: params.Settlement,
		guard:      params.Guard,
		log:        params.Logger,
		metrics:    params.Metrics,
		source:     params.Source,
	}, nil
}

// HandleEvent records the raw delivery and dispatches it to settlement. The
// returned error is for the caller's log only: the webhook endpoint responds
// 200 regardless, so the gateway does not retry forever.
func (s *Service) HandleEvent(ctx context.Context, payload []byte) error {
	var parsed GatewayEvent
	var parseErr error
	if len(payload) == 0 {
		// An empty delivery still gets its audit row; it fails dispatch
		// like any other unparsable payload.
		parseErr = errEmptyPayload
	} else {
		parseErr = json.Unmarshal(payload, &parsed)
	}

	// The payload column is jsonb; a body that is not valid JSON is stored
	// quoted so the delivery is still durably recorded.
	raw := json.RawMessage(payload)
	if !json.Valid(payload) {
		raw, _ = json.Marshal(string(payload))
	}

	record := &models.WebhookEvent{
		Source:    s.source,
		EventType: s.eventType(parsed, parseErr),
		Payload:   raw,
		Status:    enums.WebhookEventStatusReceived,
	}
	record, err := s.repo.CreateEvent(ctx, record)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "log webhook event")
	}

	resolution := s.dispatch(ctx, record.ID, parsed, parseErr)
	if s.metrics != nil {
		s.metrics.IncWebhook(resolution)
	}
	return nil
}

// ListEvents exposes the audit log for back-office review.
func (s *Service) ListEvents(ctx context.Context, params pagination.Params) (*EventList, error) {
	list, err := s.repo.ListEvents(ctx, params, s.source)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list webhook events")
	}
	return list, nil
}

func (s *Service) eventType(parsed GatewayEvent, parseErr error) string {
	if parseErr != nil {
		return "unparsed"
	}
	if parsed.EventType != "" {
		return parsed.EventType
	}
	if parsed.Status != "" {
		return parsed.Status
	}
	return "unknown"
}

func (s *Service) dispatch(ctx context.Context, recordID uuid.UUID, parsed GatewayEvent, parseErr error) string {
	if parseErr != nil {
		s.finish(ctx, recordID, enums.WebhookEventStatusFailed)
		s.log.Error(ctx, "gateway event payload malformed", parseErr)
		return "malformed"
	}

	if s.guard != nil && parsed.EventID != "" {
		seen, err := s.guard.CheckAndMark(ctx, parsed.EventID)
		if err != nil {
			// A flaky dedupe store must not block settlement; the
			// conditioned update still catches duplicates.
			s.log.Error(ctx, "idempotency check failed", err)
		} else if seen {
			s.finish(ctx, recordID, enums.WebhookEventStatusIgnored)
			return "duplicate"
		}
	}

	if parsed.DonationID == uuid.Nil {
		s.finish(ctx, recordID, enums.WebhookEventStatusFailed)
		s.log.Error(ctx, "gateway event missing donation id", nil)
		return "malformed"
	}

	switch normalizeOutcome(parsed.EventType, parsed.Status) {
	case "completed":
		return s.settle(ctx, recordID, parsed, s.settlement.ConfirmByDonation)
	case "failed":
		return s.settle(ctx, recordID, parsed, s.settlement.FailByDonation)
	default:
		s.finish(ctx, recordID, enums.WebhookEventStatusIgnored)
		return "ignored"
	}
}

func (s *Service) settle(ctx context.Context, recordID uuid.UUID, parsed GatewayEvent, apply func(context.Context, uuid.UUID) error) string {
	err := apply(ctx, parsed.DonationID)
	if err == nil {
		s.finish(ctx, recordID, enums.WebhookEventStatusProcessed)
		return "processed"
	}

	if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeConflict {
		// Duplicate delivery that slipped past the guard.
		s.finish(ctx, recordID, enums.WebhookEventStatusIgnored)
		return "duplicate"
	}

	s.finish(ctx, recordID, enums.WebhookEventStatusFailed)
	if s.guard != nil && parsed.EventID != "" {
		if delErr := s.guard.Delete(ctx, parsed.EventID); delErr != nil {
			s.log.Error(ctx, "release idempotency key", delErr)
		}
	}
	logCtx := s.log.WithField(ctx, "donation_id", parsed.DonationID.String())
	s.log.Error(logCtx, "gateway event processing failed", err)
	return "error"
}

func (s *Service) finish(ctx context.Context, recordID uuid.UUID, status enums.WebhookEventStatus) {
	if err := s.repo.UpdateEventStatus(ctx, recordID, status); err != nil {
		s.log.Error(ctx, "update webhook event status", err)
	}
}

func normalizeOutcome(eventType, status string) string {
	value := eventType
	if value == "" {
		value = status
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "completed", "payment.completed", "succeeded", "paid":
		return "completed"
	case "failed", "payment.failed", "rejected", "cancelled", "canceled":
		return "failed"
	default:
		return "other"
	}
}

var _ settlementService = (payments.Service)(nil)
