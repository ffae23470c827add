package gatewaywebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

type stubEventRepo struct {
	events    []*models.WebhookEvent
	createErr error
}

func (s *stubEventRepo) CreateEvent(ctx context.Context, event *models.WebhookEvent) (*models.WebhookEvent, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	s.events = append(s.events, event)
	return event, nil
}

func (s *stubEventRepo) UpdateEventStatus(ctx context.Context, id uuid.UUID, status enums.WebhookEventStatus) error {
	for _, event := range s.events {
		if event.ID == id {
			event.Status = status
		}
	}
	return nil
}

func (s *stubEventRepo) ListEvents(ctx context.Context, params pagination.Params, source string) (*EventList, error) {
	list := &EventList{}
	for _, event := range s.events {
		list.Events = append(list.Events, *event)
	}
	return list, nil
}

type stubSettlement struct {
	confirmed  []uuid.UUID
	failed     []uuid.UUID
	confirmErr error
	failErr    error
}

func (s *stubSettlement) ConfirmByDonation(ctx context.Context, donationID uuid.UUID) error {
	if s.confirmErr != nil {
		return s.confirmErr
	}
	s.confirmed = append(s.confirmed, donationID)
	return nil
}

func (s *stubSettlement) FailByDonation(ctx context.Context, donationID uuid.UUID) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.failed = append(s.failed, donationID)
	return nil
}

type stubGuard struct {
	seen    map[string]bool
	deleted []string
}

func (s *stubGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	was := s.seen[eventID]
	s.seen[eventID] = true
	return was, nil
}

func (s *stubGuard) Delete(ctx context.Context, eventID string) error {
	s.deleted = append(s.deleted, eventID)
	delete(s.seen, eventID)
	return nil
}

func newGatewayService(t *testing.T, repo Repository, settlement settlementService, guard idempotencyGuard) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:       repo,
		Settlement: settlement,
		Guard:      guard,
		Logger:     logger.New(logger.Options{Level: zerolog.Disabled}),
		Source:     "pasarela",
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func eventPayload(t *testing.T, event GatewayEvent) []byte {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

func TestHandleEventLogsBeforeDispatch(t *testing.T) {
	repo := &stubEventRepo{}
	settlement := &stubSettlement{confirmErr: pkgerrors.New(pkgerrors.CodeDependency, "store down")}
	svc := newGatewayService(t, repo, settlement, nil)

	payload := eventPayload(t, GatewayEvent{EventType: "completed", DonationID: uuid.New()})
	if err := svc.HandleEvent(context.Background(), payload); err != nil {
		t.Fatalf("HandleEvent must swallow processing errors: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("event must be logged even when processing fails, got %d rows", len(repo.events))
	}
	if repo.events[0].Status != enums.WebhookEventStatusFailed {
		t.Fatalf("expected failed status, got %s", repo.events[0].Status)
	}
	if string(repo.events[0].Payload) != string(payload) {
		t.Fatal("raw payload must be persisted verbatim")
	}
}

func TestHandleEventEmptyPayloadStillLogged(t *testing.T) {
	repo := &stubEventRepo{}
	settlement := &stubSettlement{}
	svc := newGatewayService(t, repo, settlement, nil)

	if err := svc.HandleEvent(context.Background(), nil); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("empty delivery must still be logged, got %d rows", len(repo.events))
	}
	if repo.events[0].EventType != "unparsed" {
		t.Fatalf("expected unparsed event type, got %s", repo.events[0].EventType)
	}
	if repo.events[0].Status != enums.WebhookEventStatusFailed {
		t.Fatalf("expected failed status, got %s", repo.events[0].Status)
	}
	if len(settlement.confirmed)+len(settlement.failed) != 0 {
		t.Fatal("empty delivery must not reach settlement")
	}
}

func TestHandleEventCompleted(t *testing.T) {
	repo := &stubEventRepo{}
	settlement := &stubSettlement{}
	svc := newGatewayService(t, repo, settlement, nil)

	donationID := uuid.New()
	if err := svc.HandleEvent(context.Background(), eventPayload(t, GatewayEvent{EventType: "completed", DonationID: donationID})); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(settlement.confirmed) != 1 || settlement.confirmed[0] != donationID {
		t.Fatalf("expected confirm for %s, got %v", donationID, settlement.confirmed)
	}
	if repo.events[0].Status != enums.WebhookEventStatusProcessed {
		t.Fatalf("expected processed, got %s", repo.events[0].Status)
	}
}

func TestHandleEventFailureBranch(t *testing.T) {
	repo := &stubEventRepo{}
	settlement := &stubSettlement{}
	svc := newGatewayService(t, repo, settlement, nil)

	donationID := uuid.New()
	if err := svc.HandleEvent(context.Background(), eventPayload(t, GatewayEvent{Status: "failed", DonationID: donationID})); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(settlement.failed) != 1 || settlement.failed[0] != donationID {
		t.Fatalf("expected fail for %s, got %v", donationID, settlement.failed)
	}
}

func TestHandleEventDuplicateGuard(t *testing.T) {
	repo := &stubEventRepo{}
	settlement := &stubSettlement{}
	guard := &stubGuard{}
	svc := newGatewayService(t, repo, settlement, guard)

	event := GatewayEvent{EventID: "evt-1", EventType: "completed", DonationID: uuid.New()}
	if err := svc.HandleEvent(context.Background(), eventPayload(t, event)); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if err := svc.HandleEvent(context.Background(), eventPayload(t, event)); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if len(settlement.confirmed) != 1 {
		t.Fatalf("duplicate must not settle twice, got %d confirms", len(settlement.confirmed))
	}
	if len(repo.events) != 2 {
		t.Fatalf("both deliveries must be logged, got %d", len(repo.events))
	}
	if repo.events[1].Status != enums.WebhookEventStatusIgnored {
		t.Fatalf("duplicate row must be ignored, got %s", repo.events[1].Status)
	}
}

func TestHandleEventAlreadyConfirmedIsBenign(t *testing.T) {
	repo := &stubEventRepo{}
	settlement := &stubSettlement{confirmErr: pkgerrors.New(pkgerrors.CodeConflict, "la transacción ya fue confirmada")}
	svc := newGatewayService(t, repo, settlement, nil)

	if err := svc.HandleEvent(context.Background(), eventPayload(t, GatewayEvent{EventType: "completed", DonationID: uuid.New()})); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if repo.events[0].Status != enums.WebhookEventStatusIgnored {
		t.Fatalf("already-confirmed must be recorded as ignored, got %s", repo.events[0].Status)
	}
}

func TestHandleEventReleasesGuardOnFailure(t *testing.T) {
	repo := &stubEventRepo{}
	settlement := &stubSettlement{confirmErr: pkgerrors.New(pkgerrors.CodeDependency, "store down")}
	guard := &stubGuard{}
	svc := newGatewayService(t, repo, settlement, guard)

	event := GatewayEvent{EventID: "evt-2", EventType: "completed", DonationID: uuid.New()}
	if err := svc.HandleEvent(context.Background(), eventPayload(t, event)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(guard.deleted) != 1 || guard.deleted[0] != "evt-2" {
		t.Fatalf("guard key must be released so the gateway can retry, got %v", guard.deleted)
	}
}

func TestHandleEventUnknownTypeIgnored(t *testing.T) {
	repo := &stubEventRepo{}
	settlement := &stubSettlement{}
	svc := newGatewayService(t, repo, settlement, nil)

	if err := svc.HandleEvent(context.Background(), eventPayload(t, GatewayEvent{EventType: "refund.created", DonationID: uuid.New()})); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(settlement.confirmed)+len(settlement.failed) != 0 {
		t.Fatal("unknown event types must not settle anything")
	}
	if repo.events[0].Status != enums.WebhookEventStatusIgnored {
		t.Fatalf("expected ignored, got %s", repo.events[0].Status)
	}
}

func TestHandleEventMalformedPayload(t *testing.T) {
	repo := &stubEventRepo{}
	settlement := &stubSettlement{}
	svc := newGatewayService(t, repo, settlement, nil)

	if err := svc.HandleEvent(context.Background(), []byte("{not json")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(repo.events) != 1 {
		t.Fatal("malformed payloads must still be logged")
	}
	if repo.events[0].Status != enums.WebhookEventStatusFailed {
		t.Fatalf("expected failed, got %s", repo.events[0].Status)
	}
	if repo.events[0].EventType != "unparsed" {
		t.Fatalf("expected unparsed event type, got %s", repo.events[0].EventType)
	}
}
