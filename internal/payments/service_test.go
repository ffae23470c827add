package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubQRRenderer struct{ payload string }

func (s *stubQRRenderer) RenderCode(payload string) ([]byte, error) {
	s.payload = payload
	return []byte("png-bytes"), nil
}

type stubPaymentsRepo struct {
	donation    *models.Donation
	transaction *models.PaymentTransaction
	logs        []models.WebhookEvent
}

func (s *stubPaymentsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPaymentsRepo) CreateTransaction(ctx context.Context, transaction *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	transaction.CreatedAt = time.Now()
	s.transaction = transaction
	return transaction, nil
}

func (s *stubPaymentsRepo) FindTransactionByID(ctx context.Context, id uuid.UUID) (*models.PaymentTransaction, error) {
	if s.transaction == nil || s.transaction.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.transaction, nil
}

func (s *stubPaymentsRepo) FindTransactionDetail(ctx context.Context, id uuid.UUID) (*TransactionDetail, error) {
	if s.transaction == nil || s.transaction.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return &TransactionDetail{ID: s.transaction.ID, Status: s.transaction.Status}, nil
}

func (s *stubPaymentsRepo) FindActiveTransactionByDonation(ctx context.Context, donationID uuid.UUID) (*models.PaymentTransaction, error) {
	if s.transaction == nil || s.transaction.DonationID != donationID || s.transaction.Status == enums.TransactionStatusFailed {
		return nil, gorm.ErrRecordNotFound
	}
	return s.transaction, nil
}

func (s *stubPaymentsRepo) ConfirmPending(ctx context.Context, id uuid.UUID, confirmedAt time.Time) (int64, error) {
	if s.transaction == nil || s.transaction.ID != id || s.transaction.Status != enums.TransactionStatusPending {
		return 0, nil
	}
	s.transaction.Status = enums.TransactionStatusConfirmed
	s.transaction.ConfirmedAt = &confirmedAt
	return 1, nil
}

func (s *stubPaymentsRepo) MarkTransactionFailed(ctx context.Context, id uuid.UUID) error {
	if s.transaction != nil && s.transaction.ID == id && s.transaction.Status == enums.TransactionStatusPending {
		s.transaction.Status = enums.TransactionStatusFailed
	}
	return nil
}

func (s *stubPaymentsRepo) FindDonationByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	if s.donation == nil || s.donation.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.donation, nil
}

func (s *stubPaymentsRepo) UpdateDonationStatus(ctx context.Context, id uuid.UUID, status enums.DonationStatus) error {
	if s.donation != nil && s.donation.ID == id {
		s.donation.PaymentStatus = status
	}
	return nil
}

func (s *stubPaymentsRepo) AppendSettlementLog(ctx context.Context, event *models.WebhookEvent) error {
	s.logs = append(s.logs, *event)
	return nil
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected *pkgerrors.Error, got %T: %v", err, err)
	}
	if appErr.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, appErr.Code(), err)
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       stubTxRunner{},
		QR:       &stubQRRenderer{},
		Logger:   logger.New(logger.Options{Level: zerolog.ErrorLevel}),
		Provider: "pasarela",
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func pendingDonation(amount int64) *models.Donation {
	return &models.Donation{
		ID:            uuid.New(),
		ProjectID:     uuid.New(),
		UserID:        uuid.New(),
		Amount:        decimal.NewFromInt(amount),
		PaymentMethod: enums.PaymentMethodCard,
		PaymentStatus: enums.DonationStatusPending,
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	repo := &stubPaymentsRepo{donation: pendingDonation(100)}
	svc := newTestService(t, repo)

	cases := []struct {
		name  string
		input CreateTransactionInput
		code  pkgerrors.Code
	}{
		{"missing donation", CreateTransactionInput{Amount: decimal.NewFromInt(100), Method: enums.PaymentMethodCard}, pkgerrors.CodeValidation},
		{"zero amount", CreateTransactionInput{DonationID: repo.donation.ID, Method: enums.PaymentMethodCard}, pkgerrors.CodeValidation},
		{"bad method", CreateTransactionInput{DonationID: repo.donation.ID, Amount: decimal.NewFromInt(100), Method: "efectivo"}, pkgerrors.CodeValidation},
		{"amount mismatch", CreateTransactionInput{DonationID: repo.donation.ID, Amount: decimal.NewFromInt(99), Method: enums.PaymentMethodCard}, pkgerrors.CodeValidation},
		{"unknown donation", CreateTransactionInput{DonationID: uuid.New(), Amount: decimal.NewFromInt(100), Method: enums.PaymentMethodCard}, pkgerrors.CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(context.Background(), tc.input)
			assertCode(t, err, tc.code)
		})
	}
}

func TestCreateTransactionDefaults(t *testing.T) {
	repo := &stubPaymentsRepo{donation: pendingDonation(100)}
	svc := newTestService(t, repo)

	detail, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		DonationID: repo.donation.ID,
		Amount:     decimal.NewFromInt(100),
		Method:     enums.PaymentMethodQR,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if detail.Status != enums.TransactionStatusPending {
		t.Fatalf("expected pending, got %s", detail.Status)
	}
	if detail.Provider != "pasarela" {
		t.Fatalf("expected provider pasarela, got %s", detail.Provider)
	}
	if detail.Currency != enums.CurrencyPEN {
		t.Fatalf("expected PEN, got %s", detail.Currency)
	}
}

func TestCreateTransactionConflictOnActive(t *testing.T) {
	repo := &stubPaymentsRepo{donation: pendingDonation(100)}
	svc := newTestService(t, repo)

	input := CreateTransactionInput{
		DonationID: repo.donation.ID,
		Amount:     decimal.NewFromInt(100),
		Method:     enums.PaymentMethodCard,
	}
	if _, err := svc.CreateTransaction(context.Background(), input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateTransaction(context.Background(), input)
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestCreateTransactionAllowedAfterFailure(t *testing.T) {
	repo := &stubPaymentsRepo{donation: pendingDonation(100)}
	svc := newTestService(t, repo)

	input := CreateTransactionInput{
		DonationID: repo.donation.ID,
		Amount:     decimal.NewFromInt(100),
		Method:     enums.PaymentMethodCard,
	}
	if _, err := svc.CreateTransaction(context.Background(), input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	repo.transaction.Status = enums.TransactionStatusFailed

	if _, err := svc.CreateTransaction(context.Background(), input); err != nil {
		t.Fatalf("create after failed transaction must succeed: %v", err)
	}
}

func TestConfirmHappyPath(t *testing.T) {
	repo := &stubPaymentsRepo{donation: pendingDonation(100)}
	svc := newTestService(t, repo)

	detail, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		DonationID: repo.donation.ID,
		Amount:     decimal.NewFromInt(100),
		Method:     enums.PaymentMethodCard,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if err := svc.Confirm(context.Background(), detail.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if repo.transaction.Status != enums.TransactionStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", repo.transaction.Status)
	}
	if repo.transaction.ConfirmedAt == nil {
		t.Fatal("expected confirmed_at to be set")
	}
	if repo.donation.PaymentStatus != enums.DonationStatusCompleted {
		t.Fatalf("expected donation completed, got %s", repo.donation.PaymentStatus)
	}
	if len(repo.logs) != 1 {
		t.Fatalf("expected one settlement log row, got %d", len(repo.logs))
	}
	if repo.logs[0].EventType != "payment.confirmed" {
		t.Fatalf("unexpected log event type %s", repo.logs[0].EventType)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	repo := &stubPaymentsRepo{donation: pendingDonation(100)}
	svc := newTestService(t, repo)

	detail, _ := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		DonationID: repo.donation.ID,
		Amount:     decimal.NewFromInt(100),
		Method:     enums.PaymentMethodCard,
	})
	if err := svc.Confirm(context.Background(), detail.ID); err != nil {
		t.Fatalf("first Confirm: %v", err)
	}

	firstConfirmedAt := *repo.transaction.ConfirmedAt
	logCount := len(repo.logs)

	err := svc.Confirm(context.Background(), detail.ID)
	assertCode(t, err, pkgerrors.CodeConflict)

	if !repo.transaction.ConfirmedAt.Equal(firstConfirmedAt) {
		t.Fatal("second confirm must not touch confirmed_at")
	}
	if repo.donation.PaymentStatus != enums.DonationStatusCompleted {
		t.Fatal("donation state must stay completed")
	}
	if len(repo.logs) != logCount {
		t.Fatal("second confirm must not append another log row")
	}
}

func TestConfirmUnknownTransaction(t *testing.T) {
	svc := newTestService(t, &stubPaymentsRepo{})
	err := svc.Confirm(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestConfirmByDonation(t *testing.T) {
	repo := &stubPaymentsRepo{donation: pendingDonation(100)}
	svc := newTestService(t, repo)

	if _, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		DonationID: repo.donation.ID,
		Amount:     decimal.NewFromInt(100),
		Method:     enums.PaymentMethodCard,
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if err := svc.ConfirmByDonation(context.Background(), repo.donation.ID); err != nil {
		t.Fatalf("ConfirmByDonation: %v", err)
	}
	if repo.donation.PaymentStatus != enums.DonationStatusCompleted {
		t.Fatalf("expected completed, got %s", repo.donation.PaymentStatus)
	}

	err := svc.ConfirmByDonation(context.Background(), repo.donation.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestFailByDonation(t *testing.T) {
	repo := &stubPaymentsRepo{donation: pendingDonation(100)}
	svc := newTestService(t, repo)

	if _, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		DonationID: repo.donation.ID,
		Amount:     decimal.NewFromInt(100),
		Method:     enums.PaymentMethodCard,
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if err := svc.FailByDonation(context.Background(), repo.donation.ID); err != nil {
		t.Fatalf("FailByDonation: %v", err)
	}
	if repo.donation.PaymentStatus != enums.DonationStatusFailed {
		t.Fatalf("expected failed, got %s", repo.donation.PaymentStatus)
	}
	if repo.transaction.Status != enums.TransactionStatusFailed {
		t.Fatalf("expected failed transaction, got %s", repo.transaction.Status)
	}
}

func TestFailByDonationAfterCompletion(t *testing.T) {
	repo := &stubPaymentsRepo{donation: pendingDonation(100)}
	repo.donation.PaymentStatus = enums.DonationStatusCompleted
	svc := newTestService(t, repo)

	err := svc.FailByDonation(context.Background(), repo.donation.ID)
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestQRCodeUsesTransactionID(t *testing.T) {
	repo := &stubPaymentsRepo{donation: pendingDonation(100)}
	qr := &stubQRRenderer{}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       stubTxRunner{},
		QR:       qr,
		Logger:   logger.New(logger.Options{Level: zerolog.ErrorLevel}),
		Provider: "pasarela",
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	detail, _ := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		DonationID: repo.donation.ID,
		Amount:     decimal.NewFromInt(100),
		Method:     enums.PaymentMethodQR,
	})

	image, err := svc.QRCode(context.Background(), detail.ID)
	if err != nil {
		t.Fatalf("QRCode: %v", err)
	}
	if len(image) == 0 {
		t.Fatal("expected image bytes")
	}
	if qr.payload != detail.ID.String() {
		t.Fatalf("payload must be the bare transaction id, got %q", qr.payload)
	}

	_, err = svc.QRCode(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}
