package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db"
	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
	"github.com/impulsa-app/impulsa-backend/pkg/metrics"
	"github.com/impulsa-app/impulsa-backend/pkg/qrcode"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// MsgAlreadyConfirmed is the benign duplicate-confirmation error message.
// Callers on the webhook path treat it as a duplicate delivery, not a failure.
const MsgAlreadyConfirmed = "la transacción ya fue confirmada"

const activeTransactionConstraint = "payment_transactions_active_donation_key"

const settlementLogSource = "settlement"

// Service defines the payment settlement operations.
type Service interface {
	CreateTransaction(ctx context.Context, input CreateTransactionInput) (*TransactionDetail, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionDetail, error)
	Confirm(ctx context.Context, transactionID uuid.UUID) error
	ConfirmByDonation(ctx context.Context, donationID uuid.UUID) error
	FailByDonation(ctx context.Context, donationID uuid.UUID) error
	QRCode(ctx context.Context, transactionID uuid.UUID) ([]byte, error)
}

// ServiceParams collects the dependencies of the settlement service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	QR       qrcode.Renderer
	Logger   *logger.Logger
	Metrics  *metrics.SettlementMetrics
	Provider string
	Currency enums.Currency
}

type service struct {
	repo     Repository
	tx       txRunner
	qr       qrcode.Renderer
	log      *logger.Logger
	metrics  *metrics.SettlementMetrics
	provider string
	currency enums.Currency
}

// NewService builds a settlement service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.QR == nil {
		return nil, fmt.Errorf("qr renderer required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Provider == "" {
		return nil, fmt.Errorf("gateway provider required")
	}
	currency := params.Currency
	if currency == "" {
		currency = enums.CurrencyPEN
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		qr:       params.QR,
		log:      params.Logger,
		metrics:  params.Metrics,
		provider: params.Provider,
		currency: currency,
	}, nil
}

func (s *service) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*TransactionDetail, error) {
	if input.DonationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "la donación es requerida")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "el monto debe ser mayor a 0")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("método de pago inválido %q", input.Method))
	}

	donation, err := s.repo.FindDonationByID(ctx, input.DonationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donación no encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
	}
	if !donation.Amount.Equal(input.Amount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "el monto no coincide con la donación")
	}

	existing, err := s.repo.FindActiveTransactionByDonation(ctx, input.DonationID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active transaction")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "la donación ya tiene una transacción de pago activa")
	}

	transaction := &models.PaymentTransaction{
		DonationID: input.DonationID,
		Provider:   s.provider,
		Method:     input.Method,
		Amount:     input.Amount,
		Currency:   s.currency,
		Status:     enums.TransactionStatusPending,
	}
	created, err := s.repo.CreateTransaction(ctx, transaction)
	if err != nil {
		// The partial unique index closes the check-then-insert race.
		if db.IsUniqueViolation(err, activeTransactionConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "la donación ya tiene una transacción de pago activa")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment transaction")
	}

	return &TransactionDetail{
		ID:         created.ID,
		DonationID: created.DonationID,
		ProjectID:  donation.ProjectID,
		Provider:   created.Provider,
		Method:     created.Method,
		Amount:     created.Amount,
		Currency:   created.Currency,
		Status:     created.Status,
		CreatedAt:  created.CreatedAt,
	}, nil
}

func (s *service) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionDetail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	detail, err := s.repo.FindTransactionDetail(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transacción no encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return detail, nil
}

// Confirm settles a transaction exactly once. The pending->confirmed flip is
// a conditioned update; zero affected rows means another caller got there
// first and the whole operation fails with a benign conflict instead of
// partially applying the donation update or the log row.
func (s *service) Confirm(ctx context.Context, transactionID uuid.UUID) error {
	if transactionID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}

	start := time.Now()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		transaction, err := repo.FindTransactionByID(ctx, transactionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "transacción no encontrada")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}

		confirmedAt := time.Now().UTC()
		affected, err := repo.ConfirmPending(ctx, transactionID, confirmedAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm transaction")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, MsgAlreadyConfirmed)
		}

		if err := repo.UpdateDonationStatus(ctx, transaction.DonationID, enums.DonationStatusCompleted); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete donation")
		}

		payload, err := json.Marshal(settlementLogPayload{
			TransactionID: transaction.ID,
			DonationID:    transaction.DonationID,
			Amount:        transaction.Amount,
			ConfirmedAt:   confirmedAt,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode settlement log")
		}
		log := &models.WebhookEvent{
			Source:    settlementLogSource,
			EventType: "payment.confirmed",
			Payload:   payload,
			Status:    enums.WebhookEventStatusProcessed,
		}
		if err := repo.AppendSettlementLog(ctx, log); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append settlement log")
		}

		logCtx := s.log.WithFields(ctx, map[string]any{
			"transaction_id": transaction.ID.String(),
			"donation_id":    transaction.DonationID.String(),
			"amount":         transaction.Amount.String(),
		})
		s.log.Info(logCtx, "payment confirmed")
		return nil
	})

	if s.metrics != nil {
		s.metrics.ObserveConfirmDuration(s.provider, time.Since(start))
		outcome := "confirmed"
		if err != nil {
			outcome = "error"
			if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeConflict {
				outcome = "duplicate"
			}
		}
		s.metrics.IncConfirmation(outcome)
	}
	return err
}

// ConfirmByDonation resolves the donation's active transaction and runs the
// same idempotent confirm path. Used by the webhook completion branch, which
// only knows the donation id.
func (s *service) ConfirmByDonation(ctx context.Context, donationID uuid.UUID) error {
	if donationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	transaction, err := s.repo.FindActiveTransactionByDonation(ctx, donationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "la donación no tiene una transacción de pago")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve donation transaction")
	}
	return s.Confirm(ctx, transaction.ID)
}

// FailByDonation marks the donation (and its pending transaction, if any) as
// failed. Failed is terminal for donations; no further transitions exist.
func (s *service) FailByDonation(ctx context.Context, donationID uuid.UUID) error {
	if donationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		donation, err := repo.FindDonationByID(ctx, donationID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "donación no encontrada")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
		}
		if donation.PaymentStatus == enums.DonationStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeConflict, MsgAlreadyConfirmed)
		}

		transaction, err := repo.FindActiveTransactionByDonation(ctx, donationID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve donation transaction")
		}
		if transaction != nil && transaction.Status == enums.TransactionStatusPending {
			if err := repo.MarkTransactionFailed(ctx, transaction.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail transaction")
			}
		}
		if err := repo.UpdateDonationStatus(ctx, donationID, enums.DonationStatusFailed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail donation")
		}
		return nil
	})
}

// QRCode renders the transaction id as a scannable image. The payload is
// deliberately just the opaque id; the scanning wallet fetches the mutable
// details (amount, recipient) by id.
func (s *service) QRCode(ctx context.Context, transactionID uuid.UUID) ([]byte, error) {
	if transactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	transaction, err := s.repo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transacción no encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	image, err := s.qr.RenderCode(transaction.ID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render qr code")
	}
	return image, nil
}
