package donations

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

// Service defines donation intake operations and read projections.
type Service interface {
	Create(ctx context.Context, input CreateDonationInput) (*DonationDetail, error)
	GetByID(ctx context.Context, id uuid.UUID) (*DonationDetail, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*UserDonationList, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, params pagination.Params) (*ProjectDonationList, error)
}

type service struct {
	repo Repository
}

// NewService builds a donations service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	return &service{repo: repo}, nil
}

// Create inserts a pending donation. It is a single-row insert; settlement
// later flips the payment status through the payments engine.
func (s *service) Create(ctx context.Context, input CreateDonationInput) (*DonationDetail, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "el proyecto es requerido")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "el monto debe ser mayor a 0")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("método de pago inválido %q", input.PaymentMethod))
	}

	exists, err := s.repo.ProjectExists(ctx, input.ProjectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check project existence")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "proyecto no encontrado")
	}

	donation := &models.Donation{
		ProjectID:        input.ProjectID,
		UserID:           input.UserID,
		Amount:           input.Amount,
		PaymentMethod:    input.PaymentMethod,
		PaymentStatus:    enums.DonationStatusPending,
		IsAnonymous:      input.IsAnonymous,
		PaymentReference: input.PaymentReference,
	}
	created, err := s.repo.Create(ctx, donation)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create donation")
	}
	return toDetail(created), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*DonationDetail, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	donation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donación no encontrada")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load donation")
	}
	return toDetail(donation), nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*UserDonationList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user donations")
	}
	return list, nil
}

func (s *service) ListByProject(ctx context.Context, projectID uuid.UUID, params pagination.Params) (*ProjectDonationList, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	list, err := s.repo.ListCompletedByProject(ctx, projectID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list project donations")
	}
	return list, nil
}

func toDetail(donation *models.Donation) *DonationDetail {
	return &DonationDetail{
		ID:               donation.ID,
		ProjectID:        donation.ProjectID,
		UserID:           donation.UserID,
		Amount:           donation.Amount,
		PaymentMethod:    donation.PaymentMethod,
		PaymentStatus:    donation.PaymentStatus,
		IsAnonymous:      donation.IsAnonymous,
		PaymentReference: donation.PaymentReference,
		DonationDate:     donation.DonationDate,
	}
}
