package donations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/impulsa-app/impulsa-backend/pkg/db/models"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

type stubDonationsRepo struct {
	donation      *models.Donation
	projectExists bool
}

func (s *stubDonationsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubDonationsRepo) Create(ctx context.Context, donation *models.Donation) (*models.Donation, error) {
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	s.donation = donation
	return donation, nil
}

func (s *stubDonationsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	if s.donation == nil || s.donation.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.donation, nil
}

func (s *stubDonationsRepo) ProjectExists(ctx context.Context, projectID uuid.UUID) (bool, error) {
	return s.projectExists, nil
}

func (s *stubDonationsRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*UserDonationList, error) {
	return &UserDonationList{}, nil
}

func (s *stubDonationsRepo) ListCompletedByProject(ctx context.Context, projectID uuid.UUID, params pagination.Params) (*ProjectDonationList, error) {
	return &ProjectDonationList{}, nil
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

func validInput() CreateDonationInput {
	return CreateDonationInput{
		ProjectID:     uuid.New(),
		UserID:        uuid.New(),
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: enums.PaymentMethodCard,
	}
}

func TestCreateDonationStartsPending(t *testing.T) {
	repo := &stubDonationsRepo{projectExists: true}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	detail, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if detail.PaymentStatus != enums.DonationStatusPending {
		t.Fatalf("expected pending, got %s", detail.PaymentStatus)
	}
	if detail.ID == uuid.Nil {
		t.Fatal("expected donation id to be assigned")
	}
}

func TestCreateDonationValidation(t *testing.T) {
	repo := &stubDonationsRepo{projectExists: true}
	svc, _ := NewService(repo)

	cases := []struct {
		name   string
		mutate func(*CreateDonationInput)
		code   pkgerrors.Code
	}{
		{"zero amount", func(in *CreateDonationInput) { in.Amount = decimal.Zero }, pkgerrors.CodeValidation},
		{"negative amount", func(in *CreateDonationInput) { in.Amount = decimal.NewFromInt(-10) }, pkgerrors.CodeValidation},
		{"missing project", func(in *CreateDonationInput) { in.ProjectID = uuid.Nil }, pkgerrors.CodeValidation},
		{"bad method", func(in *CreateDonationInput) { in.PaymentMethod = "efectivo" }, pkgerrors.CodeValidation},
		{"missing user", func(in *CreateDonationInput) { in.UserID = uuid.Nil }, pkgerrors.CodeUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), input)
			assertCode(t, err, tc.code)
		})
	}
}

func TestCreateDonationProjectMissing(t *testing.T) {
	repo := &stubDonationsRepo{projectExists: false}
	svc, _ := NewService(repo)

	_, err := svc.Create(context.Background(), validInput())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := NewService(&stubDonationsRepo{})
	_, err := svc.GetByID(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestListByUserRequiresIdentity(t *testing.T) {
	svc, _ := NewService(&stubDonationsRepo{})
	_, err := svc.ListByUser(context.Background(), uuid.Nil, pagination.Params{})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}
