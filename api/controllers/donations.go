package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/impulsa-app/impulsa-backend/api/responses"
	"github.com/impulsa-app/impulsa-backend/api/validators"
	"github.com/impulsa-app/impulsa-backend/internal/donations"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
)

type createDonationPayload struct {
	ProjectID        string          `json:"project_id" validate:"required,uuid"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method" validate:"required"`
	IsAnonymous      bool            `json:"is_anonymous"`
	PaymentReference *string         `json:"payment_reference"`
}

// DonationCreate registers a pending donation for the caller.
func DonationCreate(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := actorID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createDonationPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		projectID, err := uuid.Parse(payload.ProjectID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid project_id"))
			return
		}
		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_method"))
			return
		}

		detail, err := svc.Create(ctx, donations.CreateDonationInput{
			ProjectID:        projectID,
			UserID:           userID,
			Amount:           payload.Amount,
			PaymentMethod:    method,
			IsAnonymous:      payload.IsAnonymous,
			PaymentReference: payload.PaymentReference,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// DonationDetail returns a single donation by id.
func DonationDetail(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		donationID, err := pathUUID(r, "donationId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.GetByID(ctx, donationID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// DonationMine lists the caller's donation history, newest first.
func DonationMine(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := actorID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListByUser(ctx, userID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// DonationsByProject lists the public, completed donations of a project.
// Anonymous donors surface under the masked display name.
func DonationsByProject(svc donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		projectID, err := pathUUID(r, "projectId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListByProject(ctx, projectID, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
