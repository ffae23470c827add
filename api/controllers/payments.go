package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/impulsa-app/impulsa-backend/api/responses"
	"github.com/impulsa-app/impulsa-backend/api/validators"
	"github.com/impulsa-app/impulsa-backend/internal/payments"
	"github.com/impulsa-app/impulsa-backend/pkg/enums"
	pkgerrors "github.com/impulsa-app/impulsa-backend/pkg/errors"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
)

type createTransactionPayload struct {
	DonationID string          `json:"donation_id" validate:"required,uuid"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"payment_method" validate:"required"`
}

// PaymentTransactionCreate opens a payment transaction for a pending donation.
func PaymentTransactionCreate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if _, err := actorID(ctx); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createTransactionPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		donationID, err := uuid.Parse(payload.DonationID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid donation_id"))
			return
		}
		method, err := enums.ParsePaymentMethod(payload.Method)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment_method"))
			return
		}

		detail, err := svc.CreateTransaction(ctx, payments.CreateTransactionInput{
			DonationID: donationID,
			Amount:     payload.Amount,
			Method:     method,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

// PaymentTransactionDetail returns a transaction joined with its project.
func PaymentTransactionDetail(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		transactionID, err := pathUUID(r, "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		detail, err := svc.GetTransaction(ctx, transactionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// PaymentConfirm settles a pending transaction. Replays come back benign.
func PaymentConfirm(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		transactionID, err := pathUUID(r, "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Confirm(ctx, transactionID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(enums.TransactionStatusConfirmed)})
	}
}

// PaymentQRCode renders the transaction's payment QR as a PNG.
func PaymentQRCode(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		transactionID, err := pathUUID(r, "transactionId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		png, err := svc.QRCode(ctx, transactionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(png); err != nil && logg != nil {
			logg.Error(ctx, "write qr response", err)
		}
	}
}
