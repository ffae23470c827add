package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/impulsa-app/impulsa-backend/api/responses"
	"github.com/impulsa-app/impulsa-backend/api/validators"
	gatewaywebhook "github.com/impulsa-app/impulsa-backend/internal/webhooks/gateway"
	"github.com/impulsa-app/impulsa-backend/pkg/logger"
	"github.com/impulsa-app/impulsa-backend/pkg/pagination"
)

// GatewayService is the slice of the webhook service the controller needs.
type GatewayService interface {
	HandleEvent(ctx context.Context, payload []byte) error
}

const gatewaySignatureHeader = "X-Gateway-Signature"

// GatewayWebhook ingests payment gateway notifications. The endpoint always
// answers 200 once the delivery is readable so the gateway stops retrying;
// processing failures are recorded on the event row instead of the response.
func GatewayWebhook(svc GatewayService, secret string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "gateway webhook: read body", err)
			}
			responses.WriteSuccess(w, map[string]string{"received": "true"})
			return
		}

		if secret != "" && !validGatewaySignature(payload, secret, r.Header.Get(gatewaySignatureHeader)) {
			if logg != nil {
				logg.Warn(ctx, "gateway webhook: signature mismatch")
			}
			responses.WriteSuccess(w, map[string]string{"received": "true"})
			return
		}

		if err := svc.HandleEvent(ctx, payload); err != nil && logg != nil {
			logg.Error(ctx, "gateway webhook: handle event", err)
		}
		responses.WriteSuccess(w, map[string]string{"received": "true"})
	}
}

func validGatewaySignature(payload []byte, secret, header string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(header)))
}

// GatewayEventList exposes the stored deliveries for back-office review.
func GatewayEventList(svc *gatewaywebhook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := svc.ListEvents(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
