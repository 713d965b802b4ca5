package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/kudzaim/kiosk-commerce/internal/models"
)

type webhookPayload struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// paymentWebhookHandler receives asynchronous payment outcomes from the
// provider. Unknown references and conflicting outcomes are reported back in
// the envelope; the endpoint never panics on provider input.
func (s *Server) paymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	if payload.Reference == "" {
		s.respondWithError(w, http.StatusBadRequest, "reference is required")
		return
	}

	outcome := models.OrderStatus(strings.ToUpper(payload.Status))

	order, err := s.orderService.ReconcilePayment(r.Context(), payload.Reference, outcome)

	s.metrics.recordOrderOperation("reconcile", err)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"orderId": order.OrderID,
			"status":  order.Status,
		},
	})
}

// resendPaymentLinkHandler rebuilds the payment link for a pending order
func (s *Server) resendPaymentLinkHandler(w http.ResponseWriter, r *http.Request) {
	link, err := s.orderService.ResendPaymentLink(r.Context(), mux.Vars(r)["orderId"])

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]string{
			"paymentUrl": link,
		},
	})
}
