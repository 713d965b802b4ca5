package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kudzaim/kiosk-commerce/internal/models"
	"github.com/kudzaim/kiosk-commerce/internal/service"
)

type createOrderPayload struct {
	Customer      models.Customer      `json:"customer"`
	Items         models.OrderItems    `json:"items"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	Subtotal      float64              `json:"subtotal"`
	VAT           float64              `json:"vat"`
	Total         float64              `json:"total"`
}

type orderResponse struct {
	Order      *models.Order `json:"order"`
	PaymentURL string        `json:"paymentUrl,omitempty"`
}

// createOrderHandler is the kiosk checkout endpoint
func (s *Server) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var payload createOrderPayload

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	order, paymentURL, err := s.orderService.CreateOrder(r.Context(), service.CreateOrderRequest{
		Customer:      payload.Customer,
		Items:         payload.Items,
		PaymentMethod: payload.PaymentMethod,
		Subtotal:      payload.Subtotal,
		VAT:           payload.VAT,
		Total:         payload.Total,
	})

	s.metrics.recordOrderOperation("create", err)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Data:    orderResponse{Order: order, PaymentURL: paymentURL},
	})
}

// getOrdersHandler lists orders newest first with limit/offset paging
func (s *Server) getOrdersHandler(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	orders, err := s.orderService.ListOrders(r.Context(), limit, offset)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	total, err := s.orderService.CountOrders(r.Context())

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data: map[string]interface{}{
			"orders": orders,
			"total":  total,
			"limit":  limit,
			"offset": offset,
		},
	})
}

// getOrderByIDHandler returns an order by its internal id
func (s *Server) getOrderByIDHandler(w http.ResponseWriter, r *http.Request) {
	order, err := s.orderService.GetOrder(r.Context(), mux.Vars(r)["id"])

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

type updateOrderPayload struct {
	Status        models.OrderStatus   `json:"status"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// updateOrderHandler is the admin order edit: status transitions follow the
// payment lifecycle rules, payment method changes only while pending.
func (s *Server) updateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var payload updateOrderPayload

	if !s.decodeJSON(w, r, &payload) {
		return
	}

	if payload.Status == "" && payload.PaymentMethod == "" {
		s.respondWithError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	id := mux.Vars(r)["id"]
	var order *models.Order
	var err error

	if payload.PaymentMethod != "" {
		order, err = s.orderService.UpdatePaymentMethod(r.Context(), id, payload.PaymentMethod)

		if err != nil {
			s.respondWithServiceError(w, err)
			return
		}
	}

	if payload.Status != "" {
		order, err = s.orderService.UpdateOrderStatus(r.Context(), id, payload.Status)
		s.metrics.recordOrderOperation("admin_status_update", err)

		if err != nil {
			s.respondWithServiceError(w, err)
			return
		}
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

// deleteOrderHandler hard-deletes an order
func (s *Server) deleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.orderService.DeleteOrder(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{Success: true})
}

// approveCashOrderHandler settles a pending cash order in person
func (s *Server) approveCashOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := s.orderService.ApproveCashOrder(r.Context(), mux.Vars(r)["orderId"])

	s.metrics.recordOrderOperation("approve_cash", err)

	if err != nil {
		s.respondWithServiceError(w, err)
		return
	}

	s.respondWithJSON(w, http.StatusOK, ApiResponse{
		Success: true,
		Data:    order,
	})
}

func queryInt(r *http.Request, key string, defaultValue int) int {
	raw := r.URL.Query().Get(key)

	if raw == "" {
		return defaultValue
	}

	v, err := strconv.Atoi(raw)

	if err != nil || v < 0 {
		return defaultValue
	}

	return v
}
