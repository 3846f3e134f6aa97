package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/partsnet/order-system/order-service/application"
	"github.com/partsnet/order-system/order-service/domain"
)

// OrderHandlers contains order HTTP handlers
type OrderHandlers struct {
	createOrder      *application.CreateOrder
	getOrder         *application.GetOrder
	startApproval    *application.StartApproval
	pendingShipping  *application.PendingShipping
	registerShipping *application.RegisterShipping
	startReceiving   *application.StartReceiving
	cancelOrder      *application.CancelOrder
	rejectOrder      *application.RejectOrder
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(
	createOrder *application.CreateOrder,
	getOrder *application.GetOrder,
	startApproval *application.StartApproval,
	pendingShipping *application.PendingShipping,
	registerShipping *application.RegisterShipping,
	startReceiving *application.StartReceiving,
	cancelOrder *application.CancelOrder,
	rejectOrder *application.RejectOrder,
) *OrderHandlers {
	return &OrderHandlers{
		createOrder:      createOrder,
		getOrder:         getOrder,
		startApproval:    startApproval,
		pendingShipping:  pendingShipping,
		registerShipping: registerShipping,
		startReceiving:   startReceiving,
		cancelOrder:      cancelOrder,
		rejectOrder:      rejectOrder,
	}
}

// RegisterRoutes registers order routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/approval", h.StartApproval)
		r.Post("/{id}/shipping/pending", h.PendingShipping)
		r.Post("/{id}/shipping", h.RegisterShipping)
		r.Post("/{id}/receiving", h.StartReceiving)
		r.Post("/{id}/cancel", h.CancelOrder)
		r.Post("/{id}/reject", h.RejectOrder)
	})
}

// CreateOrder handles order creation requests
func (h *OrderHandlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd application.CreateOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, err := h.createOrder.Execute(r.Context(), &cmd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

// GetOrder handles order retrieval requests
func (h *OrderHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.getOrder.Execute(r.Context(), &application.GetOrderQuery{OrderID: orderID})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// StartApproval kicks off the stock-check round trip for an order
func (h *OrderHandlers) StartApproval(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.startApproval.Execute(r.Context(), &application.StartApprovalCommand{OrderID: orderID})
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, order)
}

// PendingShipping queues an approved order for shipping
func (h *OrderHandlers) PendingShipping(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.pendingShipping.Execute(r.Context(), &application.PendingShippingCommand{OrderID: orderID})
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, order)
}

// RegisterShipping records the carrier handoff
func (h *OrderHandlers) RegisterShipping(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var cmd application.RegisterShippingCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.OrderID = orderID

	order, err := h.registerShipping.Execute(r.Context(), &cmd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, order)
}

// StartReceiving kicks off the receiving round trip for a shipped order
func (h *OrderHandlers) StartReceiving(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.startReceiving.Execute(r.Context(), &application.StartReceivingCommand{OrderID: orderID})
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, order)
}

// CancelOrder cancels an order
func (h *OrderHandlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	order, err := h.cancelOrder.Execute(r.Context(), &application.CancelOrderCommand{OrderID: orderID})
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, order)
}

// RejectOrder rejects an order with a reason
func (h *OrderHandlers) RejectOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := orderIDParam(w, r)
	if !ok {
		return
	}

	var cmd application.RejectOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cmd.OrderID = orderID

	order, err := h.rejectOrder.Execute(r.Context(), &cmd)
	if err != nil {
		writeError(w, err)
		return
	}

	writeStatus(w, order)
}

func orderIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Order ID must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

type statusResponse struct {
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
}

func writeStatus(w http.ResponseWriter, order *domain.Order) {
	writeJSON(w, http.StatusOK, statusResponse{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status.String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps application errors to HTTP status codes. An illegal
// transition is a conflict with the current state, not a server fault.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "order not found"})
	case domain.IsInvalidState(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrVersionConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "order was modified concurrently, retry"})
	case errors.Is(err, application.ErrCollaboratorUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case application.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}
}
