package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/online-shop/internal/cart"
	"github.com/vasiliy-maslov/online-shop/internal/order"
	"github.com/vasiliy-maslov/online-shop/internal/product"
	"github.com/vasiliy-maslov/online-shop/internal/session"
)

type OrderConfirmResponse struct {
	Items []cart.Item     `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/order/confirm", h.handleConfirm)
	router.Post("/order/submit", h.handleSubmit)
	router.Get("/orders", h.handleMyOrders)
	router.Get("/order/{id}", h.handleDetail)
	router.Post("/order/{id}/pay", h.handlePay)
	router.Post("/order/{id}/cancel", h.handleCancel)
}

func (h *OrderHandler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	if s.Cart.IsEmpty() {
		respondWithError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	respondWithJSON(w, http.StatusOK, OrderConfirmResponse{
		Items: s.Cart.Items(),
		Total: s.Cart.Total(),
	})
}

func (h *OrderHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	created, err := h.orders.CreateFromCart(r.Context(), s.User.ID, s.Cart.Items())
	if err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			clientMessage = "Cart is empty"
		case errors.Is(err, product.ErrInsufficientStock):
			clientMessage = "Not enough stock for one of the items"
		case errors.Is(err, product.ErrNotFound):
			clientMessage = "One of the products is no longer available"
		default:
			log.Error().Err(err).Stringer("user_id", s.User.ID).Msg("Failed to submit order")
			clientMessage = "Failed to submit order"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	// The cart is only dropped once the order is safely persisted.
	s.Cart.Clear()

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *OrderHandler) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	orders, err := h.orders.ListByUser(r.Context(), s.User.ID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", s.User.ID).Msg("Failed to list orders")
		respondWithError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

// fetchOwnedOrder loads the order and enforces the ownership rule: the owner
// may always see it, an admin may too when adminAllowed is set.
func (h *OrderHandler) fetchOwnedOrder(w http.ResponseWriter, r *http.Request, s *session.Session, adminAllowed bool) *order.Order {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return nil
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return nil
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("Failed to get order")
		respondWithError(w, http.StatusInternalServerError, "Failed to get order")
		return nil
	}

	if o.UserID != s.User.ID && !(adminAllowed && s.User.IsAdmin()) {
		respondWithError(w, http.StatusForbidden, "You cannot act on another user's order")
		return nil
	}

	return o
}

func (h *OrderHandler) handleDetail(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	o := h.fetchOwnedOrder(w, r, s, true)
	if o == nil {
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) handlePay(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	o := h.fetchOwnedOrder(w, r, s, false)
	if o == nil {
		return
	}

	if err := h.orders.Pay(r.Context(), o.ID); err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("Failed to pay order")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to pay order")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Payment successful"})
}

func (h *OrderHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	o := h.fetchOwnedOrder(w, r, s, false)
	if o == nil {
		return
	}

	if err := h.orders.Cancel(r.Context(), o.ID); err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, order.ErrNotCancellable):
			clientMessage = "Only pending orders can be cancelled"
		case errors.Is(err, order.ErrNotFound):
			clientMessage = "Order not found"
		default:
			log.Error().Err(err).Stringer("order_id", o.ID).Msg("Failed to cancel order")
			clientMessage = "Failed to cancel order"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order cancelled"})
}
