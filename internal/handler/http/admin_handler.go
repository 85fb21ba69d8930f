package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/online-shop/internal/order"
	"github.com/vasiliy-maslov/online-shop/internal/product"
	"github.com/vasiliy-maslov/online-shop/internal/user"
)

type ProductRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"image_url"`
	Category    string          `json:"category"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

type AdminOrderResponse struct {
	*order.Order
	Buyer *UserResponse `json:"buyer,omitempty"`
}

// AdminHandler carries the back-office routes. The router mounts it behind
// RequireAdmin.
type AdminHandler struct {
	products product.Service
	orders   order.Service
	users    user.Service
	validate *validator.Validate
}

func NewAdminHandler(products product.Service, orders order.Service, users user.Service) *AdminHandler {
	return &AdminHandler{
		products: products,
		orders:   orders,
		users:    users,
		validate: validator.New(),
	}
}

func (h *AdminHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Post("/products", h.handleCreateProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleOrderDetail)
	router.Post("/orders/{id}/status", h.handleUpdateOrderStatus)
	router.Get("/stats", h.handleStats)
}

func (h *AdminHandler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (*ProductRequest, bool) {
	var payload ProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode product request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}

	if err := h.validate.Struct(payload); err != nil {
		respondWithValidationError(w, err)
		return nil, false
	}

	if payload.Price.IsNegative() {
		respondWithError(w, http.StatusBadRequest, "Price cannot be negative")
		return nil, false
	}

	return &payload, true
}

func (h *AdminHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		respondWithError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *AdminHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	created, err := h.products.Create(r.Context(), &product.Product{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Stock:       payload.Stock,
		ImageURL:    payload.ImageURL,
		Category:    payload.Category,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create product")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create product")
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	payload, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	err = h.products.Update(r.Context(), &product.Product{
		ID:          id,
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Stock:       payload.Stock,
		ImageURL:    payload.ImageURL,
		Category:    payload.Category,
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("Failed to update product")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("Failed to delete product")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders")
		respondWithError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}
	respondWithJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) handleOrderDetail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("Failed to get order")
		respondWithError(w, http.StatusInternalServerError, "Failed to get order")
		return
	}

	response := AdminOrderResponse{Order: o}
	if buyer, err := h.users.GetByID(r.Context(), o.UserID); err == nil {
		ur := toUserResponse(buyer)
		response.Buyer = &ur
	}

	respondWithJSON(w, http.StatusOK, response)
}

func (h *AdminHandler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var payload StatusUpdateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode status update request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	status := order.Status(payload.Status)
	if !status.Valid() {
		respondWithError(w, http.StatusBadRequest, "Unknown order status")
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, status); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error().Err(err).Stringer("order_id", id).Str("status", payload.Status).
			Msg("Failed to update order status")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Order status updated"})
}

func (h *AdminHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.orders.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to gather statistics")
		respondWithError(w, http.StatusInternalServerError, "Failed to gather statistics")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}
