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
	"github.com/vasiliy-maslov/online-shop/internal/cart"
	"github.com/vasiliy-maslov/online-shop/internal/product"
)

type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required"`
}

type CartProductRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid4"`
}

type CartResponse struct {
	Items []cart.Item     `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func toCartResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		Items: c.Items(),
		Total: c.Total(),
		Count: c.Count(),
	}
}

type CartHandler struct {
	carts    cart.Service
	validate *validator.Validate
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{
		carts:    carts,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleView)
	router.Post("/cart/add", h.handleAdd)
	router.Post("/cart/update", h.handleUpdate)
	router.Post("/cart/remove", h.handleRemove)
	router.Post("/cart/clear", h.handleClear)
}

func (h *CartHandler) handleView(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	respondWithJSON(w, http.StatusOK, toCartResponse(s.Cart))
}

func (h *CartHandler) decodeItemRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, bool) {
	var payload CartItemRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode cart request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return uuid.Nil, 0, false
	}

	if err := h.validate.Struct(payload); err != nil {
		respondWithValidationError(w, err)
		return uuid.Nil, 0, false
	}

	productID, err := uuid.FromString(payload.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return uuid.Nil, 0, false
	}

	return productID, payload.Quantity, true
}

func (h *CartHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	productID, quantity, ok := h.decodeItemRequest(w, r)
	if !ok {
		return
	}

	s := sessionFromContext(r.Context())
	if err := h.carts.Add(r.Context(), s.Cart, productID, quantity); err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, product.ErrNotFound):
			clientMessage = "Product not found"
		case errors.Is(err, product.ErrInsufficientStock):
			clientMessage = "Not enough stock"
		case errors.Is(err, cart.ErrInvalidQuantity):
			clientMessage = "Quantity must be greater than zero"
		default:
			log.Error().Err(err).Stringer("product_id", productID).Msg("Failed to add to cart")
			clientMessage = "Failed to add to cart"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, toCartResponse(s.Cart))
}

func (h *CartHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload CartItemRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode cart request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// Quantity is deliberately unvalidated here: zero or negative removes
	// the line.
	productID, err := uuid.FromString(payload.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	s := sessionFromContext(r.Context())
	h.carts.Update(s.Cart, productID, payload.Quantity)

	respondWithJSON(w, http.StatusOK, toCartResponse(s.Cart))
}

func (h *CartHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	var payload CartProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode cart request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	productID, err := uuid.FromString(payload.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	s := sessionFromContext(r.Context())
	h.carts.Remove(s.Cart, productID)

	respondWithJSON(w, http.StatusOK, toCartResponse(s.Cart))
}

func (h *CartHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())
	h.carts.Clear(s.Cart)
	respondWithJSON(w, http.StatusOK, toCartResponse(s.Cart))
}
