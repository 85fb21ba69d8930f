package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/online-shop/internal/product"
)

// ProductHandler serves the public catalog routes. Admin product management
// lives in AdminHandler.
type ProductHandler struct {
	products product.Service
}

func NewProductHandler(products product.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleList)
	router.Get("/products/{id}", h.handleGet)
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	var (
		products []product.Product
		err      error
	)

	switch {
	case r.URL.Query().Get("q") != "":
		products, err = h.products.Search(r.Context(), r.URL.Query().Get("q"))
	case r.URL.Query().Get("category") != "":
		products, err = h.products.ListByCategory(r.Context(), r.URL.Query().Get("category"))
	default:
		products, err = h.products.List(r.Context())
	}

	if err != nil {
		log.Error().Err(err).Msg("Failed to list products")
		respondWithError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("Failed to get product")
		respondWithError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}
