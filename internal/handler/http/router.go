package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vasiliy-maslov/online-shop/internal/cart"
	"github.com/vasiliy-maslov/online-shop/internal/metrics"
	"github.com/vasiliy-maslov/online-shop/internal/order"
	"github.com/vasiliy-maslov/online-shop/internal/product"
	"github.com/vasiliy-maslov/online-shop/internal/session"
	"github.com/vasiliy-maslov/online-shop/internal/user"
)

type RouterDeps struct {
	Users    user.Service
	Products product.Service
	Carts    cart.Service
	Orders   order.Service
	Sessions *session.Manager
	Metrics  *metrics.ServerMetrics
}

func NewRouter(deps RouterDeps) chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
	}

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	authHandler := NewAuthHandler(deps.Users, deps.Sessions)
	productHandler := NewProductHandler(deps.Products)
	cartHandler := NewCartHandler(deps.Carts)
	orderHandler := NewOrderHandler(deps.Orders)
	userHandler := NewUserHandler(deps.Users, deps.Sessions)
	adminHandler := NewAdminHandler(deps.Products, deps.Orders, deps.Users)

	router.Group(func(r chi.Router) {
		r.Use(WithSession(deps.Sessions))

		authHandler.RegisterRoutes(r)
		productHandler.RegisterRoutes(r)
		cartHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)
			orderHandler.RegisterRoutes(r)
			userHandler.RegisterRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			adminHandler.RegisterRoutes(r)
		})
	})

	return router
}
