package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/online-shop/internal/session"
	"github.com/vasiliy-maslov/online-shop/internal/user"
)

type UserHandler struct {
	users    user.Service
	sessions *session.Manager
}

func NewUserHandler(users user.Service, sessions *session.Manager) *UserHandler {
	return &UserHandler{users: users, sessions: sessions}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Get("/user/settings", h.handleSettings)
	router.Post("/user/delete-account", h.handleDeleteAccount)
}

func (h *UserHandler) handleSettings(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	u, err := h.users.GetByID(r.Context(), s.User.ID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Stringer("user_id", s.User.ID).Msg("Failed to load user settings")
		respondWithError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	respondWithJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	s := sessionFromContext(r.Context())

	if err := h.users.DeleteAccount(r.Context(), s.User.ID); err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, user.ErrPendingOrders):
			clientMessage = "You still have pending orders, the account cannot be deleted"
		case errors.Is(err, user.ErrNotFound):
			clientMessage = "User not found"
		default:
			log.Error().Err(err).Stringer("user_id", s.User.ID).Msg("Failed to delete account")
			clientMessage = "Failed to delete account"
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	h.sessions.Destroy(w, r)
	w.WriteHeader(http.StatusNoContent)
}
