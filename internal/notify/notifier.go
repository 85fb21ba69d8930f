// Package notify delivers best-effort notifications about order status
// changes. Delivery failures are logged and swallowed; they never fail the
// operation that triggered them.
package notify

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/online-shop/internal/order"
	"github.com/vasiliy-maslov/online-shop/internal/user"
)

// UserGetter resolves the order's owner so the mail sink knows where to
// deliver. Satisfied by the user service.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Service fans a status change out to the configured sinks. Either sink may
// be nil (not configured).
type Service struct {
	users  UserGetter
	mail   *MailSender
	events *EventPublisher
}

func NewService(users UserGetter, mail *MailSender, events *EventPublisher) *Service {
	return &Service{users: users, mail: mail, events: events}
}

func (s *Service) OrderStatusChanged(ctx context.Context, o *order.Order, oldStatus, newStatus order.Status) {
	if s.events != nil && s.events.Enabled() {
		if err := s.events.PublishStatusChange(ctx, o, oldStatus, newStatus); err != nil {
			log.Error().Err(err).Stringer("order_id", o.ID).Msg("notify: failed to publish status event")
		}
	}

	if s.mail == nil {
		return
	}

	u, err := s.users.GetByID(ctx, o.UserID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("notify: failed to resolve order owner")
		return
	}
	if u.Email == "" {
		log.Debug().Stringer("user_id", u.ID).Msg("notify: user has no email, skipping mail")
		return
	}

	if err := s.mail.SendStatusChange(u, o, oldStatus, newStatus); err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Str("email", u.Email).
			Msg("notify: failed to send status mail")
		return
	}

	log.Info().Stringer("order_id", o.ID).Str("email", u.Email).Msg("notify: status mail sent")
}
