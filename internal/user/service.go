package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPendingOrders      = errors.New("account has pending orders")
)

// PendingOrderCounter reports how many PENDING orders a user currently has.
// Satisfied by the order repository.
type PendingOrderCounter interface {
	CountPendingByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type Service interface {
	Register(ctx context.Context, username, password, email string) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	orders PendingOrderCounter
}

func NewService(repo Repository, orders PendingOrderCounter) Service {
	return &service{repo: repo, orders: orders}
}

func (s *service) Register(ctx context.Context, username, password, email string) (*User, error) {
	if username == "" {
		return nil, errors.New("service: username cannot be empty")
	}
	if password == "" {
		return nil, errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	u := &User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Role:         RoleUser,
	}

	if _, err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameExists) || errors.Is(err, ErrEmailExists) {
			return nil, err
		}
		log.Error().Err(err).Str("username", username).Msg("service: failed to create user")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Str("username", u.Username).Msg("service: user registered")
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Str("username", username).Msg("service: failed to fetch user for login")
		return nil, fmt.Errorf("service: failed to fetch user for login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to get user by id")
		return nil, fmt.Errorf("service: failed to get user by id '%s': %w", id, err)
	}
	return u, nil
}

func (s *service) GetByUsername(ctx context.Context, username string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("username", username).Msg("service: failed to get user by username")
		return nil, fmt.Errorf("service: failed to get user by username '%s': %w", username, err)
	}
	return u, nil
}

func (s *service) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	pending, err := s.orders.CountPendingByUser(ctx, id)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to count pending orders")
		return fmt.Errorf("service: failed to count pending orders: %w", err)
	}
	if pending > 0 {
		log.Warn().Stringer("user_id", id).Int64("pending", pending).Msg("service: account deletion blocked by pending orders")
		return ErrPendingOrders
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to delete user")
		return fmt.Errorf("service: failed to delete user '%s': %w", id, err)
	}

	log.Info().Stringer("user_id", id).Msg("service: account deleted")
	return nil
}
