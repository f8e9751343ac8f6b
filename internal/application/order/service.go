package order

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brickdesk/backend/internal/domain/order"
	"github.com/brickdesk/backend/internal/domain/platform"
	"github.com/brickdesk/backend/internal/domain/shared"
)

// Service exposes operator-facing order status operations
type Service struct {
	repo   order.Repository
	logger *zap.Logger
}

// NewService creates the order application service
func NewService(repo order.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// findOwned loads an order for one user. Other users' orders read as
// not found, so order ids leak nothing across users.
func (s *Service) findOwned(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return o, nil
}

// UpdateStatus applies an operator-initiated status transition. The
// transition sets the internal override, so later syncs reporting a
// different platform status do not clobber the operator's decision.
func (s *Service) UpdateStatus(ctx context.Context, userID, orderID uuid.UUID, status order.Status, notes string, force bool) (*order.Order, error) {
	o, err := s.findOwned(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	from := o.EffectiveStatus()
	if err := o.Transition(order.TransitionRequest{
		Status: status,
		Source: order.SourceOperator,
		Force:  force,
		Notes:  notes,
	}); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated by operator",
		zap.String("order_id", orderID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
		zap.Bool("force", force),
	)
	return o, nil
}

// List returns orders matching an effective status, optionally scoped
// to one platform
func (s *Service) List(ctx context.Context, userID uuid.UUID, code platform.Code, status order.Status) ([]order.Order, error) {
	return s.repo.ListByStatus(ctx, userID, code, status)
}

// Get returns one order with its history
func (s *Service) Get(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	return s.findOwned(ctx, userID, orderID)
}

// StatusHistory returns the append-only transition history for an order
func (s *Service) StatusHistory(ctx context.Context, userID, orderID uuid.UUID) ([]order.StatusHistoryEntry, error) {
	if _, err := s.findOwned(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, orderID)
}
