// Package service holds the guest-list business logic: the confirmation
// engine, administrative operations, search, and statistics. Transport and
// persistence stay outside; the store is consumed through GuestStore.
package service

import (
	"context"
	"log/slog"

	guestmetrics "guestlist/internal/guest/metrics"
	"guestlist/internal/guest/models"
	id "guestlist/pkg/domain"
	request "guestlist/pkg/platform/middleware/request"
)

// GuestStore is the persistence contract the service depends on. Stores
// signal factual states with pkg/platform/sentinel errors; the service
// translates them into domain errors or outcomes.
type GuestStore interface {
	Create(ctx context.Context, guest *models.Guest) error
	Update(ctx context.Context, guest *models.Guest) error
	Delete(ctx context.Context, guestID id.GuestID) error
	FindByID(ctx context.Context, guestID id.GuestID) (*models.Guest, error)
	FindByName(ctx context.Context, lastName, firstName string) (*models.Guest, error)
	List(ctx context.Context) ([]*models.Guest, error)
	Search(ctx context.Context, query string) ([]*models.Guest, error)
	CountAll(ctx context.Context) (int, error)
	CountConfirmed(ctx context.Context) (int, error)

	// Execute holds the per-guest mutual exclusion (mutex, row lock, or
	// optimistic retry) across validate and mutate, so state transitions for
	// one guest serialize.
	Execute(ctx context.Context, guestID id.GuestID, validate func(*models.Guest) error, mutate func(*models.Guest)) (*models.Guest, error)
}

// Service orchestrates guest confirmation and administration.
type Service struct {
	guests  GuestStore
	logger  *slog.Logger
	metrics *guestmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *guestmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(guests GuestStore, opts ...Option) *Service {
	s := &Service{guests: guests}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if s.logger == nil {
		return
	}
	if requestID := request.GetRequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) recordConfirmation(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordConfirmation(outcome)
	}
}
