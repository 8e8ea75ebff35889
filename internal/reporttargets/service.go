// Package reporttargets manages the recurring submission schedule configured
// for each report type.
package reporttargets

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/hotel-audit/hotelaudit/internal/compliance"
)

// Invalidator drops cached target listings after configuration changes.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service validates and stores report targets.
type Service struct {
	repo      Repository
	validator *validator.Validate
	cache     Invalidator
	logger    *slog.Logger
}

// NewService wires the repository with validation and cache invalidation.
func NewService(repo Repository, cache Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validator: newValidator(), cache: cache, logger: logger}
}

// ListTargets returns every configured target ordered by report type.
func (s *Service) ListTargets(ctx context.Context) ([]compliance.ReportTarget, error) {
	return s.repo.ListTargets(ctx)
}

// TargetsByType returns the configured targets keyed by report type.
func (s *Service) TargetsByType(ctx context.Context) (map[compliance.ReportType]compliance.ReportTarget, error) {
	targets, err := s.repo.ListTargets(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[compliance.ReportType]compliance.ReportTarget, len(targets))
	for _, t := range targets {
		out[t.ReportType] = t
	}
	return out, nil
}

// Upsert validates the input and creates or replaces the target for its report type.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (compliance.ReportTarget, error) {
	if err := validateInput(s.validator, in); err != nil {
		return compliance.ReportTarget{}, err
	}
	target, err := s.repo.Upsert(ctx, normalize(in))
	if err != nil {
		return compliance.ReportTarget{}, err
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("invalidate target cache", slog.String("report_type", in.ReportType), slog.Any("error", err))
		}
	}
	return target, nil
}
