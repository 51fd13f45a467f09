// Package compliance aggregates ledger entries into per-staff and fleet
// presence summaries.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"ponto/internal/checkin/models"
	id "ponto/pkg/domain"
	dErrors "ponto/pkg/domain-errors"
	"ponto/pkg/requestcontext"
)

// EventReader is the ledger read port.
type EventReader interface {
	ListByInstitution(ctx context.Context, institutionID id.InstitutionID, window models.Window, kinds ...models.CheckKind) ([]*models.CheckinEvent, error)
	ListByStaff(ctx context.Context, institutionID id.InstitutionID, staffID id.StaffID, window models.Window) ([]*models.CheckinEvent, error)
}

// StaffSummary is one staff member's aggregate over the window. The radius
// counts partition the total: WithinRadius + OutsideRadius == TotalCheckins.
type StaffSummary struct {
	StaffID       id.StaffID `json:"staff_id"`
	TotalCheckins int        `json:"total_checkins"`
	WithinRadius  int        `json:"within_radius"`
	OutsideRadius int        `json:"outside_radius"`
	LastCheckinAt time.Time  `json:"last_checkin_at"`
}

// FleetSummary is the institution-wide aggregate over the window.
type FleetSummary struct {
	InstitutionID id.InstitutionID   `json:"institution_id"`
	Range         models.WindowRange `json:"range"`
	StaffCount    int                `json:"staff_count"`
	TotalCheckins int                `json:"total_checkins"`
	WithinRadius  int                `json:"within_radius"`
	OutsideRadius int                `json:"outside_radius"`
	Staff         []*StaffSummary    `json:"staff"`
	// Truncated reports that the ledger read hit the window limit, so the
	// summary may undercount older activity.
	Truncated bool `json:"truncated"`
}

// Service aggregates compliance summaries from the ledger.
type Service struct {
	events EventReader
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New constructs a compliance service over the ledger reader.
func New(events EventReader, opts ...Option) (*Service, error) {
	if events == nil {
		return nil, fmt.Errorf("event reader is required")
	}
	svc := &Service{events: events}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Fleet summarizes all staff activity in the institution for a named range.
// Aggregation is order-independent; the same set of events yields the same
// summary regardless of arrival order.
func (s *Service) Fleet(ctx context.Context, institutionID id.InstitutionID, rng models.WindowRange) (*FleetSummary, error) {
	if institutionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "institution_id is required")
	}
	window, err := models.WindowFor(rng, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if rng == "" {
		rng = models.RangeWeek
	}

	events, err := s.events.ListByInstitution(ctx, institutionID, window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read ledger")
	}

	summary := &FleetSummary{
		InstitutionID: institutionID,
		Range:         rng,
		Truncated:     window.Limit > 0 && len(events) == window.Limit,
	}
	byStaff := make(map[id.StaffID]*StaffSummary)
	for _, event := range events {
		staff, ok := byStaff[event.StaffID]
		if !ok {
			staff = &StaffSummary{StaffID: event.StaffID}
			byStaff[event.StaffID] = staff
		}
		tally(staff, event)
		summary.TotalCheckins++
		if event.WithinRadius {
			summary.WithinRadius++
		} else {
			summary.OutsideRadius++
		}
	}

	summary.StaffCount = len(byStaff)
	summary.Staff = make([]*StaffSummary, 0, len(byStaff))
	for _, staff := range byStaff {
		summary.Staff = append(summary.Staff, staff)
	}
	slices.SortFunc(summary.Staff, func(a, b *StaffSummary) int {
		return strings.Compare(a.StaffID.String(), b.StaffID.String())
	})

	if s.logger != nil {
		s.logger.DebugContext(ctx, "fleet summary computed",
			"institution_id", institutionID,
			"range", rng,
			"staff_count", summary.StaffCount,
			"total_checkins", summary.TotalCheckins,
		)
	}
	return summary, nil
}

// Staff summarizes one staff member's activity for a named range.
func (s *Service) Staff(ctx context.Context, institutionID id.InstitutionID, staffID id.StaffID, rng models.WindowRange) (*StaffSummary, error) {
	if institutionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "institution_id is required")
	}
	if staffID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "staff_id is required")
	}
	window, err := models.WindowFor(rng, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	events, err := s.events.ListByStaff(ctx, institutionID, staffID, window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read ledger")
	}

	summary := &StaffSummary{StaffID: staffID}
	for _, event := range events {
		tally(summary, event)
	}
	return summary, nil
}

func tally(summary *StaffSummary, event *models.CheckinEvent) {
	summary.TotalCheckins++
	if event.WithinRadius {
		summary.WithinRadius++
	} else {
		summary.OutsideRadius++
	}
	if event.OccurredAt.After(summary.LastCheckinAt) {
		summary.LastCheckinAt = event.OccurredAt
	}
}
