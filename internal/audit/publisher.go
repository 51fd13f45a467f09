package audit

import (
	"context"
	"log/slog"

	"ponto/pkg/requestcontext"
)

// Sink receives every published event in addition to the store. Used for the
// Kafka forwarder; nil-safe.
type Sink interface {
	Forward(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	sink   Sink
	logger *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithSink forwards published events to an external sink as well.
func WithSink(sink Sink) PublisherOption {
	return func(p *Publisher) { p.sink = sink }
}

// WithLogger mirrors published events to the structured log.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = logger }
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records an audit event. Missing timestamps and request IDs are filled
// from the context. Sink failures are logged, never propagated: audit must
// not fail the operation it describes.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.DeviceID == "" {
		event.DeviceID = requestcontext.DeviceID(ctx)
	}

	if p.logger != nil {
		p.logger.InfoContext(ctx, string(event.Action),
			"log_type", "audit",
			"institution_id", event.InstitutionID,
			"staff_id", event.StaffID,
			"subject", event.Subject,
			"reason", event.Reason,
			"request_id", event.RequestID,
		)
	}

	if err := p.store.Append(ctx, event); err != nil {
		return err
	}

	if p.sink != nil {
		if err := p.sink.Forward(ctx, event); err != nil && p.logger != nil {
			p.logger.WarnContext(ctx, "audit sink forward failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
	return nil
}

// List returns the audit trail for one staff member.
func (p *Publisher) List(ctx context.Context, staffID string) ([]Event, error) {
	return p.store.ListByStaff(ctx, staffID)
}
