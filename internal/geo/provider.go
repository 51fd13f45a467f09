package geo

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for location acquisition. Callers disable submission and
// offer a refresh; none of these touch the ledger.
var (
	ErrPermissionDenied  = errors.New("location permission denied")
	ErrSignalUnavailable = errors.New("location signal unavailable")
	ErrTimeout           = errors.New("location acquisition timed out")
	ErrUnsupported       = errors.New("location not supported on this device")
)

// Platform geolocation error codes, as delivered by the device runtime.
const (
	codePermissionDenied    = 1
	codePositionUnavailable = 2
	codeTimeout             = 3
)

// MapPlatformCode translates a platform geolocation error code into the
// provider's error taxonomy. Unknown codes map to ErrSignalUnavailable.
func MapPlatformCode(code int) error {
	switch code {
	case codePermissionDenied:
		return ErrPermissionDenied
	case codePositionUnavailable:
		return ErrSignalUnavailable
	case codeTimeout:
		return ErrTimeout
	default:
		return ErrSignalUnavailable
	}
}

// Fix is a single position reading from the sensor.
type Fix struct {
	Coordinate Coordinate
	// AccuracyMeters is the sensor-reported accuracy radius. Informational
	// only; admissibility is decided by the geofence validator.
	AccuracyMeters float64
}

// Sensor is the platform geolocation primitive. Implementations must honor
// ctx cancellation; the provider never reuses a previous reading.
type Sensor interface {
	CurrentPosition(ctx context.Context) (Fix, error)
}

// AcquireTimeout bounds a single acquisition so the caller never hangs
// waiting on a cold GPS.
const AcquireTimeout = 10 * time.Second

// Provider acquires fresh device coordinates. Each call goes to the sensor
// with high accuracy requested and a maximum fix age of zero, so a stale
// cached position can never satisfy an acquisition.
type Provider struct {
	sensor  Sensor
	timeout time.Duration
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithAcquireTimeout overrides the acquisition timeout. Tests use this to
// avoid waiting out the full ten seconds.
func WithAcquireTimeout(d time.Duration) ProviderOption {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewProvider constructs a Provider over the given sensor.
func NewProvider(sensor Sensor, opts ...ProviderOption) (*Provider, error) {
	if sensor == nil {
		return nil, fmt.Errorf("location sensor is required")
	}
	p := &Provider{sensor: sensor, timeout: AcquireTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Acquire obtains a fresh coordinate from the sensor within the bounded
// timeout. The result is validated before being returned.
func (p *Provider) Acquire(ctx context.Context) (Coordinate, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	fix, err := p.sensor.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Coordinate{}, ErrTimeout
		}
		return Coordinate{}, err
	}
	if err := fix.Coordinate.Validate(); err != nil {
		return Coordinate{}, fmt.Errorf("sensor returned invalid coordinate: %w", err)
	}
	return fix.Coordinate, nil
}

// Refresh re-triggers acquisition. It is idempotent and safe to call
// repeatedly; each call produces an independent fresh reading.
func (p *Provider) Refresh(ctx context.Context) (Coordinate, error) {
	return p.Acquire(ctx)
}
