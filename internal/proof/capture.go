// Package proof handles presence-proof artifacts: capture from a
// camera-capable surface and durable storage addressed by a deterministic
// path convention.
package proof

import (
	"context"
	"errors"
	"fmt"
	"time"

	id "ponto/pkg/domain"
)

// Sentinel errors for capture. Both recover locally: the flow returns to
// capturing with no ledger impact.
var (
	ErrNoDeviceAccess = errors.New("camera access unavailable")
	ErrUserCancelled  = errors.New("capture cancelled by user")
)

// Artifact is the captured still image. The payload passes through untouched;
// no compression or resizing contract is imposed here.
type Artifact struct {
	Data        []byte
	ContentType string
	// PreviewRef is a client-viewable handle (data URL or object URL) so the
	// user can review the shot before submitting.
	PreviewRef string
}

// Capturer obtains a still image from the device. A retake simply discards
// the previous artifact and calls Capture again.
type Capturer interface {
	Capture(ctx context.Context) (*Artifact, error)
}

// ObjectPath builds the storage key for one submission:
// {institutionID}/{staffID}/{epochMillis}.jpg within the configured bucket.
// Rapid duplicate submissions are deduplicated upstream by attempt token, so
// same-millisecond collisions cannot arise from a single device.
func ObjectPath(institutionID id.InstitutionID, staffID id.StaffID, occurredAt time.Time) string {
	return fmt.Sprintf("%s/%s/%d.jpg", institutionID, staffID, occurredAt.UnixMilli())
}
