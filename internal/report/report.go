// Package report publishes intelligence payloads to the reporting
// collaborator over NATS. Intermediate updates fire while a session is
// active; the final payload fires exactly once, guarded by the session's
// completion transition.
package report

import (
	"context"
	"time"

	"github.com/vigilhq/mongoose/internal/intel"
)

// NATS subjects. Intermediate updates and terminal reports go to separate
// subjects so consumers can subscribe to either independently.
const (
	SubjectIntermediate = "honeypot.intel.update"
	SubjectFinal        = "honeypot.session.complete"
)

// Payload is the wire shape for both report kinds. The field set is a
// stable external contract: the same session always reports under the same
// names.
type Payload struct {
	ReportID        string        `json:"reportId"`
	SessionID       string        `json:"sessionId"`
	Kind            string        `json:"kind"`
	Category        string        `json:"category"`
	Entities        intel.Payload `json:"entities"`
	TurnCount       int           `json:"turnCount"`
	DurationSeconds float64       `json:"durationSeconds"`
	Score           float64       `json:"score,omitempty"`
	Notes           string        `json:"notes"`
	Timestamp       time.Time     `json:"timestamp"`
}

// Reporter is what the engine depends on. The NATS client is the production
// implementation; tests substitute a recorder.
type Reporter interface {
	Intermediate(ctx context.Context, p Payload) error
	Final(ctx context.Context, p Payload) error
}

// Nop is a Reporter that discards everything. Used when reporting is
// disabled in config.
type Nop struct{}

func (Nop) Intermediate(context.Context, Payload) error { return nil }
func (Nop) Final(context.Context, Payload) error        { return nil }
