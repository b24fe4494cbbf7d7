// Package session owns the per-conversation aggregate: turn history,
// accumulated identifiers, belief state and the one-way completion
// transition. Everything here is plain state; serialization of access is the
// engine's job.
package session

import (
	"fmt"
	"time"

	"github.com/vigilhq/mongoose/internal/belief"
	"github.com/vigilhq/mongoose/internal/intel"
)

// Status is the lifecycle state. Complete is terminal.
type Status string

const (
	StatusActive   Status = "active"
	StatusComplete Status = "complete"
)

// TurnRecord is one entry in the append-only conversation log.
type TurnRecord struct {
	Index       int       `json:"index"`
	Text        string    `json:"text"`
	NewEntities int       `json:"newEntities"`
	Persona     string    `json:"persona"`
	Objective   string    `json:"objective"`
	Action      string    `json:"action"`
	Reply       string    `json:"reply"`
	Timestamp   time.Time `json:"timestamp"`
}

// Aggregate is the unit of state for one conversation. Created on the first
// message, mutated every turn, immutable once Status reaches complete except
// for archival fields (score, confirmation).
type Aggregate struct {
	ID          string        `json:"id"`
	Category    string        `json:"category"`
	Persona     string        `json:"persona"`
	Status      Status        `json:"status"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt time.Time     `json:"completedAt,omitempty"`
	Turns       []TurnRecord  `json:"turns"`
	Bag         *intel.Bag    `json:"bag"`
	Belief      *belief.State `json:"belief"`

	// ReportedHighValue is the high-value entity count at the last
	// intermediate report, the monotone re-fire guard.
	ReportedHighValue int     `json:"reportedHighValue"`
	ConfirmedScam     bool    `json:"confirmedScam"`
	Score             float64 `json:"score"`

	// Store bookkeeping, managed by the repository drivers.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates an active aggregate for a conversation id.
func New(id, category string, now time.Time) *Aggregate {
	return &Aggregate{
		ID:        id,
		Category:  category,
		Status:    StatusActive,
		StartedAt: now,
		Bag:       intel.NewBag(),
		Belief:    belief.NewState(),
	}
}

// TurnCount returns the number of recorded turns.
func (a *Aggregate) TurnCount() int {
	return len(a.Turns)
}

// NextTurnIndex returns the index the next turn must carry. Indices start
// at 1 and are strictly increasing.
func (a *Aggregate) NextTurnIndex() int {
	if len(a.Turns) == 0 {
		return 1
	}
	return a.Turns[len(a.Turns)-1].Index + 1
}

// AppendTurn adds a record to the log, rejecting any index that does not
// strictly increase.
func (a *Aggregate) AppendTurn(rec TurnRecord) error {
	if len(a.Turns) > 0 {
		if last := a.Turns[len(a.Turns)-1].Index; rec.Index <= last {
			return fmt.Errorf("turn index %d not after %d", rec.Index, last)
		}
	}
	a.Turns = append(a.Turns, rec)
	return nil
}

// LatestTurn returns the last record, or a zero record for an empty log.
func (a *Aggregate) LatestTurn() TurnRecord {
	if len(a.Turns) == 0 {
		return TurnRecord{}
	}
	return a.Turns[len(a.Turns)-1]
}

// Elapsed returns wall-clock time since the session started.
func (a *Aggregate) Elapsed(now time.Time) time.Duration {
	return now.Sub(a.StartedAt)
}

// IsComplete reports whether the terminal transition has happened.
func (a *Aggregate) IsComplete() bool {
	return a.Status == StatusComplete
}
