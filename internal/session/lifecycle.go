package session

import "time"

// Limits configures the completion state machine.
type Limits struct {
	MaxTurns     int
	Timeout      time.Duration
	MinHighValue int
}

// DefaultLimits matches the production engagement window.
var DefaultLimits = Limits{
	MaxTurns:     30,
	Timeout:      30 * time.Minute,
	MinHighValue: 3,
}

// EvaluateCompletion applies the active to complete transition. A session
// completes when the turn count reaches MaxTurns or the elapsed time exceeds
// Timeout. The transition is one-way: shouldFinalize is true exactly once,
// on the call that performs it, so the terminal report cannot fire twice
// even under duplicate turn delivery.
func (a *Aggregate) EvaluateCompletion(now time.Time, lim Limits) (isComplete, shouldFinalize bool) {
	if a.Status == StatusComplete {
		return true, false
	}
	if a.TurnCount() >= lim.MaxTurns || a.Elapsed(now) >= lim.Timeout {
		a.Status = StatusComplete
		a.CompletedAt = now
		return true, true
	}
	return false, false
}

// ShouldReportIntermediate arms the intermediate report: the distinct
// high-value entity count has reached the minimum AND has grown since the
// last report. It can fire repeatedly while the session is active, once per
// new count, and never after completion.
func (a *Aggregate) ShouldReportIntermediate(lim Limits) bool {
	if a.Status == StatusComplete {
		return false
	}
	hv := a.Bag.HighValue()
	if hv >= lim.MinHighValue && hv > a.ReportedHighValue {
		a.ReportedHighValue = hv
		return true
	}
	return false
}
