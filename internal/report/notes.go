package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/vigilhq/mongoose/internal/belief"
	"github.com/vigilhq/mongoose/internal/extract"
	"github.com/vigilhq/mongoose/internal/intel"
)

// tacticOrder fixes the rendering order so notes are deterministic.
var tacticOrder = []extract.Tactic{
	extract.TacticUrgency,
	extract.TacticThreat,
	extract.TacticAuthority,
	extract.TacticReward,
	extract.TacticFear,
}

// BuildNotes renders the free-text risk summary attached to every payload.
// Analyst-facing colour only; nothing downstream parses it.
func BuildNotes(category string, bag *intel.Bag, st *belief.State) string {
	var lines []string
	lines = append(lines, "Suspected scam type: "+category)

	if st != nil {
		var seen []string
		for _, t := range tacticOrder {
			if st.TacticsSeen[t] {
				seen = append(seen, string(t))
			}
		}
		if len(seen) > 0 {
			lines = append(lines, "Pressure tactics observed: "+strings.Join(seen, ", "))
		}
		if st.IsHighPressure() {
			lines = append(lines, fmt.Sprintf("Sustained urgency pressure (%d occurrences)", st.UrgencyCount))
		}
		if st.IsSuspicious() {
			lines = append(lines, fmt.Sprintf("Counterparty suspected automation %d times", st.SuspicionCount))
		}
	}
	if bag != nil {
		if preds := bag.PredictBankNames(); len(preds) > 0 {
			lines = append(lines, "Probable issuing banks: "+strings.Join(preds, "; "))
		}
		lines = append(lines, fmt.Sprintf("Distinct identifiers collected: %d (%d high-value)", bag.Valuable(), bag.HighValue()))
	}
	return strings.Join(lines, "\n")
}

// Build assembles a payload for a session snapshot. The caller sets Score
// only on final reports.
func Build(sessionID, category string, bag *intel.Bag, st *belief.State, turnCount int, elapsed time.Duration, reportID string) Payload {
	return Payload{
		ReportID:        reportID,
		SessionID:       sessionID,
		Category:        category,
		Entities:        bag.ToPayload(),
		TurnCount:       turnCount,
		DurationSeconds: elapsed.Seconds(),
		Notes:           BuildNotes(category, bag, st),
		Timestamp:       time.Now().UTC(),
	}
}
