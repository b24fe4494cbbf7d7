// Package belief tracks what the counterparty has revealed, refused or
// signaled over the life of one conversation.
package belief

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vigilhq/mongoose/internal/extract"
	"github.com/vigilhq/mongoose/internal/intel"
)

// Thresholds for the derived pressure predicates.
const (
	highPressureAt = 3
	suspiciousAt   = 2
)

// refusalPhrases signal the counterparty declining to share something.
var refusalPhrases = []string{
	"cannot give", "can't give", "cant give",
	"cannot share", "can't share", "cant share",
	"not allowed", "not permitted", "not supposed to",
	"should not give", "should not share",
	"won't give", "wont give", "won't share", "wont share",
	"don't ask", "dont ask",
	"why do you need", "why are you asking",
	"just do it", "just proceed", "just follow",
	"stop asking", "irrelevant",
	"not required", "not needed", "not necessary", "no need for that",
	"security reasons", "confidential",
}

// refusalCues attributes a refusal to a category. First cue match wins, in
// this fixed order; this can misattribute when one sentence mentions several
// categories, which matches the upstream behavior we replicate.
var refusalCues = []struct {
	category intel.Category
	cues     []string
}{
	{intel.Phone, []string{"number", "phone", "contact", "whatsapp", "call"}},
	{intel.Email, []string{"email", "mail"}},
	{intel.URL, []string{"link", "website", "url"}},
	{intel.PaymentID, []string{"upi", "gpay", "paytm", "phonepe"}},
	{intel.CaseID, []string{"employee", "id", "company", "branch", "badge"}},
}

// urgencyPhrases drive the urgency counter.
var urgencyPhrases = []string{
	"urgent", "immediately", "right now", "hurry", "deadline",
	"expires", "last chance", "within minutes", "asap",
}

// State is the per-session belief record. One instance per conversation,
// mutated once per turn by ApplyTurn, discarded with the session.
type State struct {
	Shared         map[intel.Category]bool `json:"shared"`
	Refused        map[intel.Category]bool `json:"refused"`
	UrgencyCount   int                     `json:"urgencyCount"`
	SuspicionCount int                     `json:"suspicionCount"`
	TacticsSeen    map[extract.Tactic]bool `json:"tacticsSeen"`
}

func NewState() *State {
	return &State{
		Shared:      make(map[intel.Category]bool),
		Refused:     make(map[intel.Category]bool),
		TacticsSeen: make(map[extract.Tactic]bool),
	}
}

// ApplyTurn folds one turn's extraction output and raw text into the state.
// Order matters: disclosures are recorded before refusals so a message that
// both shares and hedges still counts as shared, and a later disclosure
// always clears an earlier refusal.
func (s *State) ApplyTurn(bag *intel.Bag, rawText string) {
	if bag != nil {
		for _, cat := range bag.NonEmpty() {
			if cat == intel.Keyword {
				continue
			}
			s.Shared[cat] = true
			delete(s.Refused, cat)
		}
	}

	lower := strings.ToLower(rawText)

	if cat, ok := detectRefusal(lower); ok && !s.Shared[cat] {
		s.Refused[cat] = true
	}

	for _, t := range extract.DetectTactics(rawText) {
		s.TacticsSeen[t] = true
	}
	if containsAny(lower, urgencyPhrases) {
		s.UrgencyCount++
		s.TacticsSeen[extract.TacticUrgency] = true
	}
	if extract.DetectSuspicion(rawText) {
		s.SuspicionCount++
	}
}

// detectRefusal returns the category being refused, if any. A refusal phrase
// with no category cue is ambiguous and is dropped rather than guessed.
func detectRefusal(lower string) (intel.Category, bool) {
	if !containsAny(lower, refusalPhrases) {
		return "", false
	}
	for _, rc := range refusalCues {
		if containsAny(lower, rc.cues) {
			return rc.category, true
		}
	}
	return "", false
}

// IsHighPressure reports sustained urgency pressure.
func (s *State) IsHighPressure() bool {
	return s.UrgencyCount >= highPressureAt
}

// IsSuspicious reports repeated bot/automation accusations.
func (s *State) IsSuspicious() bool {
	return s.SuspicionCount >= suspiciousAt
}

// SafeToAsk reports whether a category can still be pursued: not already
// volunteered and not explicitly refused.
func (s *State) SafeToAsk(cat intel.Category) bool {
	return !s.Shared[cat] && !s.Refused[cat]
}

// Summary renders a short deterministic digest for the directive: shared
// categories, then refused, then pressure and suspicion notes.
func (s *State) Summary() string {
	var parts []string
	if shared := sortedCategories(s.Shared); len(shared) > 0 {
		parts = append(parts, "shared: "+strings.Join(shared, ", "))
	}
	if refused := sortedCategories(s.Refused); len(refused) > 0 {
		parts = append(parts, "refused: "+strings.Join(refused, ", "))
	}
	if s.IsHighPressure() {
		parts = append(parts, fmt.Sprintf("high pressure (urgency x%d)", s.UrgencyCount))
	}
	if s.IsSuspicious() {
		parts = append(parts, fmt.Sprintf("suspicious of automation (x%d)", s.SuspicionCount))
	}
	if len(parts) == 0 {
		return "no disclosures yet"
	}
	return strings.Join(parts, "; ")
}

func sortedCategories(set map[intel.Category]bool) []string {
	out := make([]string, 0, len(set))
	for cat := range set {
		out = append(out, string(cat))
	}
	sort.Strings(out)
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
