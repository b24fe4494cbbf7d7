// Package director decides, turn by turn, which persona to play, what to
// try to extract next, and how to phrase that for the generation
// collaborator. Decide is a pure function: identical inputs always produce
// an identical decision.
package director

import (
	"fmt"
	"strings"

	"github.com/vigilhq/mongoose/internal/belief"
	"github.com/vigilhq/mongoose/internal/extract"
	"github.com/vigilhq/mongoose/internal/intel"
)

// Quality thresholds.
const (
	switchQualityBelow = 0.3
	switchAfterTurn    = 5
)

// Extraction targets the director can name. Most are entity categories;
// company name and routing code are conversational targets with no pattern
// rule of their own.
const (
	TargetCompanyName = "company_name"
	TargetRoutingCode = "routing_code"
)

// Input carries everything Decide needs. The engine assembles it from the
// session aggregate; Decide itself reads nothing else.
type Input struct {
	Category             ScamCategory
	TurnNumber           int
	Belief               *belief.State
	Bag                  *intel.Bag
	PriorPersona         Persona // empty on the first turn
	Requests             []extract.Request
	CounterpartyMessages int
	AvgMessageLength     float64
	LatestMessage        string
}

// Decision is the per-turn strategy output. It is never mutated after
// Decide returns.
type Decision struct {
	Persona         Persona  `json:"persona"`
	PersonaSwitched bool     `json:"personaSwitched"`
	Objective       string   `json:"objective"`
	Targets         []string `json:"targets"`
	Redirect        bool     `json:"redirect"`
	Quality         float64  `json:"quality"`
	Directive       string   `json:"directive"`
}

type objective struct {
	name        string
	description string
	targets     []string
}

var (
	objRapport = objective{
		name:        "build_rapport",
		description: "React naturally and appear interested. Do not ask for anything yet.",
	}
	objDigital = objective{
		name:        "extract_digital",
		description: "Ask for their UPI ID, website link or email, framed as needing to verify.",
		targets:     []string{string(intel.PaymentID), string(intel.URL), string(intel.Email)},
	}
	objContact = objective{
		name:        "extract_contact",
		description: "Ask for their direct phone number and company or office name.",
		targets:     []string{string(intel.Phone), TargetCompanyName},
	}
	objFinancial = objective{
		name:        "extract_financial",
		description: "Ask where money should go: bank account number and branch routing code.",
		targets:     []string{string(intel.BankAccount), TargetRoutingCode},
	}
	objStall = objective{
		name:        "stall",
		description: "Waste their time with believable delays, excuses and technical problems.",
	}
)

// Decide computes the strategy for one turn.
func Decide(in Input) Decision {
	quality := conversationQuality(in)
	persona, switched := selectPersona(in, quality)
	obj := selectObjective(in)
	redirect := extract.RequestedNeverProvide(in.Requests)

	d := Decision{
		Persona:         persona,
		PersonaSwitched: switched,
		Objective:       obj.name,
		Targets:         obj.targets,
		Redirect:        redirect,
		Quality:         quality,
	}
	d.Directive = buildDirective(in, obj, redirect)
	return d
}

// selectPersona applies the fixed persona table. Turn 1 always uses the
// category's primary persona; afterwards the persona only changes when
// quality collapses after the switch threshold, and then by exactly one hop
// in the fallback graph.
func selectPersona(in Input, quality float64) (Persona, bool) {
	if in.PriorPersona == "" || in.TurnNumber == 1 {
		return PrimaryPersona(in.Category), false
	}
	if in.TurnNumber > switchAfterTurn && quality < switchQualityBelow {
		if fb := FallbackPersona(in.PriorPersona); fb != in.PriorPersona {
			return fb, true
		}
	}
	return in.PriorPersona, false
}

// selectObjective buckets the turn number into phases, skipping ahead when
// a phase's goal is already met.
func selectObjective(in Input) objective {
	switch {
	case in.TurnNumber <= 2:
		return objRapport
	case in.TurnNumber <= 5:
		if in.Bag.Has(intel.PaymentID) && in.Bag.Has(intel.URL) {
			return objContact
		}
		return objDigital
	case in.TurnNumber <= 8:
		if in.Bag.Has(intel.Phone) {
			return objFinancial
		}
		return objContact
	case in.TurnNumber <= 11:
		if in.Bag.Has(intel.BankAccount) {
			return objStall
		}
		return objFinancial
	default:
		return objStall
	}
}

// conversationQuality scores how well the engagement is going, in [0,1].
func conversationQuality(in Input) float64 {
	if in.CounterpartyMessages == 0 {
		return 0.5
	}
	q := 0.5
	if in.CounterpartyMessages > 3 {
		q += 0.1
	}
	if in.CounterpartyMessages > 6 {
		q += 0.1
	}
	if bonus := 0.1 * float64(in.Bag.Valuable()); bonus > 0.3 {
		q += 0.3
	} else {
		q += bonus
	}
	if extract.DetectSuspicion(in.LatestMessage) {
		q -= 0.3
	}
	if in.AvgMessageLength > 0 && in.AvgMessageLength < 20 {
		q -= 0.1
	}
	return clamp01(q)
}

// refusalPivots maps a refused category to the next thing worth asking for,
// in the fixed pivot order.
var refusalPivots = []struct {
	refused intel.Category
	hint    string
}{
	{intel.Phone, "They refused their phone number. Ask for their email address or an official ID instead."},
	{intel.Email, "They refused their email. Ask for their UPI ID or company website link."},
	{intel.URL, "They refused a link. Ask for their company name, branch, or employee ID."},
	{intel.PaymentID, "They refused their UPI ID. Ask for their company name, branch, or employee ID."},
	{intel.CaseID, "They refuse all identifiers. Raise gentle doubt: if they cannot share any detail, how can this be trusted?"},
}

// buildDirective assembles the directive text in a fixed order so output is
// reproducible: objective, targets, redirect, pivot, circle-back, tactic
// notes, belief summary. The text must stand alone; a template fallback
// has to be able to act on it without the generation collaborator.
func buildDirective(in Input, obj objective, redirect bool) string {
	var lines []string
	lines = append(lines, "Objective: "+obj.description)

	if len(obj.targets) > 0 {
		lines = append(lines, "Extraction targets: "+strings.Join(obj.targets, ", "))
	}
	if redirect {
		lines = append(lines, "They are asking for an OTP, PIN, CVV or password. Never provide it. Pivot to asking for their own contact details instead.")
	}
	for _, rp := range refusalPivots {
		if in.Belief != nil && in.Belief.Refused[rp.refused] {
			lines = append(lines, "Pivot: "+rp.hint)
			break
		}
	}
	hasDigital := in.Bag.Has(intel.PaymentID) || in.Bag.Has(intel.URL) || in.Bag.Has(intel.Email)
	if hasDigital && !in.Bag.Has(intel.Phone) && (in.Belief == nil || in.Belief.SafeToAsk(intel.Phone)) {
		lines = append(lines, "Circle back: you already have a digital identifier. Casually ask for their direct phone number as a faster way to reach them.")
	}
	if in.Belief != nil {
		if in.Belief.TacticsSeen[extract.TacticUrgency] {
			lines = append(lines, "Note: they push urgency. Show mild panic but ask for verification first.")
		}
		if in.Belief.TacticsSeen[extract.TacticThreat] {
			lines = append(lines, "Note: they make threats. Show fear but ask for official credentials.")
		}
		if in.Belief.TacticsSeen[extract.TacticAuthority] {
			lines = append(lines, "Note: they claim authority. Ask for a badge or employee ID to verify.")
		}
		lines = append(lines, "State: "+in.Belief.Summary())
	}
	return strings.Join(lines, "\n")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// String implements fmt.Stringer for logging.
func (d Decision) String() string {
	return fmt.Sprintf("persona=%s objective=%s quality=%.2f redirect=%v", d.Persona, d.Objective, d.Quality, d.Redirect)
}
