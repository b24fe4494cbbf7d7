package director

import (
	"reflect"
	"strings"
	"testing"

	"github.com/vigilhq/mongoose/internal/belief"
	"github.com/vigilhq/mongoose/internal/extract"
	"github.com/vigilhq/mongoose/internal/intel"
)

func baseInput(turn int) Input {
	return Input{
		Category:             CategoryBankKYC,
		TurnNumber:           turn,
		Belief:               belief.NewState(),
		Bag:                  intel.NewBag(),
		CounterpartyMessages: turn,
		AvgMessageLength:     60,
	}
}

func TestDecide_FirstTurnUsesPrimaryPersona(t *testing.T) {
	tests := []struct {
		category ScamCategory
		want     Persona
	}{
		{CategoryBankKYC, PersonaUncle},
		{CategoryInvestment, PersonaTechSavvy},
		{CategoryJobOffer, PersonaStudent},
		{CategoryPrizeLottery, PersonaAunty},
		{CategoryPoliceLegal, PersonaWorried},
		{CategoryUnknown, PersonaUncle},
		{ParseCategory("no-such-scam"), PersonaUncle},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			in := baseInput(1)
			in.Category = tt.category
			d := Decide(in)
			if d.Persona != tt.want {
				t.Errorf("persona = %s, want %s", d.Persona, tt.want)
			}
			if len(d.Targets) != 0 {
				t.Errorf("turn 1 should be rapport phase with no targets, got %v", d.Targets)
			}
			if d.Objective != "build_rapport" {
				t.Errorf("objective = %s, want build_rapport", d.Objective)
			}
		})
	}
}

func TestDecide_PhaseBuckets(t *testing.T) {
	phoneBag := intel.NewBag()
	phoneBag.Add(intel.Phone, "+91-9876543210")

	digitalBag := intel.NewBag()
	digitalBag.Add(intel.PaymentID, "x@upi")
	digitalBag.Add(intel.URL, "http://fake.in")

	accountBag := intel.NewBag()
	accountBag.Add(intel.BankAccount, "12345678901")

	tests := []struct {
		name          string
		turn          int
		bag           *intel.Bag
		wantObjective string
	}{
		{"turn 2 rapport", 2, intel.NewBag(), "build_rapport"},
		{"turn 3 digital", 3, intel.NewBag(), "extract_digital"},
		{"turn 5 digital done skips to contact", 5, digitalBag, "extract_contact"},
		{"turn 6 contact", 6, intel.NewBag(), "extract_contact"},
		{"turn 7 phone held skips to financial", 7, phoneBag, "extract_financial"},
		{"turn 9 financial", 9, intel.NewBag(), "extract_financial"},
		{"turn 10 account held stalls", 10, accountBag, "stall"},
		{"turn 12 stalls unconditionally", 12, intel.NewBag(), "stall"},
		{"turn 30 stalls unconditionally", 30, intel.NewBag(), "stall"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput(tt.turn)
			in.PriorPersona = PersonaUncle
			in.Bag = tt.bag
			d := Decide(in)
			if d.Objective != tt.wantObjective {
				t.Errorf("objective = %s, want %s", d.Objective, tt.wantObjective)
			}
		})
	}
}

func TestDecide_RedirectOnNeverProvide(t *testing.T) {
	in := baseInput(4)
	in.PriorPersona = PersonaUncle
	in.Requests = []extract.Request{extract.ReqOTP}
	d := Decide(in)
	if !d.Redirect {
		t.Fatal("redirect flag not set when OTP requested")
	}
	if !strings.Contains(d.Directive, "Never provide") {
		t.Errorf("directive missing redirect warning: %q", d.Directive)
	}
}

func TestDecide_PersonaSwitch(t *testing.T) {
	// Low quality past turn 5 triggers a one-hop fallback switch.
	in := baseInput(7)
	in.PriorPersona = PersonaAunty
	in.CounterpartyMessages = 2
	in.AvgMessageLength = 5
	in.LatestMessage = "you are a bot, this is fake"
	d := Decide(in)
	if !d.PersonaSwitched {
		t.Fatalf("expected persona switch, quality=%f", d.Quality)
	}
	if d.Persona != PersonaUncle {
		t.Errorf("persona = %s, want fallback uncle", d.Persona)
	}

	// Same collapse before the threshold keeps the persona.
	in.TurnNumber = 4
	d = Decide(in)
	if d.PersonaSwitched || d.Persona != PersonaAunty {
		t.Errorf("turn 4 should not switch, got persona=%s switched=%v", d.Persona, d.PersonaSwitched)
	}
}

func TestConversationQuality(t *testing.T) {
	tests := []struct {
		name string
		in   func() Input
		want float64
	}{
		{"no messages is neutral", func() Input {
			in := baseInput(1)
			in.CounterpartyMessages = 0
			return in
		}, 0.5},
		{"engaged conversation climbs", func() Input {
			in := baseInput(8)
			in.CounterpartyMessages = 7
			return in
		}, 0.7},
		{"entities add capped bonus", func() Input {
			in := baseInput(8)
			in.CounterpartyMessages = 7
			for _, v := range []string{"a@upi", "b@upi", "c@upi", "d@upi"} {
				in.Bag.Add(intel.PaymentID, v)
			}
			return in
		}, 1.0},
		{"suspicion drops hard", func() Input {
			in := baseInput(2)
			in.CounterpartyMessages = 2
			in.LatestMessage = "are you a bot"
			return in
		}, 0.2},
		{"short messages drag down", func() Input {
			in := baseInput(2)
			in.CounterpartyMessages = 2
			in.AvgMessageLength = 10
			return in
		}, 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conversationQuality(tt.in())
			if diff := got - tt.want; diff > 0.001 || diff < -0.001 {
				t.Errorf("quality = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDecide_Deterministic(t *testing.T) {
	in := baseInput(6)
	in.PriorPersona = PersonaUncle
	in.Bag.Add(intel.PaymentID, "x@upi")
	in.Belief.ApplyTurn(intel.NewBag(), "cannot give my number")
	in.Requests = []extract.Request{extract.ReqOTP}

	first := Decide(in)
	for i := 0; i < 10; i++ {
		if got := Decide(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("Decide not deterministic:\n%+v\nvs\n%+v", got, first)
		}
	}
}

func TestDecide_PivotAndCircleBack(t *testing.T) {
	in := baseInput(6)
	in.PriorPersona = PersonaUncle
	in.Bag.Add(intel.Email, "x@fraud.com")
	in.Belief.ApplyTurn(intel.NewBag(), "i cannot give you my number")
	d := Decide(in)

	if !strings.Contains(d.Directive, "refused their phone number") {
		t.Errorf("directive missing refusal pivot: %q", d.Directive)
	}
	// Phone was refused, so the circle-back hint must not appear.
	if strings.Contains(d.Directive, "Circle back") {
		t.Errorf("circle-back offered for a refused phone: %q", d.Directive)
	}

	// With no refusal, holding a digital id but no phone invites circle-back.
	in2 := baseInput(5)
	in2.PriorPersona = PersonaUncle
	in2.Bag.Add(intel.Email, "x@fraud.com")
	d2 := Decide(in2)
	if !strings.Contains(d2.Directive, "Circle back") {
		t.Errorf("directive missing circle-back hint: %q", d2.Directive)
	}
}

func TestProfileCatalogue(t *testing.T) {
	for _, p := range []Persona{PersonaUncle, PersonaWorried, PersonaAunty, PersonaStudent, PersonaTechSavvy} {
		prof := ProfileFor(p)
		if prof.Display == "" || prof.Style == "" {
			t.Errorf("persona %s has incomplete profile", p)
		}
		if len(prof.FallbackLines) == 0 {
			t.Errorf("persona %s has no fallback lines", p)
		}
	}
}
