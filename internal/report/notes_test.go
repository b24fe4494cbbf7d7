package report

import (
	"strings"
	"testing"
	"time"

	"github.com/vigilhq/mongoose/internal/belief"
	"github.com/vigilhq/mongoose/internal/intel"
)

func TestBuildNotes(t *testing.T) {
	bag := intel.NewBag()
	bag.Add(intel.Phone, "+91-9876543210")
	bag.Add(intel.BankAccount, "12345678901")

	st := belief.NewState()
	st.ApplyTurn(nil, "do it immediately or police will arrest you")

	notes := BuildNotes("bank_kyc", bag, st)

	for _, want := range []string{
		"Suspected scam type: bank_kyc",
		"urgency",
		"threat",
		"SBI",
		"Distinct identifiers collected: 2 (2 high-value)",
	} {
		if !strings.Contains(notes, want) {
			t.Errorf("notes missing %q:\n%s", want, notes)
		}
	}

	if again := BuildNotes("bank_kyc", bag, st); again != notes {
		t.Error("notes not deterministic for identical inputs")
	}
}

func TestBuild_PayloadShape(t *testing.T) {
	bag := intel.NewBag()
	bag.Add(intel.PaymentID, "rahul@upi")

	p := Build("sess-1", "upi_scam", bag, belief.NewState(), 7, 90*time.Second, "r-1")

	if p.SessionID != "sess-1" || p.ReportID != "r-1" || p.TurnCount != 7 {
		t.Errorf("payload header wrong: %+v", p)
	}
	if p.DurationSeconds != 90 {
		t.Errorf("duration = %f, want 90", p.DurationSeconds)
	}
	if len(p.Entities.PaymentIDs) != 1 || p.Entities.PaymentIDs[0] != "rahul@upi" {
		t.Errorf("entities = %+v", p.Entities)
	}
	// Empty categories serialize as empty lists, never null.
	if p.Entities.PhoneNumbers == nil || p.Entities.BankAccounts == nil {
		t.Error("empty entity lists must be non-nil")
	}
}
