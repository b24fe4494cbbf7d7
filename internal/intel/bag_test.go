package intel

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestBag_AddAndMergeIdempotent(t *testing.T) {
	a := NewBag()
	a.Add(Phone, "+91-9876543210")
	a.Add(Phone, "+91-9876543210")
	a.Add(Phone, "  ")
	if a.Count(Phone) != 1 {
		t.Errorf("phone count = %d, want 1", a.Count(Phone))
	}

	b := NewBag()
	b.Add(Phone, "+91-9123456789")
	b.Add(Keyword, "kyc")

	a.Merge(b)
	a.Merge(b)
	if a.Count(Phone) != 2 || a.Count(Keyword) != 1 {
		t.Errorf("after double merge: phones=%d keywords=%d", a.Count(Phone), a.Count(Keyword))
	}
	if a.Total() != 3 || a.Valuable() != 2 {
		t.Errorf("total=%d valuable=%d, want 3/2", a.Total(), a.Valuable())
	}
}

func TestBag_HighValueExcludesReferenceData(t *testing.T) {
	b := NewBag()
	b.Add(Phone, "+91-9876543210")
	b.Add(PaymentID, "rahul@upi")
	b.Add(BankAccount, "12345678901")
	b.Add(Email, "x@fraud.com")
	b.Add(CaseID, "CASE99X")
	b.Add(Pincode, "560001")
	b.Add(Keyword, "lottery")

	if got := b.HighValue(); got != 4 {
		t.Errorf("high value = %d, want 4", got)
	}
}

func TestBag_JSONRoundTrip(t *testing.T) {
	b := NewBag()
	b.Add(Phone, "+91-9876543210")
	b.Add(URL, "http://fake.in/verify")
	b.Add(URL, "http://other.in")

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}

	restored := NewBag()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(restored.Values(URL), b.Values(URL)) {
		t.Errorf("urls = %v, want %v", restored.Values(URL), b.Values(URL))
	}
	if restored.Count(Phone) != 1 || restored.Total() != 3 {
		t.Errorf("restored total = %d, want 3", restored.Total())
	}
}

func TestToPayload_EmptyListsNotNil(t *testing.T) {
	p := NewBag().ToPayload()
	if p.PhoneNumbers == nil || p.PaymentIDs == nil || p.BankAccounts == nil {
		t.Error("empty categories must serialize as empty lists")
	}
}

func TestPredictBankNames(t *testing.T) {
	b := NewBag()
	b.Add(BankAccount, "12345678901")

	preds := b.PredictBankNames()
	if len(preds) != 1 {
		t.Fatalf("predictions = %v", preds)
	}
	if preds[0] != "12345678901 (SBI (State Bank of India))" {
		t.Errorf("prediction = %q", preds[0])
	}
}
