package session

import (
	"testing"
	"time"

	"github.com/vigilhq/mongoose/internal/intel"
)

func activeSession(turns int, started time.Time) *Aggregate {
	agg := New("sess-1", "bank_kyc", started)
	for i := 1; i <= turns; i++ {
		agg.Turns = append(agg.Turns, TurnRecord{Index: i})
	}
	return agg
}

func TestEvaluateCompletion_TurnLimit(t *testing.T) {
	now := time.Now()
	lim := Limits{MaxTurns: 30, Timeout: 30 * time.Minute, MinHighValue: 3}

	agg := activeSession(25, now.Add(-10*time.Minute))
	if done, fin := agg.EvaluateCompletion(now, lim); done || fin {
		t.Fatalf("25 turns under the time limit should stay active, got done=%v fin=%v", done, fin)
	}

	agg = activeSession(30, now.Add(-10*time.Minute))
	done, fin := agg.EvaluateCompletion(now, lim)
	if !done || !fin {
		t.Fatalf("30 turns must complete and finalize, got done=%v fin=%v", done, fin)
	}
	if agg.Status != StatusComplete {
		t.Errorf("status = %s, want complete", agg.Status)
	}
}

func TestEvaluateCompletion_Timeout(t *testing.T) {
	now := time.Now()
	lim := Limits{MaxTurns: 30, Timeout: 30 * time.Minute, MinHighValue: 3}

	agg := activeSession(3, now.Add(-31*time.Minute))
	if done, fin := agg.EvaluateCompletion(now, lim); !done || !fin {
		t.Fatalf("timed-out session must complete, got done=%v fin=%v", done, fin)
	}
}

func TestEvaluateCompletion_AtMostOneFinalize(t *testing.T) {
	now := time.Now()
	lim := Limits{MaxTurns: 5, Timeout: time.Hour, MinHighValue: 3}

	agg := activeSession(5, now)
	fired := 0
	for i := 0; i < 10; i++ {
		done, fin := agg.EvaluateCompletion(now, lim)
		if !done {
			t.Fatalf("call %d: complete session reported active", i)
		}
		if fin {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("terminal finalize fired %d times, want exactly 1", fired)
	}
}

func TestShouldReportIntermediate(t *testing.T) {
	agg := New("sess-1", "upi_scam", time.Now())
	lim := Limits{MaxTurns: 30, Timeout: time.Hour, MinHighValue: 3}

	agg.Bag.Add(intel.Phone, "+91-9876543210")
	agg.Bag.Add(intel.PaymentID, "rahul@upi")
	if agg.ShouldReportIntermediate(lim) {
		t.Error("fired below the high-value minimum")
	}

	agg.Bag.Add(intel.Email, "x@fraud.com")
	if !agg.ShouldReportIntermediate(lim) {
		t.Error("did not fire at the minimum")
	}
	if agg.ShouldReportIntermediate(lim) {
		t.Error("re-fired with no new high-value entities")
	}

	agg.Bag.Add(intel.BankAccount, "12345678901")
	if !agg.ShouldReportIntermediate(lim) {
		t.Error("did not re-fire after the count grew")
	}

	agg.Bag.Add(intel.Phone, "+91-9123456789")
	agg.Status = StatusComplete
	if agg.ShouldReportIntermediate(lim) {
		t.Error("fired on a complete session")
	}
}

func TestShouldReportIntermediate_KeywordsDoNotCount(t *testing.T) {
	agg := New("sess-1", "upi_scam", time.Now())
	lim := Limits{MaxTurns: 30, Timeout: time.Hour, MinHighValue: 1}

	agg.Bag.Add(intel.Keyword, "kyc")
	agg.Bag.Add(intel.CaseID, "CASE123X")
	if agg.ShouldReportIntermediate(lim) {
		t.Error("keywords and reference ids counted toward the high-value minimum")
	}
}

func TestAppendTurn_Monotonic(t *testing.T) {
	agg := New("sess-1", "bank_kyc", time.Now())

	if got := agg.NextTurnIndex(); got != 1 {
		t.Fatalf("first index = %d, want 1", got)
	}
	if err := agg.AppendTurn(TurnRecord{Index: 1, Text: "hello"}); err != nil {
		t.Fatal(err)
	}
	if err := agg.AppendTurn(TurnRecord{Index: 2, Text: "again"}); err != nil {
		t.Fatal(err)
	}
	if err := agg.AppendTurn(TurnRecord{Index: 2, Text: "dup"}); err == nil {
		t.Error("duplicate index accepted")
	}
	if err := agg.AppendTurn(TurnRecord{Index: 1, Text: "stale"}); err == nil {
		t.Error("stale index accepted")
	}
	if agg.TurnCount() != 2 {
		t.Errorf("turn count = %d, want 2", agg.TurnCount())
	}
	if got := agg.LatestTurn().Text; got != "again" {
		t.Errorf("latest turn = %q, want %q", got, "again")
	}
}
