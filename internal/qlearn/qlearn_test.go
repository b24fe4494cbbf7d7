package qlearn

import (
	"math/rand"
	"testing"
	"time"
)

func key(turn int) StateKey {
	return StateKey{Category: "bank_kyc", TurnBucket: turn / 3}
}

func TestEncodeState(t *testing.T) {
	got := EncodeState("bank_kyc", 7, 5, 10, "give otp now urgent")
	want := StateKey{
		Category:      "bank_kyc",
		TurnBucket:    2,
		EntityBucket:  1,
		TrustBucket:   4,
		UrgencyBucket: 2,
	}
	if got != want {
		t.Errorf("EncodeState = %+v, want %+v", got, want)
	}
}

func TestEncodeState_Bounds(t *testing.T) {
	got := EncodeState("upi_scam", 100, -3, 0, "")
	if got.TurnBucket != maxTurn/turnWidth {
		t.Errorf("turn bucket = %d, want capped %d", got.TurnBucket, maxTurn/turnWidth)
	}
	if got.EntityBucket != 0 {
		t.Errorf("entity bucket = %d, want 0", got.EntityBucket)
	}
	if got.TrustBucket != trustLevels/2 {
		t.Errorf("trust bucket with no messages = %d, want neutral %d", got.TrustBucket, trustLevels/2)
	}
}

func TestSelectAction_GreedyAndTieBreak(t *testing.T) {
	tab := NewTable(DefaultAlpha, DefaultGamma, DefaultEpsilon, rand.New(rand.NewSource(1)))
	s := key(6)

	if got := tab.SelectAction(s, false); got != Actions[0] {
		t.Errorf("empty row should fall to first action, got %s", got)
	}

	tab.values[s] = map[Action]float64{
		"create_obstacle": 2.0,
		"show_compliance": 2.0,
		"express_fear":    1.0,
	}
	if got := tab.SelectAction(s, false); got != "show_compliance" {
		t.Errorf("tie should break by fixed order, got %s", got)
	}

	tab.values[s]["express_fear"] = 3.0
	if got := tab.SelectAction(s, false); got != "express_fear" {
		t.Errorf("greedy pick = %s, want express_fear", got)
	}
}

func TestSelectAction_Explore(t *testing.T) {
	tab := NewTable(DefaultAlpha, DefaultGamma, 1.0, rand.New(rand.NewSource(42)))
	s := key(3)
	tab.values[s] = map[Action]float64{"show_compliance": 5.0}

	seen := map[Action]bool{}
	for i := 0; i < 200; i++ {
		seen[tab.SelectAction(s, true)] = true
	}
	if len(seen) < 5 {
		t.Errorf("epsilon=1 should sample broadly, saw only %d actions", len(seen))
	}

	tab.epsilon = 0
	for i := 0; i < 20; i++ {
		if got := tab.SelectAction(s, true); got != "show_compliance" {
			t.Fatalf("epsilon=0 must stay greedy, got %s", got)
		}
	}
}

func TestUpdate_TemporalDifference(t *testing.T) {
	tab := NewTable(0.1, 0.95, 0, nil)
	s, next := key(3), key(6)

	tab.Update(s, "ask_for_proof", 10, next)
	if got := tab.Value(s, "ask_for_proof"); !approx(got, 1.0) {
		t.Errorf("first update = %f, want 1.0", got)
	}

	// Seed the next state, then verify the discounted max flows back.
	tab.Update(next, "request_time", 10, key(9))
	tab.Update(s, "ask_for_proof", 0, next)
	if got := tab.Value(s, "ask_for_proof"); !approx(got, 0.995) {
		t.Errorf("second update = %f, want 0.995", got)
	}

	if tab.States() != 2 {
		t.Errorf("states = %d, want 2", tab.States())
	}
}

func TestReward(t *testing.T) {
	tests := []struct {
		name      string
		entities  int
		turns     int
		message   string
		completed bool
		want      float64
	}{
		{"turn base only", 0, 5, "ok then", false, 1},
		{"intel pays", 2, 5, "ok then", false, 21},
		{"confidence bonus", 0, 5, "trust me, don't worry at all", false, 16},
		{"frustration costs", 0, 5, "this is a waste of time", false, -9},
		{"completion bonus", 3, 10, "ok", true, 81},
		{"overlong drip", 0, 25, "ok", false, 0.95},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reward(tt.entities, tt.turns, tt.message, tt.completed, 3)
			if !approx(got, tt.want) {
				t.Errorf("reward = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    float64
	}{
		{"double reassurance", "trust me, don't worry at all", 0.9},
		{"single reassurance", "trust me", 0.7},
		{"challenge", "why you asking so many questions", 0.2},
		{"curt", "yes", 0.3},
		{"neutral", "I will send the details tomorrow evening", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConfidenceScore(tt.message); !approx(got, tt.want) {
				t.Errorf("score = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSessionScore(t *testing.T) {
	tests := []struct {
		name      string
		entities  int
		turns     int
		duration  time.Duration
		confirmed bool
		want      float64
	}{
		{"empty session", 0, 0, 0, false, 0},
		{"solid session", 10, 25, 10 * time.Minute, true, 95},
		{"everything capped", 20, 40, time.Hour, true, 100},
		{"short but confirmed", 2, 3, time.Minute, true, 23},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SessionScore(tt.entities, tt.turns, tt.duration, tt.confirmed)
			if !approx(got, tt.want) {
				t.Errorf("score = %f, want %f", got, tt.want)
			}
		})
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 0.001 && d > -0.001
}
