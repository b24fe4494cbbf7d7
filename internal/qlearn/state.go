package qlearn

import "strings"

// StateKey is the canonical, explicitly-typed encoding of a conversation
// state. Using a comparable struct instead of a concatenated string removes
// key-collision ambiguity and gives structural equality for free.
type StateKey struct {
	Category      string
	TurnBucket    int
	EntityBucket  int
	TrustBucket   int
	UrgencyBucket int
}

// Bucketing bounds. Raw observations are capped before bucketing so the key
// space stays small.
const (
	maxTurn     = 30
	turnWidth   = 3
	maxEntities = 20
	entityWidth = 4
	trustLevels = 5
	maxUrgency  = 3
)

var urgencyCueWords = []string{
	"urgent", "immediately", "now", "today", "hurry",
	"quick", "fast", "within", "expires", "last chance",
}

var sensitiveAsks = []string{"cvv", "password", "pin", "otp", "bank account"}

// EncodeState buckets raw conversation observations into a state key.
func EncodeState(category string, turn, entityCount, counterpartyMessages int, latestMessage string) StateKey {
	return StateKey{
		Category:      category,
		TurnBucket:    bucket(turn, maxTurn, turnWidth),
		EntityBucket:  bucket(entityCount, maxEntities, entityWidth),
		TrustBucket:   trustBucket(counterpartyMessages, latestMessage),
		UrgencyBucket: urgencyBucket(latestMessage),
	}
}

func bucket(v, max, width int) int {
	if v < 0 {
		v = 0
	}
	if v > max {
		v = max
	}
	return v / width
}

// trustBucket estimates how invested the counterparty is: message volume,
// plus a boost when they are asking for sensitive data (a scammer who asks
// for the OTP believes the victim is hooked).
func trustBucket(counterpartyMessages int, latestMessage string) int {
	if counterpartyMessages <= 0 {
		return trustLevels / 2
	}
	trust := float64(counterpartyMessages) / 10
	if trust > 1 {
		trust = 1
	}
	lower := strings.ToLower(latestMessage)
	for _, ask := range sensitiveAsks {
		if strings.Contains(lower, ask) {
			trust += 0.3
			break
		}
	}
	if trust > 1 {
		trust = 1
	}
	return int(trust * float64(trustLevels-1))
}

// urgencyBucket counts urgency cue words in the latest message, capped.
func urgencyBucket(latestMessage string) int {
	lower := strings.ToLower(latestMessage)
	n := 0
	for _, w := range urgencyCueWords {
		if strings.Contains(lower, w) {
			n++
		}
	}
	if n > maxUrgency {
		n = maxUrgency
	}
	return n
}
