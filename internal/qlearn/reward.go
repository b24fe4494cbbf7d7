package qlearn

import (
	"strings"
	"time"
)

// Reward weights. The optimization goal is keeping the counterparty feeling
// in control while identifiers keep flowing.
const (
	intelWeight        = 10.0
	turnWeight         = 1.0
	confidenceBonus    = 15.0
	frustrationPenalty = -10.0
	completionBonus    = 50.0
	overlongPenalty    = -0.01

	confidenceThreshold = 0.7
	overlongAfterTurns  = 20
)

var highConfidencePhrases = []string{
	"yes yes", "very easy", "simple process", "trust me",
	"don't worry", "no problem", "safe", "guaranteed",
	"just do", "only take", "quick", "fast", "easy way",
	"i will help", "let me show", "step by step",
}

var lowConfidencePhrases = []string{
	"why you", "are you going to", "decide fast", "yes or no",
	"stop asking", "too many questions", "don't waste",
}

var frustrationPhrases = []string{
	"i told you", "i said", "listen", "are you listening",
	"why you", "what is your problem", "stupid", "idiot",
	"forget it", "never mind", "waste of time", "goodbye",
	"police will come", "you will be arrested", "your fault",
	"how long", "hurry up", "decide now", "last chance",
}

// Reward scores one turn for the learner. newEntities is the count of
// identifiers first seen this turn; message is the counterparty's latest
// text.
func Reward(newEntities, totalTurns int, message string, completed bool, completionThreshold int) float64 {
	r := float64(newEntities)*intelWeight + turnWeight

	if ConfidenceScore(message) >= confidenceThreshold {
		r += confidenceBonus
	}
	if IsFrustrated(message) {
		r += frustrationPenalty
	}
	if completed && newEntities >= completionThreshold {
		r += completionBonus
	}
	if totalTurns > overlongAfterTurns && newEntities == 0 {
		r += overlongPenalty * float64(totalTurns-overlongAfterTurns)
	}
	return r
}

// ConfidenceScore estimates, in [0,1], how in-control the counterparty
// feels. Eager reassurance and long detailed instructions score high; curt
// or challenging replies score low.
func ConfidenceScore(message string) float64 {
	lower := strings.ToLower(message)

	high := 0
	for _, p := range highConfidencePhrases {
		if strings.Contains(lower, p) {
			high++
		}
	}
	low := 0
	for _, p := range lowConfidencePhrases {
		if strings.Contains(lower, p) {
			low++
		}
	}
	words := len(strings.Fields(message))

	switch {
	case high >= 2 || words > 30:
		return 0.9
	case high == 1:
		return 0.7
	case low >= 1:
		return 0.2
	case words < 5:
		return 0.3
	default:
		return 0.5
	}
}

// IsFrustrated reports whether the message shows repetition, anger or
// giving-up language.
func IsFrustrated(message string) bool {
	lower := strings.ToLower(message)
	for _, p := range frustrationPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// SessionScore computes the 0-100 reporting score for a finished session.
// It is analytics only and never feeds back into the value table.
func SessionScore(totalEntities, totalTurns int, duration time.Duration, confirmedScam bool) float64 {
	score := 0.0

	if c := float64(totalEntities) * 4; c < 40 {
		score += c
	} else {
		score += 40
	}
	if c := float64(totalTurns); c < 30 {
		score += c
	} else {
		score += 30
	}
	if c := duration.Seconds() / 30; c < 20 {
		score += c
	} else {
		score += 20
	}
	if confirmedScam {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	return score
}
