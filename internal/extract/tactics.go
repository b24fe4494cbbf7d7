package extract

import "strings"

// Tactic labels a pressure technique observed in a message.
type Tactic string

const (
	TacticUrgency   Tactic = "urgency"
	TacticThreat    Tactic = "threat"
	TacticAuthority Tactic = "authority"
	TacticReward    Tactic = "reward"
	TacticFear      Tactic = "fear"
)

var tacticCues = []struct {
	tactic Tactic
	cues   []string
}{
	{TacticUrgency, []string{"immediately", "urgent", "asap", "right now", "within minutes", "deadline", "expires", "hurry", "last chance"}},
	{TacticThreat, []string{"arrest", "block", "freeze", "legal action", "police", "court", "fir"}},
	{TacticAuthority, []string{"rbi", "cbi", "government", "bank manager", "officer", "department"}},
	{TacticReward, []string{"won", "prize", "lottery", "congratulations", "selected", "reward", "cashback"}},
	{TacticFear, []string{"compromised", "hacked", "suspicious activity", "fraud detected", "unauthorized"}},
}

// suspicionCues signal the counterparty suspects they are talking to a bot
// or a setup rather than a victim.
var suspicionCues = []string{
	"bot", "robot", "automated", "ai", "fake", "scam", "fraud", "suspicious", "are you real",
}

// DetectTactics reports the pressure tactics present in a message, matched
// against both the raw lowercased text and the normalized copy.
func DetectTactics(text string) []Tactic {
	text = sanitize(text)
	if text == "" {
		return nil
	}
	haystacks := []string{strings.ToLower(text), Normalize(text)}
	var out []Tactic
	for _, tc := range tacticCues {
		found := false
		for _, h := range haystacks {
			for _, cue := range tc.cues {
				if strings.Contains(h, cue) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if found {
			out = append(out, tc.tactic)
		}
	}
	return out
}

// DetectSuspicion reports whether the message accuses the victim side of
// being a bot or a setup. Cue words are matched as whole words so "ai"
// inside "said" does not trigger.
func DetectSuspicion(text string) bool {
	text = strings.ToLower(sanitize(text))
	if text == "" {
		return false
	}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}
	for _, cue := range suspicionCues {
		if strings.Contains(cue, " ") {
			if strings.Contains(text, cue) {
				return true
			}
		} else if wordSet[cue] {
			return true
		}
	}
	return false
}
