// Package generate is the client side of the text-generation collaborator
// contract. The decision core hands it a persona and a directive; it returns
// conversation text. Generation failures never surface to the core: the
// wrapper substitutes a deterministic persona fallback and the turn proceeds.
package generate

import (
	"context"
	"hash/fnv"

	"github.com/vigilhq/mongoose/internal/director"
)

// Message is one prior conversation turn, oldest first.
type Message struct {
	FromCounterparty bool
	Text             string
}

// Request carries everything a generator needs for one reply.
type Request struct {
	Persona   director.Persona
	Directive string
	History   []Message
	Latest    string
}

// Generator produces the reply text for a turn.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// FallbackReply picks a canned line for the persona, deterministically by
// the latest message, so a retried turn gets the same reply.
func FallbackReply(req Request) string {
	lines := director.ProfileFor(req.Persona).FallbackLines
	if len(lines) == 0 {
		return "Sorry, I did not understand. Can you explain once more?"
	}
	h := fnv.New32a()
	h.Write([]byte(req.Latest))
	return lines[int(h.Sum32())%len(lines)]
}
