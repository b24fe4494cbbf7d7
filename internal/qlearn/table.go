// Package qlearn is a tabular action-value learner over a bounded state
// encoding. It deliberately stays simple: a guarded map, ε-greedy selection
// and the standard temporal-difference update. No replay buffers, no
// function approximation.
package qlearn

import (
	"math/rand"
	"sync"
	"time"
)

// Action names one conversational maneuver.
type Action string

// Actions is the fixed action set, in tie-break order: when two actions
// score equally the first listed wins.
var Actions = []Action{
	"ask_clarifying_question",
	"show_compliance",
	"create_obstacle",
	"express_confusion",
	"ask_for_proof",
	"share_fake_details",
	"express_fear",
	"request_time",
	"feign_technical_issue",
	"ask_for_supervisor",
}

// Defaults for the update rule.
const (
	DefaultAlpha   = 0.1
	DefaultGamma   = 0.95
	DefaultEpsilon = 0.2
)

// Table is the shared action-value store. It is the one piece of
// process-wide mutable state, so every read and write takes the coarse
// lock. Unseen state/action pairs implicitly score 0.
type Table struct {
	mu      sync.Mutex
	alpha   float64
	gamma   float64
	epsilon float64
	rng     *rand.Rand
	values  map[StateKey]map[Action]float64
}

// NewTable builds a table with the given hyperparameters. A nil rng gets a
// time-seeded source; tests inject a fixed seed for reproducible selection.
func NewTable(alpha, gamma, epsilon float64, rng *rand.Rand) *Table {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Table{
		alpha:   alpha,
		gamma:   gamma,
		epsilon: epsilon,
		rng:     rng,
		values:  make(map[StateKey]map[Action]float64),
	}
}

// SelectAction picks an action for the state: with probability ε (when
// exploring) a uniformly random one, otherwise the highest-valued, ties
// broken by fixed action order.
func (t *Table) SelectAction(key StateKey, explore bool) Action {
	t.mu.Lock()
	defer t.mu.Unlock()

	if explore && t.rng.Float64() < t.epsilon {
		return Actions[t.rng.Intn(len(Actions))]
	}

	row := t.values[key]
	best := Actions[0]
	bestValue := row[best]
	for _, a := range Actions[1:] {
		if row[a] > bestValue {
			best = a
			bestValue = row[a]
		}
	}
	return best
}

// Update applies the TD rule:
//
//	Q[s][a] += α · (r + γ · max_a' Q[s'][a'] − Q[s][a])
//
// Unseen next states contribute 0 to the max.
func (t *Table) Update(key StateKey, action Action, reward float64, next StateKey) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.values[key]
	if !ok {
		row = make(map[Action]float64, len(Actions))
		t.values[key] = row
	}

	nextMax := 0.0
	for _, a := range Actions {
		if v := t.values[next][a]; v > nextMax {
			nextMax = v
		}
	}

	current := row[action]
	row[action] = current + t.alpha*(reward+t.gamma*nextMax-current)
}

// Value returns the stored score for a state/action pair (0 if unseen).
func (t *Table) Value(key StateKey, action Action) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.values[key][action]
}

// States returns the number of distinct state keys seen so far.
func (t *Table) States() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.values)
}
