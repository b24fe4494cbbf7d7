// Package engine is the turn handler: it wires extraction, belief tracking,
// strategy, the action-value learner and the session lifecycle into the
// single processTurn entry point the transport layer calls.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vigilhq/mongoose/internal/director"
	"github.com/vigilhq/mongoose/internal/extract"
	"github.com/vigilhq/mongoose/internal/generate"
	"github.com/vigilhq/mongoose/internal/intel"
	"github.com/vigilhq/mongoose/internal/qlearn"
	"github.com/vigilhq/mongoose/internal/report"
	"github.com/vigilhq/mongoose/internal/session"
)

// ErrSessionComplete is returned when a turn arrives for a session that
// already reached its terminal state.
var ErrSessionComplete = errors.New("session already complete")

// Archiver persists completed sessions. Optional; nil disables archival.
type Archiver interface {
	ArchiveSession(ctx context.Context, agg *session.Aggregate) error
}

// TrainingRecorder persists state/action/reward transitions for offline
// policy analysis. Optional: an Archiver that also implements it gets every
// settled learning step.
type TrainingRecorder interface {
	WriteTrainingSample(ctx context.Context, sessionRef, stateCategory string, turnBucket, entityBucket, trustBucket, urgencyBucket int, action string, reward float64) error
}

// Result is what one processed turn hands back to the transport layer.
type Result struct {
	SessionID   string            `json:"sessionId"`
	TurnIndex   int               `json:"turnIndex"`
	Decision    director.Decision `json:"decision"`
	Action      qlearn.Action     `json:"action"`
	Reply       string            `json:"reply"`
	Entities    intel.Payload     `json:"entities"`
	NewEntities int               `json:"newEntities"`
	Completed   bool              `json:"completed"`
}

// Engine owns no domain logic of its own; it sequences the pure pieces and
// guards each session with its own mutex so turns for one conversation are
// processed strictly one at a time.
type Engine struct {
	logger   *slog.Logger
	sessions session.Repository
	table    *qlearn.Table
	gen      generate.Generator
	reporter report.Reporter
	archiver Archiver
	trainer  TrainingRecorder
	limits   session.Limits
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	// pending holds the previous (state, action) per session so the TD
	// update can run once the counterparty's next message reveals the
	// outcome. In-process only; lost on restart, which just skips one
	// update.
	pending map[string]pendingStep
}

type pendingStep struct {
	state  qlearn.StateKey
	action qlearn.Action
}

func New(logger *slog.Logger, sessions session.Repository, table *qlearn.Table, gen generate.Generator, reporter report.Reporter, archiver Archiver, limits session.Limits) *Engine {
	if reporter == nil {
		reporter = report.Nop{}
	}
	trainer, _ := archiver.(TrainingRecorder)
	return &Engine{
		logger:   logger,
		sessions: sessions,
		table:    table,
		gen:      gen,
		reporter: reporter,
		archiver: archiver,
		trainer:  trainer,
		limits:   limits,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
		pending:  make(map[string]pendingStep),
	}
}

// lockFor returns the mutex owning a session id, creating it on first use.
func (e *Engine) lockFor(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// ProcessTurn handles one counterparty message end to end: extract, update
// beliefs, decide strategy, pick a tactical action, generate the reply,
// record the turn and evaluate completion. Belief and bag mutation happen
// only after extraction succeeds, in one step, so an abandoned turn leaves
// no partial state.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, rawText, category string) (*Result, error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	now := e.now()

	agg, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	created := false
	if agg == nil {
		agg = session.New(sessionID, string(director.ParseCategory(category)), now)
		created = true
	}
	if agg.IsComplete() {
		return nil, ErrSessionComplete
	}

	// Pure phase: nothing on the aggregate is touched yet. Malformed input
	// degrades to an empty bag, never an error.
	turnBag := extract.Extract(rawText)
	requests := extract.DetectRequests(rawText)

	// Atomic state application.
	before := agg.Bag.Valuable()
	agg.Bag.Merge(turnBag)
	agg.Belief.ApplyTurn(turnBag, rawText)
	newEntities := agg.Bag.Valuable() - before

	turnIndex := agg.NextTurnIndex()
	decision := director.Decide(director.Input{
		Category:             director.ParseCategory(agg.Category),
		TurnNumber:           turnIndex,
		Belief:               agg.Belief,
		Bag:                  agg.Bag,
		PriorPersona:         director.Persona(agg.Persona),
		Requests:             requests,
		CounterpartyMessages: turnIndex,
		AvgMessageLength:     e.avgMessageLength(agg, rawText),
		LatestMessage:        rawText,
	})

	state := e.encodeState(agg, rawText)
	e.settlePending(ctx, sessionID, newEntities, turnIndex, rawText, state)

	action := e.table.SelectAction(state, true)
	e.mu.Lock()
	e.pending[sessionID] = pendingStep{state: state, action: action}
	e.mu.Unlock()

	reply := ""
	if e.gen != nil {
		reply, err = e.gen.Generate(ctx, generate.Request{
			Persona:   decision.Persona,
			Directive: decision.Directive,
			History:   history(agg),
			Latest:    rawText,
		})
		if err != nil {
			// The caller substitutes a fallback; the turn still counts.
			e.logger.Warn("generation failed", "session_id", sessionID, "error", err)
			reply = generate.FallbackReply(generate.Request{Persona: decision.Persona, Latest: rawText})
		}
	}

	rec := session.TurnRecord{
		Index:       turnIndex,
		Text:        rawText,
		NewEntities: newEntities,
		Persona:     string(decision.Persona),
		Objective:   decision.Objective,
		Action:      string(action),
		Reply:       reply,
		Timestamp:   now,
	}
	if err := agg.AppendTurn(rec); err != nil {
		return nil, fmt.Errorf("append turn: %w", err)
	}
	agg.Persona = string(decision.Persona)

	if agg.ShouldReportIntermediate(e.limits) {
		agg.ConfirmedScam = true
		e.publishIntermediate(ctx, agg)
	}

	completed, finalize := agg.EvaluateCompletion(now, e.limits)
	if finalize {
		e.finalize(ctx, agg, rawText, newEntities)
	}

	if err := e.persist(ctx, agg, created); err != nil {
		return nil, err
	}

	e.logger.Info("turn processed",
		"session_id", sessionID,
		"turn", turnIndex,
		"category", agg.Category,
		"new_entities", newEntities,
		"action", action,
		"decision", decision.String(),
		"completed", completed)

	return &Result{
		SessionID:   sessionID,
		TurnIndex:   turnIndex,
		Decision:    decision,
		Action:      action,
		Reply:       reply,
		Entities:    agg.Bag.ToPayload(),
		NewEntities: newEntities,
		Completed:   completed,
	}, nil
}

// SelectTacticalAction exposes the learner's policy for the session's
// current state, without advancing the conversation.
func (e *Engine) SelectTacticalAction(ctx context.Context, sessionID string) (qlearn.Action, error) {
	agg, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if agg == nil {
		return "", session.ErrNotFound
	}
	return e.table.SelectAction(e.encodeState(agg, agg.LatestTurn().Text), true), nil
}

// RecordOutcome applies an externally observed reward to the session's last
// selected action.
func (e *Engine) RecordOutcome(ctx context.Context, sessionID string, reward float64) error {
	agg, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if agg == nil {
		return session.ErrNotFound
	}

	e.mu.Lock()
	step, ok := e.pending[sessionID]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: no action outstanding", sessionID)
	}
	e.table.Update(step.state, step.action, reward, e.encodeState(agg, agg.LatestTurn().Text))
	return nil
}

// EvaluateCompletion runs the completion state machine outside the turn
// path, e.g. from a sweep that expires idle sessions. Idempotent: once a
// session is complete, every later call reports shouldFinalize=false.
func (e *Engine) EvaluateCompletion(ctx context.Context, sessionID string) (isComplete, finalized bool, err error) {
	lock := e.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	agg, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return false, false, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if agg == nil {
		return false, false, session.ErrNotFound
	}

	isComplete, finalize := agg.EvaluateCompletion(e.now(), e.limits)
	if finalize {
		last := agg.LatestTurn()
		e.finalize(ctx, agg, last.Text, 0)
		if err := e.sessions.Update(ctx, agg); err != nil {
			return isComplete, true, fmt.Errorf("persist session %s: %w", sessionID, err)
		}
	}
	return isComplete, finalize, nil
}

// settlePending runs the delayed TD update: the previous turn's action is
// scored by what this turn revealed.
func (e *Engine) settlePending(ctx context.Context, sessionID string, newEntities, turnIndex int, rawText string, state qlearn.StateKey) {
	e.mu.Lock()
	step, ok := e.pending[sessionID]
	e.mu.Unlock()
	if !ok {
		return
	}
	reward := qlearn.Reward(newEntities, turnIndex, rawText, false, e.limits.MinHighValue)
	e.table.Update(step.state, step.action, reward, state)
	e.recordSample(ctx, sessionID, step, reward)
}

// recordSample persists one settled learning step. Failures are logged and
// never block a turn.
func (e *Engine) recordSample(ctx context.Context, sessionID string, step pendingStep, reward float64) {
	if e.trainer == nil {
		return
	}
	err := e.trainer.WriteTrainingSample(ctx, sessionID, step.state.Category,
		step.state.TurnBucket, step.state.EntityBucket, step.state.TrustBucket, step.state.UrgencyBucket,
		string(step.action), reward)
	if err != nil {
		e.logger.Warn("training sample write failed", "session_id", sessionID, "error", err)
	}
}

// finalize runs the one-time terminal work. The caller has already won the
// active to complete transition, so this cannot run twice for a session.
func (e *Engine) finalize(ctx context.Context, agg *session.Aggregate, lastText string, newEntities int) {
	agg.Score = qlearn.SessionScore(agg.Bag.Valuable(), agg.TurnCount(), agg.Elapsed(agg.CompletedAt), agg.ConfirmedScam)

	// Terminal learning step with the completion bonus.
	e.mu.Lock()
	step, ok := e.pending[agg.ID]
	delete(e.pending, agg.ID)
	e.mu.Unlock()
	if ok {
		reward := qlearn.Reward(newEntities, agg.TurnCount(), lastText, true, e.limits.MinHighValue)
		e.table.Update(step.state, step.action, reward, step.state)
		e.recordSample(ctx, agg.ID, step, reward)
	}

	p := report.Build(agg.ID, agg.Category, agg.Bag, agg.Belief, agg.TurnCount(), agg.Elapsed(agg.CompletedAt), uuid.NewString())
	p.Score = agg.Score
	if err := e.reporter.Final(ctx, p); err != nil {
		e.logger.Error("final report failed", "session_id", agg.ID, "error", err)
	}

	if e.archiver != nil {
		if err := e.archiver.ArchiveSession(ctx, agg); err != nil {
			e.logger.Error("session archive failed", "session_id", agg.ID, "error", err)
		}
	}

	e.logger.Info("session finalized",
		"session_id", agg.ID,
		"turns", agg.TurnCount(),
		"entities", agg.Bag.Valuable(),
		"score", agg.Score)
}

func (e *Engine) publishIntermediate(ctx context.Context, agg *session.Aggregate) {
	p := report.Build(agg.ID, agg.Category, agg.Bag, agg.Belief, agg.TurnCount(), agg.Elapsed(e.now()), uuid.NewString())
	if err := e.reporter.Intermediate(ctx, p); err != nil {
		e.logger.Error("intermediate report failed", "session_id", agg.ID, "error", err)
	}
}

func (e *Engine) persist(ctx context.Context, agg *session.Aggregate, created bool) error {
	if created {
		if err := e.sessions.Create(ctx, agg); err != nil {
			return fmt.Errorf("create session %s: %w", agg.ID, err)
		}
		return nil
	}
	if err := e.sessions.Update(ctx, agg); err != nil {
		return fmt.Errorf("persist session %s: %w", agg.ID, err)
	}
	return nil
}

func (e *Engine) encodeState(agg *session.Aggregate, latest string) qlearn.StateKey {
	return qlearn.EncodeState(agg.Category, agg.TurnCount(), agg.Bag.Valuable(), agg.TurnCount(), latest)
}

func (e *Engine) avgMessageLength(agg *session.Aggregate, latest string) float64 {
	total := len(latest)
	for _, t := range agg.Turns {
		total += len(t.Text)
	}
	return float64(total) / float64(len(agg.Turns)+1)
}

// history converts the turn log into the generator's view of the
// conversation.
func history(agg *session.Aggregate) []generate.Message {
	var out []generate.Message
	for _, t := range agg.Turns {
		out = append(out, generate.Message{FromCounterparty: true, Text: t.Text})
		if t.Reply != "" {
			out = append(out, generate.Message{Text: t.Reply})
		}
	}
	return out
}

// Session exposes one aggregate for the status endpoints.
func (e *Engine) Session(ctx context.Context, sessionID string) (*session.Aggregate, error) {
	agg, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, session.ErrNotFound
	}
	return agg, nil
}

// Sessions lists every stored aggregate.
func (e *Engine) Sessions(ctx context.Context) ([]*session.Aggregate, error) {
	return e.sessions.List(ctx)
}
