package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vigilhq/mongoose/internal/session"
)

// ArchiveSession writes one completed session across the archive tables.
// Tables: sessions, session_entities, session_turns.
func (s *Store) ArchiveSession(ctx context.Context, agg *session.Aggregate) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (id, external_ref, category, persona, status, turn_count, score, confirmed_scam, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (external_ref) DO NOTHING`,
		uuid.New(), agg.ID, agg.Category, agg.Persona, string(agg.Status),
		agg.TurnCount(), agg.Score, agg.ConfirmedScam, agg.StartedAt, agg.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, cat := range agg.Bag.NonEmpty() {
		for _, value := range agg.Bag.Values(cat) {
			_, err = tx.Exec(ctx, `
				INSERT INTO session_entities (id, session_ref, category, value, created_at)
				VALUES ($1, $2, $3, $4, now())`,
				uuid.New(), agg.ID, string(cat), value,
			)
			if err != nil {
				return fmt.Errorf("insert entity: %w", err)
			}
		}
	}

	for _, turn := range agg.Turns {
		_, err = tx.Exec(ctx, `
			INSERT INTO session_turns (id, session_ref, turn_index, text, new_entities, persona, objective, action, reply, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New(), agg.ID, turn.Index, turn.Text, turn.NewEntities,
			turn.Persona, turn.Objective, turn.Action, turn.Reply, turn.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// WriteTrainingSample records one state/action/reward transition for
// offline policy analysis. Called outside the turn path; failures are
// logged by the caller and never block a turn.
func (s *Store) WriteTrainingSample(ctx context.Context, sessionRef, stateCategory string, turnBucket, entityBucket, trustBucket, urgencyBucket int, action string, reward float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rl_training_samples (id, session_ref, category, turn_bucket, entity_bucket, trust_bucket, urgency_bucket, action, reward, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`,
		uuid.New(), sessionRef, stateCategory, turnBucket, entityBucket, trustBucket, urgencyBucket, action, reward,
	)
	if err != nil {
		return fmt.Errorf("insert training sample: %w", err)
	}
	return nil
}
