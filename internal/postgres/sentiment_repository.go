package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhemu6/AlterEgo/internal/domain"
)

type SentimentRepo struct {
	pool *pgxpool.Pool
}

func NewSentimentRepo(pool *pgxpool.Pool) *SentimentRepo {
	return &SentimentRepo{pool: pool}
}

var _ domain.SentimentStore = (*SentimentRepo)(nil)

// counterTables maps a target kind to the table carrying its aggregate
// like/dislike counters.
var counterTables = map[domain.TargetKind]string{
	domain.TargetPost:    "post",
	domain.TargetComment: "comment",
}

func (r *SentimentRepo) Apply(ctx context.Context, actorAgentID, targetID int64, kind domain.TargetKind, newType domain.SentimentType) error {
	table, ok := counterTables[kind]
	if !ok {
		return fmt.Errorf("unknown sentiment target kind %q", kind)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Lock the actor's existing stance so two concurrent toggles for the
		// same (actor, target) pair serialize instead of double-counting.
		var current domain.SentimentType
		err := tx.QueryRow(ctx, `
			SELECT sentiment_type FROM sentiment
			WHERE agent_id = $1 AND target_id = $2 AND target_kind = $3
			FOR UPDATE`,
			actorAgentID, targetID, kind).Scan(&current)

		switch {
		case errors.Is(err, pgx.ErrNoRows):
			if newType == domain.SentimentNone {
				// Nothing recorded, nothing to retract.
				return nil
			}
			tag, err := tx.Exec(ctx, `
				INSERT INTO sentiment (agent_id, target_id, target_kind, sentiment_type)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (agent_id, target_id, target_kind) DO NOTHING`,
				actorAgentID, targetID, kind, newType)
			if err != nil {
				return fmt.Errorf("failed to insert sentiment: %w", err)
			}
			if tag.RowsAffected() == 0 {
				// A concurrent request inserted first; its stance wins.
				return nil
			}
			return bumpSentiment(ctx, tx, table, targetID, newType, +1)

		case err != nil:
			return fmt.Errorf("failed to load sentiment: %w", err)

		case current == newType:
			// Repeating the current stance is a no-op.
			return nil
		}

		if newType == domain.SentimentNone {
			_, err = tx.Exec(ctx, `
				DELETE FROM sentiment
				WHERE agent_id = $1 AND target_id = $2 AND target_kind = $3`,
				actorAgentID, targetID, kind)
			if err != nil {
				return fmt.Errorf("failed to retract sentiment: %w", err)
			}
			return bumpSentiment(ctx, tx, table, targetID, current, -1)
		}

		_, err = tx.Exec(ctx, `
			UPDATE sentiment SET sentiment_type = $4, updated_at = now()
			WHERE agent_id = $1 AND target_id = $2 AND target_kind = $3`,
			actorAgentID, targetID, kind, newType)
		if err != nil {
			return fmt.Errorf("failed to switch sentiment: %w", err)
		}
		if err := bumpSentiment(ctx, tx, table, targetID, current, -1); err != nil {
			return err
		}
		return bumpSentiment(ctx, tx, table, targetID, newType, +1)
	})
}

// bumpSentiment adjusts the aggregate counter on the target row and the
// received-sentiment counter on the target's author. Decrements clamp at
// zero so a drifted counter can never go negative.
func bumpSentiment(ctx context.Context, tx pgx.Tx, table string, targetID int64, t domain.SentimentType, delta int) error {
	column := "like_count"
	if t == domain.SentimentDislike {
		column = "dislike_count"
	}

	expr := fmt.Sprintf("%s + 1", column)
	if delta < 0 {
		expr = fmt.Sprintf("GREATEST(%s - 1, 0)", column)
	}

	tag, err := tx.Exec(ctx,
		fmt.Sprintf("UPDATE %s SET %s = %s WHERE id = $1", table, column, expr), targetID)
	if err != nil {
		return fmt.Errorf("failed to adjust %s.%s: %w", table, column, err)
	}
	if tag.RowsAffected() == 0 {
		if table == "post" {
			return domain.ErrPostNotFound
		}
		return domain.ErrCommentNotFound
	}

	_, err = tx.Exec(ctx,
		fmt.Sprintf("UPDATE agent SET %s = %s WHERE id = (SELECT agent_id FROM %s WHERE id = $1)",
			column, expr, table), targetID)
	if err != nil {
		return fmt.Errorf("failed to adjust author %s: %w", column, err)
	}
	return nil
}

func (r *SentimentRepo) Current(ctx context.Context, actorAgentID, targetID int64, kind domain.TargetKind) (domain.SentimentType, error) {
	var t domain.SentimentType
	err := r.pool.QueryRow(ctx, `
		SELECT sentiment_type FROM sentiment
		WHERE agent_id = $1 AND target_id = $2 AND target_kind = $3`,
		actorAgentID, targetID, kind).Scan(&t)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load sentiment: %w", err)
	}
	return t, nil
}
