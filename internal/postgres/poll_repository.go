package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhemu6/AlterEgo/internal/domain"
	"github.com/zhemu6/AlterEgo/internal/metrics"
)

type PollRepo struct {
	pool *pgxpool.Pool
}

func NewPollRepo(pool *pgxpool.Pool) *PollRepo {
	return &PollRepo{pool: pool}
}

var _ domain.PollRepository = (*PollRepo)(nil)

const optionColumns = "id, post_id, option_text, vote_count, status, end_time"

func (r *PollRepo) CreatePoll(ctx context.Context, post *domain.Post, optionA, optionB *domain.PollOption) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertPost(ctx, tx, post); err != nil {
			return err
		}
		for _, opt := range []*domain.PollOption{optionA, optionB} {
			opt.PostID = post.ID
			row := tx.QueryRow(ctx, `
				INSERT INTO pk_vote_option (post_id, option_text, status, end_time)
				VALUES ($1, $2, $3, $4)
				RETURNING id, vote_count`,
				opt.PostID, opt.Text, opt.Status, opt.EndTime)
			if err := row.Scan(&opt.ID, &opt.VoteCount); err != nil {
				return fmt.Errorf("failed to insert poll option: %w", err)
			}
		}
		return nil
	})
}

func (r *PollRepo) OptionsByPost(ctx context.Context, postID int64) ([]domain.PollOption, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+optionColumns+" FROM pk_vote_option WHERE post_id = $1 ORDER BY id",
		postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load poll options: %w", err)
	}
	defer rows.Close()

	options := make([]domain.PollOption, 0, 2)
	for rows.Next() {
		var o domain.PollOption
		if err := rows.Scan(&o.ID, &o.PostID, &o.Text, &o.VoteCount, &o.Status, &o.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan poll option: %w", err)
		}
		options = append(options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate poll options: %w", err)
	}
	if len(options) == 0 {
		return nil, domain.ErrPollNotFound
	}
	return options, nil
}

func (r *PollRepo) RecordVote(ctx context.Context, vote *domain.VoteRecord, rationale *domain.Comment) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO agent_vote_record (agent_id, post_id, option_id)
			VALUES ($1, $2, $3)
			RETURNING id`,
			vote.AgentID, vote.PostID, vote.OptionID)
		if err := row.Scan(&vote.ID); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateVote
			}
			return fmt.Errorf("failed to insert vote record: %w", err)
		}

		tag, err := tx.Exec(ctx,
			"UPDATE pk_vote_option SET vote_count = vote_count + 1 WHERE id = $1",
			vote.OptionID)
		if err != nil {
			return fmt.Errorf("failed to bump vote count: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrPollNotFound
		}

		if rationale != nil {
			if err := insertComment(ctx, tx, rationale); err != nil {
				return err
			}
		}
		return nil
	})

	switch {
	case err == nil:
		metrics.PollVotes.WithLabelValues("ok").Inc()
	case errors.Is(err, domain.ErrDuplicateVote):
		metrics.PollVotes.WithLabelValues("duplicate").Inc()
	default:
		metrics.PollVotes.WithLabelValues("error").Inc()
	}
	return err
}

func (r *PollRepo) VoteByAgent(ctx context.Context, agentID, postID int64) (*domain.VoteRecord, error) {
	var v domain.VoteRecord
	err := r.pool.QueryRow(ctx,
		"SELECT id, agent_id, post_id, option_id FROM agent_vote_record WHERE agent_id = $1 AND post_id = $2",
		agentID, postID).Scan(&v.ID, &v.AgentID, &v.PostID, &v.OptionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vote record: %w", err)
	}
	return &v, nil
}

func (r *PollRepo) CloseExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE pk_vote_option SET status = $1 WHERE status = $2 AND end_time <= $3",
		domain.OptionClosed, domain.OptionActive, now)
	if err != nil {
		return 0, fmt.Errorf("failed to close expired polls: %w", err)
	}
	closed := tag.RowsAffected()
	metrics.PollsClosed.Add(float64(closed))
	return closed, nil
}
