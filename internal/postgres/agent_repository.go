package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zhemu6/AlterEgo/internal/domain"
	"github.com/zhemu6/AlterEgo/internal/metrics"
)

type AgentRepo struct {
	pool *pgxpool.Pool
}

func NewAgentRepo(pool *pgxpool.Pool) *AgentRepo {
	return &AgentRepo{pool: pool}
}

var _ domain.AgentRepository = (*AgentRepo)(nil)

const agentColumns = "id, user_id, agent_name, personality, energy, last_energy_reset, " +
	"post_count, comment_count, like_count, dislike_count, created_at, updated_at"

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var a domain.Agent
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Personality, &a.Energy, &a.LastEnergyReset,
		&a.PostCount, &a.CommentCount, &a.LikeCount, &a.DislikeCount, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan agent: %w", err)
	}
	return &a, nil
}

func (r *AgentRepo) GetByID(ctx context.Context, agentID int64) (*domain.Agent, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+agentColumns+" FROM agent WHERE id = $1", agentID)
	return scanAgent(row)
}

func (r *AgentRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Agent, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+agentColumns+" FROM agent WHERE user_id = $1", userID)
	return scanAgent(row)
}

func (r *AgentRepo) Create(ctx context.Context, userID int64, name, personality string) (*domain.Agent, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO agent (user_id, agent_name, personality)
		VALUES ($1, $2, $3)
		RETURNING `+agentColumns,
		userID, name, personality)

	agent, err := scanAgent(row)
	if isUniqueViolation(err) {
		return nil, domain.ErrAgentExists
	}
	return agent, err
}

// spendStatements maps each counter to its deduction statement. The guard
// `energy >= $1` makes the deduction conditional: a row is updated only when
// the balance still covers the cost, so concurrent spends can never push the
// balance negative.
var spendStatements = map[domain.ActionCounter]string{
	domain.CounterPosts: `
		UPDATE agent
		SET energy = energy - $1, post_count = post_count + 1, updated_at = now()
		WHERE id = $2 AND energy >= $1`,
	domain.CounterComments: `
		UPDATE agent
		SET energy = energy - $1, comment_count = comment_count + 1, updated_at = now()
		WHERE id = $2 AND energy >= $1`,
	"": `
		UPDATE agent
		SET energy = energy - $1, updated_at = now()
		WHERE id = $2 AND energy >= $1`,
}

func (r *AgentRepo) SpendEnergy(ctx context.Context, agentID int64, cost int, counter domain.ActionCounter) error {
	stmt, ok := spendStatements[counter]
	if !ok {
		return fmt.Errorf("unknown action counter %q", counter)
	}

	tag, err := r.pool.Exec(ctx, stmt, cost, agentID)
	if err != nil {
		metrics.EnergySpends.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to spend energy: %w", err)
	}
	if tag.RowsAffected() == 1 {
		metrics.EnergySpends.WithLabelValues("ok").Inc()
		return nil
	}

	// No row matched: either the agent is gone or the balance is short.
	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM agent WHERE id = $1)", agentID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check agent existence: %w", err)
	}
	if !exists {
		metrics.EnergySpends.WithLabelValues("not_found").Inc()
		return domain.ErrAgentNotFound
	}
	metrics.EnergySpends.WithLabelValues("insufficient").Inc()
	return domain.ErrInsufficientEnergy
}

func (r *AgentRepo) ResetDailyEnergy(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE agent
		SET energy = $1, last_energy_reset = CURRENT_DATE, updated_at = now()
		WHERE last_energy_reset < CURRENT_DATE`,
		domain.MaxEnergy)
	if err != nil {
		return 0, fmt.Errorf("failed to reset daily energy: %w", err)
	}
	return tag.RowsAffected(), nil
}
