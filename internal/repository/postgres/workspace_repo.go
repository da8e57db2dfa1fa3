// internal/repository/postgres/workspace_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billgate-service/internal/domain/billing"
	xerrors "billgate-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkspaceRepository is the transactional store of a workspace's
// subscription state. Every mutation is a single UPDATE so a transition is
// atomic per workspace.
type WorkspaceRepository struct {
	db *pgxpool.Pool
}

func NewWorkspaceRepository(db *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// FindByID retrieves a workspace with its subscription state
func (r *WorkspaceRepository) FindByID(ctx context.Context, id int64) (*billing.Workspace, error) {
	query := `
		SELECT id, name, subscribed, plan_id, term, price, trial,
		       subscription_start_date, next_renewal_date,
		       created_at, updated_at
		FROM workspaces
		WHERE id = $1
	`

	var ws billing.Workspace
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ws.ID, &ws.Name, &ws.Subscribed, &ws.PlanID, &ws.Term, &ws.Price, &ws.Trial,
		&ws.SubscriptionStartDate, &ws.NextRenewalDate,
		&ws.CreatedAt, &ws.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	return &ws, nil
}

// Activate subscribes the workspace to a paid plan. Re-activating simply
// overwrites the previous state; no history is kept.
func (r *WorkspaceRepository) Activate(ctx context.Context, id, planID int64, term billing.Term, price float64, start, nextRenewal time.Time) error {
	query := `
		UPDATE workspaces
		SET subscribed = true, plan_id = $2, term = $3, price = $4, trial = false,
		    subscription_start_date = $5, next_renewal_date = $6, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, planID, term, price, start, nextRenewal)
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ActivateFree subscribes the workspace to a free plan: price 0, no term, no
// renewal date.
func (r *WorkspaceRepository) ActivateFree(ctx context.Context, id, planID int64, start time.Time) error {
	query := `
		UPDATE workspaces
		SET subscribed = true, plan_id = $2, term = '', price = 0, trial = false,
		    subscription_start_date = $3, next_renewal_date = NULL, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, planID, start)
	if err != nil {
		return fmt.Errorf("failed to activate free subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// Deactivate unsubscribes the workspace and clears the plan reference. Term,
// price and dates are deliberately left as they were.
func (r *WorkspaceRepository) Deactivate(ctx context.Context, id int64) error {
	query := `
		UPDATE workspaces
		SET subscribed = false, plan_id = 0, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
