// internal/repository/postgres/plan_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"billgate-service/internal/domain/billing"
	xerrors "billgate-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlanRepository struct {
	db *pgxpool.Pool
}

func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

// FindByID retrieves a subscription plan by ID
func (r *PlanRepository) FindByID(ctx context.Context, id int64) (*billing.SubscriptionPlan, error) {
	query := `
		SELECT id, name, price_monthly, price_yearly, created_at, updated_at
		FROM subscription_plans
		WHERE id = $1
	`

	var plan billing.SubscriptionPlan
	err := r.db.QueryRow(ctx, query, id).Scan(
		&plan.ID, &plan.Name, &plan.PriceMonthly, &plan.PriceYearly,
		&plan.CreatedAt, &plan.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription plan: %w", err)
	}

	return &plan, nil
}
