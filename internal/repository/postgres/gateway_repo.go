// internal/repository/postgres/gateway_repo.go
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

type GatewayRepository struct {
	db *pgxpool.Pool
}

func NewGatewayRepository(db *pgxpool.Pool) *GatewayRepository {
	return &GatewayRepository{db: db}
}

// FindActiveByProvider retrieves the active gateway of a provider kind.
// A partial unique index on (provider) WHERE active guarantees at most one.
func (r *GatewayRepository) FindActiveByProvider(ctx context.Context, kind billing.ProviderKind) (*billing.PaymentGateway, error) {
	query := `
		SELECT id, provider, public_key, private_key,
		       monthly_plan_code, yearly_plan_code,
		       active, created_at, updated_at
		FROM payment_gateways
		WHERE provider = $1 AND active
	`

	var gw billing.PaymentGateway
	err := r.db.QueryRow(ctx, query, kind).Scan(
		&gw.ID, &gw.Provider, &gw.PublicKey, &gw.PrivateKey,
		&gw.MonthlyPlanCode, &gw.YearlyPlanCode,
		&gw.Active, &gw.CreatedAt, &gw.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrGatewayNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment gateway: %w", err)
	}

	return &gw, nil
}

// ListActive retrieves all active gateways, used to present payment options.
func (r *GatewayRepository) ListActive(ctx context.Context) ([]billing.PaymentGateway, error) {
	query := `
		SELECT id, provider, public_key, private_key,
		       monthly_plan_code, yearly_plan_code,
		       active, created_at, updated_at
		FROM payment_gateways
		WHERE active
		ORDER BY provider
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment gateways: %w", err)
	}
	defer rows.Close()

	var gateways []billing.PaymentGateway
	for rows.Next() {
		var gw billing.PaymentGateway
		if err := rows.Scan(
			&gw.ID, &gw.Provider, &gw.PublicKey, &gw.PrivateKey,
			&gw.MonthlyPlanCode, &gw.YearlyPlanCode,
			&gw.Active, &gw.CreatedAt, &gw.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan payment gateway: %w", err)
		}
		gateways = append(gateways, gw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payment gateways: %w", err)
	}

	return gateways, nil
}
