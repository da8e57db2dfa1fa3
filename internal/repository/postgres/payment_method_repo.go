// internal/repository/postgres/payment_method_repo.go
package postgres

import (
	"context"
	"fmt"

	"billgate-service/internal/domain/billing"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentMethodRepository struct {
	db *pgxpool.Pool
}

func NewPaymentMethodRepository(db *pgxpool.Pool) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

// Create stores a provider customer token. Rows are never updated; repeated
// subscribe attempts add new rows.
func (r *PaymentMethodRepository) Create(ctx context.Context, m *billing.PaymentMethod) error {
	query := `
		INSERT INTO payment_methods (gateway_id, workspace_id, token, reference)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, m.GatewayID, m.WorkspaceID, m.Token, m.Reference).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}

	return nil
}

// ListByWorkspace retrieves stored payment methods for a workspace, newest first.
func (r *PaymentMethodRepository) ListByWorkspace(ctx context.Context, workspaceID int64) ([]billing.PaymentMethod, error) {
	query := `
		SELECT id, gateway_id, workspace_id, token, reference, created_at
		FROM payment_methods
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []billing.PaymentMethod
	for rows.Next() {
		var m billing.PaymentMethod
		if err := rows.Scan(&m.ID, &m.GatewayID, &m.WorkspaceID, &m.Token, &m.Reference, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		methods = append(methods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payment methods: %w", err)
	}

	return methods, nil
}
