package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jpsm83/restaurant-pos/pkg/database"
	orderingdomain "github.com/jpsm83/restaurant-pos/services/ordering/domain"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/models"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/repositories"
)

// SalesInstanceRepository implements repositories.SalesInstanceRepository
// against PostgreSQL.
type SalesInstanceRepository struct {
	db *database.Database
}

// NewSalesInstanceRepository returns a SalesInstanceRepository backed by the
// given connection pool.
func NewSalesInstanceRepository(db *database.Database) *SalesInstanceRepository {
	return &SalesInstanceRepository{db: db}
}

// Save inserts a sales instance.
func (r *SalesInstanceRepository) Save(ctx context.Context, s *models.SalesInstance) error {
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO sales_instances (id, business_id, reference, status, responsible_user_id, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.BusinessID, s.Reference, s.Status, s.ResponsibleUserID, s.OpenedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sales instance: %w", err)
	}
	return nil
}

// GetByID returns a sales instance scoped to the business.
func (r *SalesInstanceRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.SalesInstance, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, business_id, reference, status, responsible_user_id, opened_at, closed_at
		FROM sales_instances
		WHERE id = $1 AND business_id = $2`,
		id, businessID,
	)
	s, err := scanSalesInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderingdomain.ErrSalesInstanceNotFound
		}
		return nil, fmt.Errorf("query sales instance: %w", err)
	}
	return s, nil
}

// FindByBusinessID lists sales instances newest-first plus total count.
func (r *SalesInstanceRepository) FindByBusinessID(ctx context.Context, businessID uuid.UUID, opts repositories.QueryOpts) ([]*models.SalesInstance, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, business_id, reference, status, responsible_user_id, opened_at, closed_at
		FROM sales_instances
		WHERE business_id = $1
		ORDER BY opened_at DESC
		LIMIT $2 OFFSET $3`,
		businessID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query sales instances: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var instances []*models.SalesInstance
	for rows.Next() {
		s, err := scanSalesInstance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sales instance: %w", err)
		}
		instances = append(instances, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sales_instances WHERE business_id = $1`, businessID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales instances: %w", err)
	}
	return instances, total, nil
}

// Close marks the instance closed unless any of its orders still bills open.
// The guard and the transition run in one transaction so a concurrent order
// insert cannot slip between them.
func (r *SalesInstanceRepository) Close(ctx context.Context, businessID, id uuid.UUID) (*models.SalesInstance, error) {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var status models.SalesInstanceStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM sales_instances WHERE id = $1 AND business_id = $2 FOR UPDATE`,
			id, businessID,
		).Scan(&status)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return orderingdomain.ErrSalesInstanceNotFound
			}
			return fmt.Errorf("lock sales instance: %w", err)
		}
		if status == models.SalesInstanceClosed {
			return orderingdomain.ErrSalesInstanceClosed
		}

		var openOrders bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM orders
				WHERE sales_instance_id = $1 AND billing_status = $2
			)`,
			id, models.BillingOpen,
		).Scan(&openOrders)
		if err != nil {
			return fmt.Errorf("check open orders: %w", err)
		}
		if openOrders {
			return orderingdomain.ErrSalesInstanceHasOpenOrders
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE sales_instances
			SET status = $3, closed_at = now()
			WHERE id = $1 AND business_id = $2`,
			id, businessID, models.SalesInstanceClosed,
		)
		if err != nil {
			return fmt.Errorf("close sales instance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, businessID, id)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSalesInstance(row rowScanner) (*models.SalesInstance, error) {
	var (
		s      models.SalesInstance
		closed sql.NullTime
	)
	if err := row.Scan(
		&s.ID, &s.BusinessID, &s.Reference, &s.Status, &s.ResponsibleUserID, &s.OpenedAt, &closed,
	); err != nil {
		return nil, err
	}
	if closed.Valid {
		t := closed.Time
		s.ClosedAt = &t
	}
	return &s, nil
}
