package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jpsm83/restaurant-pos/pkg/database"
	purchasingdomain "github.com/jpsm83/restaurant-pos/services/purchasing/domain"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/models"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/repositories"
)

const pgUniqueViolation = "23505"

// SupplierRepository implements repositories.SupplierRepository against
// PostgreSQL.
type SupplierRepository struct {
	db *database.Database
}

// NewSupplierRepository returns a SupplierRepository backed by the given
// connection pool.
func NewSupplierRepository(db *database.Database) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// Save inserts a supplier. A duplicate trade name within the business trips
// the unique constraint and maps to ErrSupplierAlreadyExists.
func (r *SupplierRepository) Save(ctx context.Context, s *models.Supplier) error {
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO suppliers (id, business_id, trade_name, one_time_purchase, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.BusinessID, s.TradeName, s.OneTimePurchase, s.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return purchasingdomain.ErrSupplierAlreadyExists
		}
		return fmt.Errorf("insert supplier: %w", err)
	}
	return nil
}

// GetByID returns a supplier scoped to the business.
func (r *SupplierRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Supplier, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, business_id, trade_name, one_time_purchase, created_at
		FROM suppliers
		WHERE id = $1 AND business_id = $2`,
		id, businessID,
	)
	s, err := scanSupplier(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, purchasingdomain.ErrSupplierNotFound
		}
		return nil, fmt.Errorf("query supplier: %w", err)
	}
	return s, nil
}

// FindByBusinessID lists suppliers plus total count.
func (r *SupplierRepository) FindByBusinessID(ctx context.Context, businessID uuid.UUID, opts repositories.QueryOpts) ([]*models.Supplier, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, business_id, trade_name, one_time_purchase, created_at
		FROM suppliers
		WHERE business_id = $1
		ORDER BY trade_name
		LIMIT $2 OFFSET $3`,
		businessID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var suppliers []*models.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM suppliers WHERE business_id = $1`, businessID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count suppliers: %w", err)
	}
	return suppliers, total, nil
}

// EnsureOneTimeSupplier gets or creates the business's sentinel supplier.
// INSERT … ON CONFLICT DO NOTHING against the partial unique index on
// (business_id) WHERE one_time_purchase means concurrent first calls insert
// at most one row; the follow-up SELECT reads whichever row won.
func (r *SupplierRepository) EnsureOneTimeSupplier(ctx context.Context, businessID uuid.UUID) (*models.Supplier, error) {
	sentinel := models.NewOneTimeSupplier(businessID)
	_, err := r.db.DB().ExecContext(ctx, `
		INSERT INTO suppliers (id, business_id, trade_name, one_time_purchase, created_at)
		VALUES ($1, $2, $3, true, $4)
		ON CONFLICT DO NOTHING`,
		sentinel.ID, sentinel.BusinessID, sentinel.TradeName, sentinel.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure one-time supplier: %w", err)
	}

	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, business_id, trade_name, one_time_purchase, created_at
		FROM suppliers
		WHERE business_id = $1 AND one_time_purchase`,
		businessID,
	)
	s, err := scanSupplier(row)
	if err != nil {
		return nil, fmt.Errorf("select one-time supplier: %w", err)
	}
	return s, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSupplier(row rowScanner) (*models.Supplier, error) {
	var s models.Supplier
	if err := row.Scan(&s.ID, &s.BusinessID, &s.TradeName, &s.OneTimePurchase, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
