package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jpsm83/restaurant-pos/pkg/database"
	catalogdomain "github.com/jpsm83/restaurant-pos/services/catalog/domain"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/repositories"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// SupplierGoodRepository implements repositories.SupplierGoodRepository
// against PostgreSQL.
type SupplierGoodRepository struct {
	db *database.Database
}

// NewSupplierGoodRepository returns a SupplierGoodRepository backed by the
// given connection pool.
func NewSupplierGoodRepository(db *database.Database) *SupplierGoodRepository {
	return &SupplierGoodRepository{db: db}
}

const supplierGoodColumns = `id, business_id, supplier_id, name, main_category, sub_category,
	measurement_unit, total_quantity_per_unit, wholesale_price, price_per_unit,
	par_level, minimum_quantity_required, allergens, currently_in_use,
	dynamic_count_from_last_inventory, last_inventory_count_date, created_at, updated_at`

// Save persists a new SupplierGood. Returns ErrGoodAlreadyExists when the
// (business, name) unique constraint is violated.
func (r *SupplierGoodRepository) Save(ctx context.Context, good *models.SupplierGood) error {
	allergens, err := json.Marshal(good.Allergens)
	if err != nil {
		return fmt.Errorf("marshal allergens: %w", err)
	}

	_, err = r.db.DB().ExecContext(ctx, `
		INSERT INTO supplier_goods (`+supplierGoodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		good.ID, good.BusinessID, good.SupplierID, good.Name, good.MainCategory, good.SubCategory,
		good.MeasurementUnit, good.TotalQuantityPerUnit, good.WholesalePrice, good.PricePerUnit,
		good.ParLevel, good.MinimumQuantityRequired, allergens, good.CurrentlyInUse,
		good.DynamicCountFromLastInventory, good.LastInventoryCountDate, good.CreatedAt, good.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return catalogdomain.ErrGoodAlreadyExists
		}
		return fmt.Errorf("insert supplier good: %w", err)
	}
	return nil
}

// GetByID retrieves a SupplierGood scoped to the given business.
// Returns ErrSupplierGoodNotFound if not found.
func (r *SupplierGoodRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.SupplierGood, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT `+supplierGoodColumns+`
		FROM supplier_goods
		WHERE id = $1 AND business_id = $2`,
		id, businessID,
	)
	good, err := scanSupplierGood(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrSupplierGoodNotFound
		}
		return nil, fmt.Errorf("query supplier good: %w", err)
	}
	return good, nil
}

// GetManyByIDs fetches supplier goods by ID, scoped to the business.
// Missing IDs are simply absent from the returned map.
func (r *SupplierGoodRepository) GetManyByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.SupplierGood, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.SupplierGood{}, nil
	}

	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+supplierGoodColumns+`
		FROM supplier_goods
		WHERE business_id = $1 AND id = ANY($2)`,
		businessID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query supplier goods: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[uuid.UUID]*models.SupplierGood, len(ids))
	for rows.Next() {
		good, err := scanSupplierGood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan supplier good: %w", err)
		}
		out[good.ID] = good
	}
	return out, rows.Err()
}

// FindByBusinessID retrieves a paginated list of supplier goods and the total
// count for the given business.
func (r *SupplierGoodRepository) FindByBusinessID(ctx context.Context, businessID uuid.UUID, opts repositories.QueryOpts) ([]*models.SupplierGood, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+supplierGoodColumns+`
		FROM supplier_goods
		WHERE business_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3`,
		businessID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query supplier goods: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var goods []*models.SupplierGood
	for rows.Next() {
		good, err := scanSupplierGood(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan supplier good: %w", err)
		}
		goods = append(goods, good)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM supplier_goods WHERE business_id = $1`, businessID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count supplier goods: %w", err)
	}
	return goods, total, nil
}

// Update persists field changes to an existing SupplierGood. The dynamic
// count is deliberately excluded — it only moves through AdjustDynamicCounts.
func (r *SupplierGoodRepository) Update(ctx context.Context, good *models.SupplierGood) error {
	allergens, err := json.Marshal(good.Allergens)
	if err != nil {
		return fmt.Errorf("marshal allergens: %w", err)
	}

	res, err := r.db.DB().ExecContext(ctx, `
		UPDATE supplier_goods
		SET name = $3, main_category = $4, sub_category = $5, measurement_unit = $6,
		    total_quantity_per_unit = $7, wholesale_price = $8, price_per_unit = $9,
		    par_level = $10, minimum_quantity_required = $11, allergens = $12,
		    currently_in_use = $13, updated_at = $14
		WHERE id = $1 AND business_id = $2`,
		good.ID, good.BusinessID, good.Name, good.MainCategory, good.SubCategory, good.MeasurementUnit,
		good.TotalQuantityPerUnit, good.WholesalePrice, good.PricePerUnit,
		good.ParLevel, good.MinimumQuantityRequired, allergens,
		good.CurrentlyInUse, good.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return catalogdomain.ErrGoodAlreadyExists
		}
		return fmt.Errorf("update supplier good: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update supplier good: %w", err)
	}
	if affected == 0 {
		return catalogdomain.ErrSupplierGoodNotFound
	}
	return nil
}

// Delete removes a supplier good unless ingredient lists or purchase lines
// still reference it.
func (r *SupplierGoodRepository) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	var referenced bool
	err := r.db.DB().QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM business_good_ingredients WHERE supplier_good_id = $1)
		    OR EXISTS (SELECT 1 FROM purchase_items WHERE supplier_good_id = $1)`,
		id,
	).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check supplier good references: %w", err)
	}
	if referenced {
		return catalogdomain.ErrGoodInUse
	}

	res, err := r.db.DB().ExecContext(ctx,
		`DELETE FROM supplier_goods WHERE id = $1 AND business_id = $2`, id, businessID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return catalogdomain.ErrGoodInUse
		}
		return fmt.Errorf("delete supplier good: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete supplier good: %w", err)
	}
	if affected == 0 {
		return catalogdomain.ErrSupplierGoodNotFound
	}
	return nil
}

// AdjustDynamicCounts applies each delta as an independent atomic in-place
// increment. A delta whose good does not exist in the business simply matches
// zero rows; the caller decides what partial success means.
func (r *SupplierGoodRepository) AdjustDynamicCounts(ctx context.Context, businessID uuid.UUID, deltas []repositories.CountDelta) (int, error) {
	applied := 0
	for _, d := range deltas {
		res, err := r.db.DB().ExecContext(ctx, `
			UPDATE supplier_goods
			SET dynamic_count_from_last_inventory = dynamic_count_from_last_inventory + $3,
			    updated_at = now()
			WHERE id = $1 AND business_id = $2`,
			d.SupplierGoodID, businessID, d.Delta,
		)
		if err != nil {
			return applied, fmt.Errorf("adjust dynamic count for %s: %w", d.SupplierGoodID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return applied, fmt.Errorf("adjust dynamic count for %s: %w", d.SupplierGoodID, err)
		}
		applied += int(affected)
	}
	return applied, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSupplierGood(row rowScanner) (*models.SupplierGood, error) {
	var (
		good          models.SupplierGood
		allergensJSON []byte
		lastCount     sql.NullTime
	)
	if err := row.Scan(
		&good.ID, &good.BusinessID, &good.SupplierID, &good.Name, &good.MainCategory, &good.SubCategory,
		&good.MeasurementUnit, &good.TotalQuantityPerUnit, &good.WholesalePrice, &good.PricePerUnit,
		&good.ParLevel, &good.MinimumQuantityRequired, &allergensJSON, &good.CurrentlyInUse,
		&good.DynamicCountFromLastInventory, &lastCount, &good.CreatedAt, &good.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(allergensJSON, &good.Allergens); err != nil {
		return nil, fmt.Errorf("unmarshal allergens: %w", err)
	}
	if lastCount.Valid {
		t := lastCount.Time
		good.LastInventoryCountDate = &t
	}
	return &good, nil
}
