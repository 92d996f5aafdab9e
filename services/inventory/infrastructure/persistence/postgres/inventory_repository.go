package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/jpsm83/restaurant-pos/pkg/database"
	invdomain "github.com/jpsm83/restaurant-pos/services/inventory/domain"
	"github.com/jpsm83/restaurant-pos/services/inventory/domain/models"
	"github.com/jpsm83/restaurant-pos/services/inventory/domain/repositories"
)

const pgUniqueViolation = "23505"

// InventoryRepository implements repositories.InventoryRepository against
// PostgreSQL.
type InventoryRepository struct {
	db *database.Database
}

// NewInventoryRepository returns an InventoryRepository backed by the given
// connection pool.
func NewInventoryRepository(db *database.Database) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Open inserts the snapshot header and seeds one line per in-use supplier
// good, freezing the good's dynamic count as both count_at_open and the
// starting dynamic_system_count. The partial unique index on
// (business_id) WHERE NOT set_final_count rejects a second open snapshot.
func (r *InventoryRepository) Open(ctx context.Context, inv *models.Inventory) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventories (id, business_id, set_final_count, created_at, updated_at)
			VALUES ($1, $2, false, $3, $4)`,
			inv.ID, inv.BusinessID, inv.CreatedAt, inv.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return invdomain.ErrInventoryAlreadyOpen
			}
			return fmt.Errorf("insert inventory: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO inventory_goods
				(id, inventory_id, supplier_good_id, measurement_unit, count_at_open, dynamic_system_count)
			SELECT gen_random_uuid(), $1, id, measurement_unit,
			       dynamic_count_from_last_inventory, dynamic_count_from_last_inventory
			FROM supplier_goods
			WHERE business_id = $2 AND currently_in_use`,
			inv.ID, inv.BusinessID,
		)
		if err != nil {
			return fmt.Errorf("seed inventory goods: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	goods, err := r.loadGoods(ctx, inv.ID)
	if err != nil {
		return err
	}
	inv.Goods = goods
	return nil
}

// GetOpen returns the business's open snapshot with goods attached.
func (r *InventoryRepository) GetOpen(ctx context.Context, businessID uuid.UUID) (*models.Inventory, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, business_id, set_final_count, counted_date, created_at, updated_at
		FROM inventories
		WHERE business_id = $1 AND NOT set_final_count`,
		businessID,
	)
	inv, err := scanInventory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invdomain.ErrNoOpenInventory
		}
		return nil, fmt.Errorf("query open inventory: %w", err)
	}
	if inv.Goods, err = r.loadGoods(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetByID returns a snapshot with goods attached, scoped to the business.
func (r *InventoryRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Inventory, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, business_id, set_final_count, counted_date, created_at, updated_at
		FROM inventories
		WHERE id = $1 AND business_id = $2`,
		id, businessID,
	)
	inv, err := scanInventory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invdomain.ErrInventoryNotFound
		}
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	if inv.Goods, err = r.loadGoods(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

// FindByBusinessID lists snapshot headers newest-first plus total count.
func (r *InventoryRepository) FindByBusinessID(ctx context.Context, businessID uuid.UUID, opts repositories.QueryOpts) ([]*models.Inventory, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, business_id, set_final_count, counted_date, created_at, updated_at
		FROM inventories
		WHERE business_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		businessID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query inventories: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var invs []*models.Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory: %w", err)
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventories WHERE business_id = $1`, businessID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventories: %w", err)
	}
	return invs, total, nil
}

// RecordCount stores a physical count on one line of the open snapshot.
func (r *InventoryRepository) RecordCount(ctx context.Context, businessID, inventoryID uuid.UUID, rec repositories.CountRecord) error {
	res, err := r.db.DB().ExecContext(ctx, `
		UPDATE inventory_goods ig
		SET current_count_quantity = $4, deviation_percent = $5, counted_by_user_id = $6
		FROM inventories i
		WHERE ig.inventory_id = i.id
		  AND i.id = $1 AND i.business_id = $2 AND NOT i.set_final_count
		  AND ig.supplier_good_id = $3`,
		inventoryID, businessID, rec.SupplierGoodID,
		rec.CountedQuantity, rec.DeviationPercent, rec.CountedByUserID,
	)
	if err != nil {
		return fmt.Errorf("record count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("record count: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Zero rows: figure out which precondition failed.
	inv, err := r.GetByID(ctx, businessID, inventoryID)
	if err != nil {
		return err
	}
	if inv.SetFinalCount {
		return invdomain.ErrInventoryFinalized
	}
	return invdomain.ErrGoodNotInInventory
}

// Finalize flips the snapshot terminal and writes the counted quantities back
// to the catalog: each supplier good's dynamic count resets to the physical
// count (falling back to the system count when no one counted the line) and
// its last inventory count date is stamped.
func (r *InventoryRepository) Finalize(ctx context.Context, businessID, inventoryID uuid.UUID) (*models.Inventory, error) {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE inventories
			SET set_final_count = true, counted_date = now(), updated_at = now()
			WHERE id = $1 AND business_id = $2 AND NOT set_final_count`,
			inventoryID, businessID,
		)
		if err != nil {
			return fmt.Errorf("finalize inventory: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("finalize inventory: %w", err)
		}
		if affected == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM inventories WHERE id = $1 AND business_id = $2)`,
				inventoryID, businessID,
			).Scan(&exists); err != nil {
				return fmt.Errorf("finalize inventory: %w", err)
			}
			if !exists {
				return invdomain.ErrInventoryNotFound
			}
			return invdomain.ErrInventoryFinalized
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE supplier_goods sg
			SET dynamic_count_from_last_inventory = COALESCE(ig.current_count_quantity, ig.dynamic_system_count),
			    last_inventory_count_date = now(),
			    updated_at = now()
			FROM inventory_goods ig
			WHERE ig.inventory_id = $1 AND ig.supplier_good_id = sg.id`,
			inventoryID,
		)
		if err != nil {
			return fmt.Errorf("reset supplier good counts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, businessID, inventoryID)
}

// IncrementSystemCounts applies each line as an independent atomic in-place
// increment. A line whose good is not in the snapshot matches zero rows.
func (r *InventoryRepository) IncrementSystemCounts(ctx context.Context, inventoryID uuid.UUID, lines []repositories.ReconcileLine) (int, error) {
	matched := 0
	for _, line := range lines {
		res, err := r.db.DB().ExecContext(ctx, `
			UPDATE inventory_goods
			SET dynamic_system_count = dynamic_system_count + $3
			WHERE inventory_id = $1 AND supplier_good_id = $2`,
			inventoryID, line.SupplierGoodID, line.Quantity,
		)
		if err != nil {
			return matched, fmt.Errorf("increment system count for %s: %w", line.SupplierGoodID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return matched, fmt.Errorf("increment system count for %s: %w", line.SupplierGoodID, err)
		}
		matched += int(affected)
	}
	return matched, nil
}

// RebuildSystemCounts replays the purchase ledger: every line becomes its
// frozen count_at_open plus the quantities purchased since the snapshot
// opened. Running it twice is a no-op.
func (r *InventoryRepository) RebuildSystemCounts(ctx context.Context, businessID, inventoryID uuid.UUID) error {
	res, err := r.db.DB().ExecContext(ctx, `
		UPDATE inventory_goods ig
		SET dynamic_system_count = ig.count_at_open + COALESCE((
			SELECT SUM(pi.quantity_purchased)
			FROM purchase_items pi
			JOIN purchases p ON p.id = pi.purchase_id
			WHERE p.business_id = $1
			  AND pi.supplier_good_id = ig.supplier_good_id
			  AND p.created_at >= (SELECT created_at FROM inventories WHERE id = $2)
		), 0)
		WHERE ig.inventory_id = $2`,
		businessID, inventoryID,
	)
	if err != nil {
		return fmt.Errorf("rebuild system counts: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("rebuild system counts: %w", err)
	}
	return nil
}

func (r *InventoryRepository) loadGoods(ctx context.Context, inventoryID uuid.UUID) ([]*models.InventoryGood, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, inventory_id, supplier_good_id, measurement_unit, count_at_open,
		       dynamic_system_count, current_count_quantity, deviation_percent, counted_by_user_id
		FROM inventory_goods
		WHERE inventory_id = $1
		ORDER BY supplier_good_id`,
		inventoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("query inventory goods: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var goods []*models.InventoryGood
	for rows.Next() {
		var (
			g         models.InventoryGood
			counted   decimal.NullDecimal
			deviation decimal.NullDecimal
			countedBy sql.Null[uuid.UUID]
		)
		if err := rows.Scan(
			&g.ID, &g.InventoryID, &g.SupplierGoodID, &g.MeasurementUnit, &g.CountAtOpen,
			&g.DynamicSystemCount, &counted, &deviation, &countedBy,
		); err != nil {
			return nil, fmt.Errorf("scan inventory good: %w", err)
		}
		if counted.Valid {
			d := counted.Decimal
			g.CurrentCountQuantity = &d
		}
		if deviation.Valid {
			d := deviation.Decimal
			g.DeviationPercent = &d
		}
		if countedBy.Valid {
			id := countedBy.V
			g.CountedByUserID = &id
		}
		goods = append(goods, &g)
	}
	return goods, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInventory(row rowScanner) (*models.Inventory, error) {
	var (
		inv     models.Inventory
		counted sql.NullTime
	)
	if err := row.Scan(
		&inv.ID, &inv.BusinessID, &inv.SetFinalCount, &counted, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if counted.Valid {
		t := counted.Time
		inv.CountedDate = &t
	}
	return &inv, nil
}
