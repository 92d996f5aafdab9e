package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jpsm83/restaurant-pos/pkg/database"
	"github.com/jpsm83/restaurant-pos/pkg/events"
	catalogdomain "github.com/jpsm83/restaurant-pos/services/catalog/domain"
	domainevents "github.com/jpsm83/restaurant-pos/services/catalog/domain/events"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/repositories"
)

// BusinessGoodRepository implements repositories.BusinessGoodRepository
// against PostgreSQL. Composition lives in two child tables keyed by the
// good; the composition_mode column records the active variant.
type BusinessGoodRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewBusinessGoodRepository returns a BusinessGoodRepository backed by the
// given connection pool and event bus. The bus publishes
// BusinessGoodUpdatedEvents inside the write transaction (outbox).
func NewBusinessGoodRepository(db *database.Database, bus *events.EventBus) *BusinessGoodRepository {
	return &BusinessGoodRepository{db: db, bus: bus}
}

const businessGoodColumns = `id, business_id, name, keyword, main_category, sub_category,
	on_menu, available, selling_price, cost_price, allergens, composition_mode,
	description, created_at, updated_at`

// Save persists a new BusinessGood with its composition rows and publishes a
// BusinessGoodUpdatedEvent within the same transaction.
// Returns ErrGoodAlreadyExists on the (business, name) unique constraint.
func (r *BusinessGoodRepository) Save(ctx context.Context, good *models.BusinessGood) error {
	allergens, err := json.Marshal(good.Allergens)
	if err != nil {
		return fmt.Errorf("marshal allergens: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO business_goods (`+businessGoodColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			good.ID, good.BusinessID, good.Name, good.Keyword, good.MainCategory, good.SubCategory,
			good.OnMenu, good.Available, good.SellingPrice, good.CostPrice, allergens,
			string(good.Composition.Mode()), good.Description, good.CreatedAt, good.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return catalogdomain.ErrGoodAlreadyExists
			}
			return fmt.Errorf("insert business good: %w", err)
		}

		if err := r.insertComposition(ctx, tx, good); err != nil {
			return err
		}

		if r.bus != nil {
			if err := r.publishUpdated(tx, good); err != nil {
				return fmt.Errorf("publish business good updated: %w", err)
			}
		}
		return nil
	})
}

// Update persists the good and replaces its composition rows. Deleting from
// both child tables before re-inserting is the relational analog of unsetting
// the stale variant on a mode switch.
func (r *BusinessGoodRepository) Update(ctx context.Context, good *models.BusinessGood) error {
	allergens, err := json.Marshal(good.Allergens)
	if err != nil {
		return fmt.Errorf("marshal allergens: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE business_goods
			SET name = $3, keyword = $4, main_category = $5, sub_category = $6,
			    on_menu = $7, available = $8, selling_price = $9, cost_price = $10,
			    allergens = $11, composition_mode = $12, description = $13, updated_at = $14
			WHERE id = $1 AND business_id = $2`,
			good.ID, good.BusinessID, good.Name, good.Keyword, good.MainCategory, good.SubCategory,
			good.OnMenu, good.Available, good.SellingPrice, good.CostPrice,
			allergens, string(good.Composition.Mode()), good.Description, good.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return catalogdomain.ErrGoodAlreadyExists
			}
			return fmt.Errorf("update business good: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update business good: %w", err)
		}
		if affected == 0 {
			return catalogdomain.ErrBusinessGoodNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM business_good_ingredients WHERE business_good_id = $1`, good.ID,
		); err != nil {
			return fmt.Errorf("clear ingredient rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM business_good_set_menu WHERE business_good_id = $1`, good.ID,
		); err != nil {
			return fmt.Errorf("clear set menu rows: %w", err)
		}

		if err := r.insertComposition(ctx, tx, good); err != nil {
			return err
		}

		if r.bus != nil {
			if err := r.publishUpdated(tx, good); err != nil {
				return fmt.Errorf("publish business good updated: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a BusinessGood with its composition, scoped to the business.
func (r *BusinessGoodRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.BusinessGood, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT `+businessGoodColumns+`
		FROM business_goods
		WHERE id = $1 AND business_id = $2`,
		id, businessID,
	)
	good, mode, err := scanBusinessGood(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrBusinessGoodNotFound
		}
		return nil, fmt.Errorf("query business good: %w", err)
	}
	if err := r.loadCompositions(ctx, map[uuid.UUID]*models.BusinessGood{good.ID: good}, map[uuid.UUID]models.CompositionMode{good.ID: mode}); err != nil {
		return nil, err
	}
	return good, nil
}

// GetManyByIDs loads business goods with compositions, scoped to the business.
// Missing IDs are simply absent from the returned map.
func (r *BusinessGoodRepository) GetManyByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.BusinessGood, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.BusinessGood{}, nil
	}

	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+businessGoodColumns+`
		FROM business_goods
		WHERE business_id = $1 AND id = ANY($2)`,
		businessID, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query business goods: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	goods := make(map[uuid.UUID]*models.BusinessGood, len(ids))
	modes := make(map[uuid.UUID]models.CompositionMode, len(ids))
	for rows.Next() {
		good, mode, err := scanBusinessGood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan business good: %w", err)
		}
		goods[good.ID] = good
		modes[good.ID] = mode
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadCompositions(ctx, goods, modes); err != nil {
		return nil, err
	}
	return goods, nil
}

// FindByBusinessID retrieves a paginated list of business goods (compositions
// included) and the total count for the given business.
func (r *BusinessGoodRepository) FindByBusinessID(ctx context.Context, businessID uuid.UUID, opts repositories.QueryOpts) ([]*models.BusinessGood, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+businessGoodColumns+`
		FROM business_goods
		WHERE business_id = $1
		ORDER BY name
		LIMIT $2 OFFSET $3`,
		businessID, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query business goods: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var ordered []*models.BusinessGood
	goods := make(map[uuid.UUID]*models.BusinessGood)
	modes := make(map[uuid.UUID]models.CompositionMode)
	for rows.Next() {
		good, mode, err := scanBusinessGood(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan business good: %w", err)
		}
		ordered = append(ordered, good)
		goods[good.ID] = good
		modes[good.ID] = mode
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadCompositions(ctx, goods, modes); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM business_goods WHERE business_id = $1`, businessID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count business goods: %w", err)
	}
	return ordered, total, nil
}

// Delete removes a business good unless open orders or set menus reference it.
func (r *BusinessGoodRepository) Delete(ctx context.Context, businessID, id uuid.UUID) error {
	var referenced bool
	err := r.db.DB().QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM order_goods og
			JOIN orders o ON o.id = og.order_id
			WHERE og.business_good_id = $1 AND o.billing_status = 'open'
		)
		OR EXISTS (SELECT 1 FROM business_good_set_menu WHERE component_good_id = $1)`,
		id,
	).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check business good references: %w", err)
	}
	if referenced {
		return catalogdomain.ErrGoodInUse
	}

	res, err := r.db.DB().ExecContext(ctx,
		`DELETE FROM business_goods WHERE id = $1 AND business_id = $2`, id, businessID,
	)
	if err != nil {
		return fmt.Errorf("delete business good: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete business good: %w", err)
	}
	if affected == 0 {
		return catalogdomain.ErrBusinessGoodNotFound
	}
	return nil
}

func (r *BusinessGoodRepository) insertComposition(ctx context.Context, tx *sql.Tx, good *models.BusinessGood) error {
	switch good.Composition.Mode() {
	case models.CompositionIngredients:
		for _, line := range good.Composition.Ingredients() {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO business_good_ingredients
					(business_good_id, supplier_good_id, measurement_unit, required_quantity, cost_of_required_quantity)
				VALUES ($1, $2, $3, $4, $5)`,
				good.ID, line.SupplierGoodID, line.MeasurementUnit, line.RequiredQuantity, line.CostOfRequiredQuantity,
			); err != nil {
				return fmt.Errorf("insert ingredient row: %w", err)
			}
		}
	case models.CompositionSetMenu:
		for _, componentID := range good.Composition.SetMenu() {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO business_good_set_menu (business_good_id, component_good_id)
				VALUES ($1, $2)`,
				good.ID, componentID,
			); err != nil {
				return fmt.Errorf("insert set menu row: %w", err)
			}
		}
	}
	return nil
}

// loadCompositions attaches ingredient/set-menu rows to the fetched goods.
func (r *BusinessGoodRepository) loadCompositions(ctx context.Context, goods map[uuid.UUID]*models.BusinessGood, modes map[uuid.UUID]models.CompositionMode) error {
	if len(goods) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(goods))
	for id := range goods {
		ids = append(ids, id)
	}

	ingredientRows, err := r.db.DB().QueryContext(ctx, `
		SELECT business_good_id, supplier_good_id, measurement_unit, required_quantity, cost_of_required_quantity
		FROM business_good_ingredients
		WHERE business_good_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query ingredient rows: %w", err)
	}
	defer ingredientRows.Close() //nolint:errcheck

	lines := make(map[uuid.UUID][]models.IngredientLine)
	for ingredientRows.Next() {
		var goodID uuid.UUID
		var line models.IngredientLine
		if err := ingredientRows.Scan(&goodID, &line.SupplierGoodID, &line.MeasurementUnit, &line.RequiredQuantity, &line.CostOfRequiredQuantity); err != nil {
			return fmt.Errorf("scan ingredient row: %w", err)
		}
		lines[goodID] = append(lines[goodID], line)
	}
	if err := ingredientRows.Err(); err != nil {
		return err
	}

	setMenuRows, err := r.db.DB().QueryContext(ctx, `
		SELECT business_good_id, component_good_id
		FROM business_good_set_menu
		WHERE business_good_id = ANY($1)`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query set menu rows: %w", err)
	}
	defer setMenuRows.Close() //nolint:errcheck

	components := make(map[uuid.UUID][]uuid.UUID)
	for setMenuRows.Next() {
		var goodID, componentID uuid.UUID
		if err := setMenuRows.Scan(&goodID, &componentID); err != nil {
			return fmt.Errorf("scan set menu row: %w", err)
		}
		components[goodID] = append(components[goodID], componentID)
	}
	if err := setMenuRows.Err(); err != nil {
		return err
	}

	for id, good := range goods {
		good.Composition = models.RestoredComposition(modes[id], lines[id], components[id])
	}
	return nil
}

func (r *BusinessGoodRepository) publishUpdated(tx *sql.Tx, good *models.BusinessGood) error {
	event := domainevents.BusinessGoodUpdatedEvent{
		EventID:        uuid.New(),
		Version:        1,
		BusinessGoodID: good.ID,
		BusinessID:     good.BusinessID,
		Name:           good.Name,
		SellingPrice:   good.SellingPrice.String(),
		CostPrice:      good.CostPrice.String(),
		Allergens:      good.Allergens,
		OccurredAt:     good.UpdatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", event.EventID.String())
	msg.Metadata.Set("event_version", "1")
	p, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return p.Publish(domainevents.TopicBusinessGoodUpdated, msg)
}

func scanBusinessGood(row rowScanner) (*models.BusinessGood, models.CompositionMode, error) {
	var (
		good          models.BusinessGood
		allergensJSON []byte
		mode          string
	)
	if err := row.Scan(
		&good.ID, &good.BusinessID, &good.Name, &good.Keyword, &good.MainCategory, &good.SubCategory,
		&good.OnMenu, &good.Available, &good.SellingPrice, &good.CostPrice, &allergensJSON, &mode,
		&good.Description, &good.CreatedAt, &good.UpdatedAt,
	); err != nil {
		return nil, "", err
	}
	if err := json.Unmarshal(allergensJSON, &good.Allergens); err != nil {
		return nil, "", fmt.Errorf("unmarshal allergens: %w", err)
	}
	return &good, models.CompositionMode(mode), nil
}
