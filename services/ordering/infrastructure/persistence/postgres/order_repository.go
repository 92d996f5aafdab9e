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

	"github.com/jpsm83/restaurant-pos/pkg/database"
	"github.com/jpsm83/restaurant-pos/pkg/events"
	orderingdomain "github.com/jpsm83/restaurant-pos/services/ordering/domain"
	domainevents "github.com/jpsm83/restaurant-pos/services/ordering/domain/events"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/models"
)

// OrderRepository implements repositories.OrderRepository against PostgreSQL
// with a Watermill outbox.
type OrderRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewOrderRepository returns an OrderRepository backed by the given
// connection pool and event bus.
func NewOrderRepository(db *database.Database, bus *events.EventBus) *OrderRepository {
	return &OrderRepository{db: db, bus: bus}
}

const orderColumns = `id, business_id, sales_instance_id, user_id, order_status, billing_status,
	order_price, order_net_price, order_cost_price, allergens, promotion_applied,
	discount_percentage, comments, created_at, updated_at`

// Save inserts the order, its good references and the order.created event in
// one transaction.
func (r *OrderRepository) Save(ctx context.Context, o *models.Order) error {
	allergens, err := json.Marshal(o.Allergens)
	if err != nil {
		return fmt.Errorf("marshal allergens: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (`+orderColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			o.ID, o.BusinessID, o.SalesInstanceID, o.UserID, o.OrderStatus, o.BillingStatus,
			o.OrderPrice, o.OrderNetPrice, o.OrderCostPrice, allergens, nullString(o.PromotionApplied),
			o.DiscountPercentage, nullString(o.Comments), o.CreatedAt, o.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for position, goodID := range o.BusinessGoodIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO order_goods (order_id, business_good_id, position)
				VALUES ($1, $2, $3)`,
				o.ID, goodID, position,
			)
			if err != nil {
				return fmt.Errorf("insert order good: %w", err)
			}
		}

		return r.publishCreated(tx, o)
	})
}

// GetByID returns an order with its good references, scoped to the business.
func (r *OrderRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Order, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1 AND business_id = $2`,
		id, businessID,
	)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderingdomain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order: %w", err)
	}
	if err := r.loadGoods(ctx, []*models.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// FindBySalesInstance lists the instance's orders oldest-first.
func (r *OrderRepository) FindBySalesInstance(ctx context.Context, businessID, salesInstanceID uuid.UUID) ([]*models.Order, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE business_id = $1 AND sales_instance_id = $2
		ORDER BY created_at`,
		businessID, salesInstanceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadGoods(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SetBillingStatus transitions billing_status from → to atomically. Zero rows
// affected means the order is missing or not in the expected state.
func (r *OrderRepository) SetBillingStatus(ctx context.Context, businessID, id uuid.UUID, from, to models.BillingStatus) (*models.Order, error) {
	res, err := r.db.DB().ExecContext(ctx, `
		UPDATE orders
		SET billing_status = $4, updated_at = now()
		WHERE id = $1 AND business_id = $2 AND billing_status = $3`,
		id, businessID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("set billing status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("set billing status: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, businessID, id); err != nil {
			return nil, err
		}
		if to == models.BillingVoid {
			return nil, orderingdomain.ErrOrderNotVoidable
		}
		return nil, orderingdomain.ErrOrderNotFound
	}
	return r.GetByID(ctx, businessID, id)
}

func (r *OrderRepository) loadGoods(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*models.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT order_id, business_good_id
		FROM order_goods
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query order goods: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var orderID, goodID uuid.UUID
		if err := rows.Scan(&orderID, &goodID); err != nil {
			return fmt.Errorf("scan order good: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.BusinessGoodIDs = append(o.BusinessGoodIDs, goodID)
		}
	}
	return rows.Err()
}

func (r *OrderRepository) publishCreated(tx *sql.Tx, o *models.Order) error {
	event := domainevents.OrderCreatedEvent{
		EventID:         uuid.New(),
		Version:         1,
		OrderID:         o.ID,
		BusinessID:      o.BusinessID,
		SalesInstanceID: o.SalesInstanceID,
		BusinessGoodIDs: o.BusinessGoodIDs,
		OrderStatus:     string(o.OrderStatus),
		OrderNetPrice:   o.OrderNetPrice.String(),
		OccurredAt:      o.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", event.EventID.String())
	msg.Metadata.Set("event_version", "1")
	pub, err := r.bus.NewTxPublisher(tx)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	return pub.Publish(domainevents.TopicOrderCreated, msg)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o             models.Order
		allergensJSON []byte
		promotion     sql.NullString
		comments      sql.NullString
	)
	if err := row.Scan(
		&o.ID, &o.BusinessID, &o.SalesInstanceID, &o.UserID, &o.OrderStatus, &o.BillingStatus,
		&o.OrderPrice, &o.OrderNetPrice, &o.OrderCostPrice, &allergensJSON, &promotion,
		&o.DiscountPercentage, &comments, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(allergensJSON, &o.Allergens); err != nil {
		return nil, fmt.Errorf("unmarshal allergens: %w", err)
	}
	o.PromotionApplied = promotion.String
	o.Comments = comments.String
	return &o, nil
}
