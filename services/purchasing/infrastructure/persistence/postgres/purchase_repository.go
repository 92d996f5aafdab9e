package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jpsm83/restaurant-pos/pkg/database"
	"github.com/jpsm83/restaurant-pos/pkg/events"
	purchasingdomain "github.com/jpsm83/restaurant-pos/services/purchasing/domain"
	domainevents "github.com/jpsm83/restaurant-pos/services/purchasing/domain/events"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/models"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/repositories"
)

// PurchaseRepository implements repositories.PurchaseRepository against
// PostgreSQL with a Watermill outbox.
type PurchaseRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewPurchaseRepository returns a PurchaseRepository backed by the given
// connection pool and event bus.
func NewPurchaseRepository(db *database.Database, bus *events.EventBus) *PurchaseRepository {
	return &PurchaseRepository{db: db, bus: bus}
}

// Save inserts the purchase and its items and publishes purchase.created, all
// in one transaction. The (business, supplier, receipt) unique constraint
// maps to ErrDuplicateReceipt.
func (r *PurchaseRepository) Save(ctx context.Context, p *models.Purchase) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO purchases
				(id, business_id, supplier_id, purchased_by_user_id, purchase_date,
				 receipt_id, total_amount, one_time_purchase, image_url, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, p.BusinessID, p.SupplierID, p.PurchasedByUserID, p.PurchaseDate,
			p.ReceiptID, p.TotalAmount, p.OneTimePurchase, nullString(p.ImageURL), p.CreatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return purchasingdomain.ErrDuplicateReceipt
			}
			return fmt.Errorf("insert purchase: %w", err)
		}

		for _, item := range p.Items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO purchase_items (id, purchase_id, supplier_good_id, quantity_purchased, purchase_price)
				VALUES (gen_random_uuid(), $1, $2, $3, $4)`,
				p.ID, item.SupplierGoodID, item.QuantityPurchased, item.PurchasePrice,
			)
			if err != nil {
				return fmt.Errorf("insert purchase item: %w", err)
			}
		}

		return r.publishCreated(tx, p)
	})
}

// GetByID returns a purchase with its items, scoped to the business.
func (r *PurchaseRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*models.Purchase, error) {
	row := r.db.DB().QueryRowContext(ctx, `
		SELECT id, business_id, supplier_id, purchased_by_user_id, purchase_date,
		       receipt_id, total_amount, one_time_purchase, image_url, created_at
		FROM purchases
		WHERE id = $1 AND business_id = $2`,
		id, businessID,
	)
	p, err := scanPurchase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, purchasingdomain.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("query purchase: %w", err)
	}
	if err := r.loadItems(ctx, []*models.Purchase{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// FindByBusinessID lists purchases newest-first under an optional
// purchase-date filter.
func (r *PurchaseRepository) FindByBusinessID(ctx context.Context, businessID uuid.UUID, dr repositories.DateRange, opts repositories.QueryOpts) ([]*models.Purchase, int, error) {
	where := []string{"business_id = $1"}
	args := []any{businessID}
	if !dr.Start.IsZero() {
		args = append(args, dr.Start)
		where = append(where, fmt.Sprintf("purchase_date >= $%d", len(args)))
	}
	if !dr.End.IsZero() {
		args = append(args, dr.End)
		where = append(where, fmt.Sprintf("purchase_date <= $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	listArgs := append(append([]any{}, args...), opts.Limit, opts.Offset)
	rows, err := r.db.DB().QueryContext(ctx, fmt.Sprintf(`
		SELECT id, business_id, supplier_id, purchased_by_user_id, purchase_date,
		       receipt_id, total_amount, one_time_purchase, image_url, created_at
		FROM purchases
		WHERE %s
		ORDER BY purchase_date DESC
		LIMIT $%d OFFSET $%d`, cond, len(args)+1, len(args)+2),
		listArgs...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query purchases: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var purchases []*models.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadItems(ctx, purchases); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM purchases WHERE %s`, cond), args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count purchases: %w", err)
	}
	return purchases, total, nil
}

func (r *PurchaseRepository) loadItems(ctx context.Context, purchases []*models.Purchase) error {
	if len(purchases) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(purchases))
	byID := make(map[uuid.UUID]*models.Purchase, len(purchases))
	for i, p := range purchases {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT purchase_id, supplier_good_id, quantity_purchased, purchase_price
		FROM purchase_items
		WHERE purchase_id = ANY($1)
		ORDER BY purchase_id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query purchase items: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var (
			purchaseID uuid.UUID
			goodID     sql.Null[uuid.UUID]
			item       models.PurchaseItem
		)
		if err := rows.Scan(&purchaseID, &goodID, &item.QuantityPurchased, &item.PurchasePrice); err != nil {
			return fmt.Errorf("scan purchase item: %w", err)
		}
		if goodID.Valid {
			id := goodID.V
			item.SupplierGoodID = &id
		}
		if p, ok := byID[purchaseID]; ok {
			p.Items = append(p.Items, item)
		}
	}
	return rows.Err()
}

func (r *PurchaseRepository) publishCreated(tx *sql.Tx, p *models.Purchase) error {
	lines := make([]domainevents.PurchaseLine, len(p.Items))
	for i, item := range p.Items {
		lines[i] = domainevents.PurchaseLine{
			SupplierGoodID:    item.SupplierGoodID,
			QuantityPurchased: item.QuantityPurchased.String(),
		}
	}
	event := domainevents.PurchaseCreatedEvent{
		EventID:     uuid.New(),
		Version:     1,
		PurchaseID:  p.ID,
		BusinessID:  p.BusinessID,
		SupplierID:  p.SupplierID,
		ReceiptID:   p.ReceiptID,
		TotalAmount: p.TotalAmount.String(),
		Lines:       lines,
		OccurredAt:  p.CreatedAt,
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
	return pub.Publish(domainevents.TopicPurchaseCreated, msg)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func scanPurchase(row rowScanner) (*models.Purchase, error) {
	var (
		p        models.Purchase
		imageURL sql.NullString
	)
	if err := row.Scan(
		&p.ID, &p.BusinessID, &p.SupplierID, &p.PurchasedByUserID, &p.PurchaseDate,
		&p.ReceiptID, &p.TotalAmount, &p.OneTimePurchase, &imageURL, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.ImageURL = imageURL.String
	return &p, nil
}
