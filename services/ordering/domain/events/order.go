package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicOrderCreated is the Watermill topic published, through the outbox, in
// the same transaction that records an order.
const TopicOrderCreated = "order.created"

// OrderCreatedEvent records a committed order line.
type OrderCreatedEvent struct {
	EventID         uuid.UUID   `json:"event_id"` // Unique publish-time identifier for deduplication
	Version         int         `json:"version"`  // Schema version; increment on breaking changes
	OrderID         uuid.UUID   `json:"order_id"`
	BusinessID      uuid.UUID   `json:"business_id"`
	SalesInstanceID uuid.UUID   `json:"sales_instance_id"`
	BusinessGoodIDs []uuid.UUID `json:"business_good_ids"`
	OrderStatus     string      `json:"order_status"`
	OrderNetPrice   string      `json:"order_net_price"`
	OccurredAt      time.Time   `json:"occurred_at"`
}
