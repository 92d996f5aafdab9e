package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicBusinessGoodUpdated is the Watermill topic published when a business
// good is created or its derived cost/allergens change.
const TopicBusinessGoodUpdated = "business_good.updated"

// BusinessGoodUpdatedEvent feeds the Redis read-model cache; the worker warms
// the projection so menu reads skip Postgres.
type BusinessGoodUpdatedEvent struct {
	EventID        uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version        int       `json:"version"`  // Schema version; increment on breaking changes
	BusinessGoodID uuid.UUID `json:"business_good_id"`
	BusinessID     uuid.UUID `json:"business_id"`
	Name           string    `json:"name"`
	SellingPrice   string    `json:"selling_price"`
	CostPrice      string    `json:"cost_price"`
	Allergens      []string  `json:"allergens"`
	OccurredAt     time.Time `json:"occurred_at"`
}
