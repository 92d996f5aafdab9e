package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicPurchaseCreated is the Watermill topic published, through the outbox,
// in the same transaction that records a purchase.
const TopicPurchaseCreated = "purchase.created"

// TopicPurchaseReconciliationFailed is published after commit when folding a
// purchase into the open inventory failed. The worker reacts by rebuilding
// the snapshot's system counts from the purchase ledger.
const TopicPurchaseReconciliationFailed = "purchase.reconciliation_failed"

// PurchaseLine is one reconcilable line of a purchase event.
type PurchaseLine struct {
	SupplierGoodID    *uuid.UUID `json:"supplier_good_id,omitempty"`
	QuantityPurchased string     `json:"quantity_purchased"`
}

// PurchaseCreatedEvent records a committed purchase.
type PurchaseCreatedEvent struct {
	EventID     uuid.UUID      `json:"event_id"` // Unique publish-time identifier for deduplication
	Version     int            `json:"version"`  // Schema version; increment on breaking changes
	PurchaseID  uuid.UUID      `json:"purchase_id"`
	BusinessID  uuid.UUID      `json:"business_id"`
	SupplierID  uuid.UUID      `json:"supplier_id"`
	ReceiptID   string         `json:"receipt_id"`
	TotalAmount string         `json:"total_amount"`
	Lines       []PurchaseLine `json:"lines"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

// ReconciliationFailedEvent flags a purchase whose inventory reconciliation
// did not apply. Idempotent to reprocess: the recount it triggers rebuilds
// from the ledger rather than replaying the delta.
type ReconciliationFailedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	PurchaseID uuid.UUID `json:"purchase_id"`
	BusinessID uuid.UUID `json:"business_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
