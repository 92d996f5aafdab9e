package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseItem is one received line of a purchase. SupplierGoodID is nil for
// ad-hoc one-time-purchase lines that track no catalog good.
type PurchaseItem struct {
	SupplierGoodID    *uuid.UUID
	QuantityPurchased decimal.Decimal
	PurchasePrice     decimal.Decimal
}

// Purchase is an append-only record of goods received from a supplier.
// TotalAmount is the sum of the line prices.
type Purchase struct {
	ID                uuid.UUID
	BusinessID        uuid.UUID
	SupplierID        uuid.UUID
	PurchasedByUserID uuid.UUID
	PurchaseDate      time.Time
	ReceiptID         string
	TotalAmount       decimal.Decimal
	OneTimePurchase   bool
	ImageURL          string
	Items             []PurchaseItem
	CreatedAt         time.Time
}

// NewPurchase constructs a Purchase. A blank receipt id defaults to a
// unix-millis timestamp string so every purchase stays addressable on paperless
// receipts. The total amount is derived from the line prices.
func NewPurchase(
	businessID, supplierID, purchasedBy uuid.UUID,
	purchaseDate time.Time,
	receiptID string,
	oneTime bool,
	imageURL string,
	items []PurchaseItem,
) (*Purchase, error) {
	if businessID == uuid.Nil {
		return nil, fmt.Errorf("business id must be set")
	}
	if supplierID == uuid.Nil {
		return nil, fmt.Errorf("supplier id must be set")
	}
	if purchasedBy == uuid.Nil {
		return nil, fmt.Errorf("purchased-by user id must be set")
	}

	now := time.Now().UTC()
	if purchaseDate.IsZero() {
		purchaseDate = now
	}
	if receiptID == "" {
		receiptID = strconv.FormatInt(now.UnixMilli(), 10)
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.PurchasePrice)
	}

	return &Purchase{
		ID:                uuid.New(),
		BusinessID:        businessID,
		SupplierID:        supplierID,
		PurchasedByUserID: purchasedBy,
		PurchaseDate:      purchaseDate,
		ReceiptID:         receiptID,
		TotalAmount:       total,
		OneTimePurchase:   oneTime,
		ImageURL:          imageURL,
		Items:             items,
		CreatedAt:         now,
	}, nil
}
