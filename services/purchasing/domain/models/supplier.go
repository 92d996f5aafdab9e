package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OneTimeSupplierName is the trade name of the sentinel supplier that absorbs
// ad-hoc purchases. At most one exists per business; a partial unique index
// on (business_id) WHERE one_time_purchase enforces it.
const OneTimeSupplierName = "One Time Purchase"

// Supplier is a procurement source for a business.
type Supplier struct {
	ID              uuid.UUID
	BusinessID      uuid.UUID
	TradeName       string
	OneTimePurchase bool
	CreatedAt       time.Time
}

// NewSupplier constructs a regular supplier.
func NewSupplier(businessID uuid.UUID, tradeName string) (*Supplier, error) {
	if businessID == uuid.Nil {
		return nil, fmt.Errorf("business id must be set")
	}
	if tradeName == "" {
		return nil, fmt.Errorf("trade name must not be empty")
	}
	return &Supplier{
		ID:         uuid.New(),
		BusinessID: businessID,
		TradeName:  tradeName,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// NewOneTimeSupplier constructs the sentinel supplier for ad-hoc purchases.
func NewOneTimeSupplier(businessID uuid.UUID) *Supplier {
	return &Supplier{
		ID:              uuid.New(),
		BusinessID:      businessID,
		TradeName:       OneTimeSupplierName,
		OneTimePurchase: true,
		CreatedAt:       time.Now().UTC(),
	}
}
