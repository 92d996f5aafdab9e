package services

import (
	"fmt"

	purchasingdomain "github.com/jpsm83/restaurant-pos/services/purchasing/domain"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/models"
)

// ValidateItems checks a purchase's line items before anything is written.
// Each line needs a positive quantity and a positive price; a catalog good
// reference is mandatory unless the purchase is a one-time purchase. The
// returned error wraps ErrInvalidPurchase with a human-readable reason.
func ValidateItems(items []models.PurchaseItem, oneTime bool) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: purchase must have at least one item", purchasingdomain.ErrInvalidPurchase)
	}
	for i, item := range items {
		if !item.QuantityPurchased.IsPositive() {
			return fmt.Errorf("%w: item %d: quantity purchased must be greater than zero", purchasingdomain.ErrInvalidPurchase, i)
		}
		if !item.PurchasePrice.IsPositive() {
			return fmt.Errorf("%w: item %d: purchase price must be greater than zero", purchasingdomain.ErrInvalidPurchase, i)
		}
		if item.SupplierGoodID == nil && !oneTime {
			return fmt.Errorf("%w: item %d: supplier good is required unless the purchase is a one-time purchase", purchasingdomain.ErrInvalidPurchase, i)
		}
	}
	return nil
}
