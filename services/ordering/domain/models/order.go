package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the kitchen-side state of an order.
type OrderStatus string

const (
	// OrderSent — routed to a preparation station.
	OrderSent OrderStatus = "sent"
	// OrderDone — prepared on the spot, no station involved.
	OrderDone OrderStatus = "done"
)

// BillingStatus is the payment-side state of an order.
type BillingStatus string

const (
	BillingOpen BillingStatus = "open"
	BillingPaid BillingStatus = "paid"
	BillingVoid BillingStatus = "void"
)

// Roles whose beverage orders skip the preparation queue: the person taking
// the order is the person making it.
var selfServeRoles = map[string]struct{}{
	"Barista":   {},
	"Bartender": {},
	"Cashier":   {},
}

// BeverageCategory is the main category that self-serve roles prepare
// directly.
const BeverageCategory = "Beverage"

// Order is one line item of a sales instance. A line may carry several
// business goods (a base good plus add-ons) that are priced and consumed
// together.
type Order struct {
	ID                 uuid.UUID
	BusinessID         uuid.UUID
	SalesInstanceID    uuid.UUID
	UserID             uuid.UUID
	BusinessGoodIDs    []uuid.UUID
	OrderStatus        OrderStatus
	BillingStatus      BillingStatus
	OrderPrice         decimal.Decimal
	OrderNetPrice      decimal.Decimal
	OrderCostPrice     decimal.Decimal
	Allergens          []string
	PromotionApplied   string
	DiscountPercentage decimal.Decimal
	Comments           string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewOrder constructs an Order. Promotion and discount are mutually
// exclusive; prices and allergens are filled in by the ordering service from
// the referenced goods.
func NewOrder(
	businessID, salesInstanceID, userID uuid.UUID,
	goodIDs []uuid.UUID,
	promotionApplied string,
	discountPercentage decimal.Decimal,
	comments string,
) (*Order, error) {
	if businessID == uuid.Nil {
		return nil, fmt.Errorf("business id must be set")
	}
	if salesInstanceID == uuid.Nil {
		return nil, fmt.Errorf("sales instance id must be set")
	}
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id must be set")
	}
	if len(goodIDs) == 0 {
		return nil, fmt.Errorf("order must reference at least one business good")
	}
	if promotionApplied != "" && !discountPercentage.IsZero() {
		return nil, fmt.Errorf("promotion and discount cannot be applied together")
	}
	if discountPercentage.IsNegative() || discountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("discount percentage must be between 0 and 100")
	}

	now := time.Now().UTC()
	return &Order{
		ID:                 uuid.New(),
		BusinessID:         businessID,
		SalesInstanceID:    salesInstanceID,
		UserID:             userID,
		BusinessGoodIDs:    goodIDs,
		OrderStatus:        OrderSent,
		BillingStatus:      BillingOpen,
		PromotionApplied:   promotionApplied,
		DiscountPercentage: discountPercentage,
		Comments:           comments,
		Allergens:          []string{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// StatusForRole decides the initial order status: a beverage ordered by a
// barista, bartender or cashier is made on the spot and lands as Done;
// everything else is Sent to a station.
func StatusForRole(userRole string, allBeverage bool) OrderStatus {
	if _, ok := selfServeRoles[userRole]; ok && allBeverage {
		return OrderDone
	}
	return OrderSent
}

var hundred = decimal.NewFromInt(100)

// ApplyPricing writes the derived money fields. The net price honors the
// discount; when a promotion is recorded the client-computed net is kept as
// is (promotion math stays client-side).
func (o *Order) ApplyPricing(gross, cost decimal.Decimal, allergens []string, clientNet *decimal.Decimal) {
	o.OrderPrice = gross
	o.OrderCostPrice = cost
	if allergens == nil {
		allergens = []string{}
	}
	o.Allergens = allergens

	switch {
	case o.PromotionApplied != "" && clientNet != nil:
		o.OrderNetPrice = *clientNet
	case !o.DiscountPercentage.IsZero():
		o.OrderNetPrice = gross.Mul(hundred.Sub(o.DiscountPercentage)).Div(hundred)
	default:
		o.OrderNetPrice = gross
	}
	o.UpdatedAt = time.Now().UTC()
}
