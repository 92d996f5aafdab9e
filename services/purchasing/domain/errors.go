package domain

import "errors"

// Domain errors for the purchasing context. pkg/errhttp maps these onto HTTP
// status codes.
var (
	// ErrPurchaseNotFound is returned when a purchase does not exist in the
	// business scope.
	ErrPurchaseNotFound = errors.New("purchase not found")

	// ErrSupplierNotFound is returned when a supplier does not exist in the
	// business scope.
	ErrSupplierNotFound = errors.New("supplier not found")

	// ErrDuplicateReceipt is returned when a purchase carries a receipt id
	// already recorded for the same business and supplier.
	ErrDuplicateReceipt = errors.New("receipt already recorded for this supplier")

	// ErrSupplierAlreadyExists is returned on a duplicate supplier trade
	// name within a business.
	ErrSupplierAlreadyExists = errors.New("supplier already exists")

	// ErrInvalidPurchase flags a purchase that fails line-item validation.
	// The wrapped message carries the human-readable reason.
	ErrInvalidPurchase = errors.New("invalid purchase")

	// ErrInvalidDateRange is returned when a list filter's start date is
	// after its end date.
	ErrInvalidDateRange = errors.New("start date must not be after end date")
)
