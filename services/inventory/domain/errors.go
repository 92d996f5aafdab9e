package domain

import "errors"

// Domain errors for the inventory context. pkg/errhttp maps these onto HTTP
// status codes.
var (
	// ErrInventoryNotFound is returned when an inventory does not exist in
	// the business scope.
	ErrInventoryNotFound = errors.New("inventory not found")

	// ErrNoOpenInventory is returned when an operation needs an open
	// inventory and the business has none.
	ErrNoOpenInventory = errors.New("no open inventory for business")

	// ErrInventoryAlreadyOpen is returned when opening an inventory while
	// another one is still open for the same business.
	ErrInventoryAlreadyOpen = errors.New("an inventory is already open for this business")

	// ErrInventoryFinalized is returned when mutating an inventory whose
	// final count has been set. Finalization is terminal.
	ErrInventoryFinalized = errors.New("inventory is finalized")

	// ErrGoodNotInInventory is returned when recording a count for a
	// supplier good absent from the snapshot.
	ErrGoodNotInInventory = errors.New("supplier good is not part of this inventory")

	// ErrReconciliationFailed is returned when a purchase reconciliation
	// matched zero snapshot lines. It never rolls back the purchase; callers
	// surface it as a warning on an otherwise successful response.
	ErrReconciliationFailed = errors.New("inventory reconciliation failed")

	// ErrInvalidCount flags a malformed physical count.
	ErrInvalidCount = errors.New("invalid inventory count")
)
