package domain

import "errors"

// Domain errors for the ordering context. pkg/errhttp maps these onto HTTP
// status codes.
var (
	// ErrSalesInstanceNotFound is returned when a sales instance does not
	// exist in the business scope.
	ErrSalesInstanceNotFound = errors.New("sales instance not found")

	// ErrSalesInstanceClosed is returned when ordering against a closed
	// sales instance.
	ErrSalesInstanceClosed = errors.New("sales instance is closed")

	// ErrSalesInstanceHasOpenOrders blocks closing a sales instance while
	// any of its orders is still in open billing.
	ErrSalesInstanceHasOpenOrders = errors.New("sales instance has orders with open billing")

	// ErrOrderNotFound is returned when an order does not exist in the
	// business scope.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderNotVoidable is returned when voiding an order whose billing
	// status is not open.
	ErrOrderNotVoidable = errors.New("only orders with open billing can be voided")

	// ErrInvalidOrder flags a malformed order request.
	ErrInvalidOrder = errors.New("invalid order")
)
