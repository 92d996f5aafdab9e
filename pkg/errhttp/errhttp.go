// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/jpsm83/restaurant-pos/pkg/httpx"
	catalogdomain "github.com/jpsm83/restaurant-pos/services/catalog/domain"
	invdomain "github.com/jpsm83/restaurant-pos/services/inventory/domain"
	orderingdomain "github.com/jpsm83/restaurant-pos/services/ordering/domain"
	purchasingdomain "github.com/jpsm83/restaurant-pos/services/purchasing/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	httpx.JSONError(w, mapErrorToStatus(err), err.Error())
}

func mapErrorToStatus(err error) int {
	switch {
	// 404 — absent within the business scope
	case errors.Is(err, catalogdomain.ErrSupplierGoodNotFound),
		errors.Is(err, catalogdomain.ErrBusinessGoodNotFound),
		errors.Is(err, invdomain.ErrInventoryNotFound),
		errors.Is(err, invdomain.ErrNoOpenInventory),
		errors.Is(err, purchasingdomain.ErrPurchaseNotFound),
		errors.Is(err, purchasingdomain.ErrSupplierNotFound),
		errors.Is(err, orderingdomain.ErrSalesInstanceNotFound),
		errors.Is(err, orderingdomain.ErrOrderNotFound):
		return http.StatusNotFound // 404

	// 409 — conflicts with existing state
	case errors.Is(err, catalogdomain.ErrGoodAlreadyExists),
		errors.Is(err, catalogdomain.ErrGoodInUse),
		errors.Is(err, invdomain.ErrInventoryAlreadyOpen),
		errors.Is(err, invdomain.ErrInventoryFinalized),
		errors.Is(err, purchasingdomain.ErrDuplicateReceipt),
		errors.Is(err, purchasingdomain.ErrSupplierAlreadyExists),
		errors.Is(err, orderingdomain.ErrSalesInstanceClosed),
		errors.Is(err, orderingdomain.ErrSalesInstanceHasOpenOrders),
		errors.Is(err, orderingdomain.ErrOrderNotVoidable):
		return http.StatusConflict // 409

	// 400 — malformed request parameters
	case errors.Is(err, purchasingdomain.ErrInvalidDateRange):
		return http.StatusBadRequest // 400

	// 422 — semantically invalid payloads
	case errors.Is(err, catalogdomain.ErrInvalidGood),
		errors.Is(err, catalogdomain.ErrInvalidComposition),
		errors.Is(err, catalogdomain.ErrNestedSetMenu),
		errors.Is(err, invdomain.ErrInvalidCount),
		errors.Is(err, invdomain.ErrGoodNotInInventory),
		errors.Is(err, purchasingdomain.ErrInvalidPurchase),
		errors.Is(err, orderingdomain.ErrInvalidOrder):
		return http.StatusUnprocessableEntity // 422

	default:
		return http.StatusInternalServerError // 500
	}
}
