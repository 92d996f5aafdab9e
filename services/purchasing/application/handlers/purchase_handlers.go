package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jpsm83/restaurant-pos/pkg/errhttp"
	"github.com/jpsm83/restaurant-pos/pkg/httpx"
	pkgvalidator "github.com/jpsm83/restaurant-pos/pkg/validator"
	appsvcs "github.com/jpsm83/restaurant-pos/services/purchasing/application/services"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/models"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/repositories"
)

// PurchaseItemRequest is one line of a purchase request. supplier_good_id is
// optional only on one-time purchases.
type PurchaseItemRequest struct {
	SupplierGoodID    *uuid.UUID      `json:"supplier_good_id"`
	QuantityPurchased decimal.Decimal `json:"quantity_purchased" validate:"required" example:"5"`
	PurchasePrice     decimal.Decimal `json:"purchase_price" validate:"required" example:"12.50"`
} // @name PurchaseItemRequest

// CreatePurchaseRequest is the request body for POST /purchases.
type CreatePurchaseRequest struct {
	BusinessID        uuid.UUID             `json:"business_id" validate:"required"`
	SupplierID        *uuid.UUID            `json:"supplier_id"`
	PurchasedByUserID uuid.UUID             `json:"purchased_by_user_id" validate:"required"`
	PurchaseDate      time.Time             `json:"purchase_date"`
	ReceiptID         string                `json:"receipt_id" validate:"omitempty,max=255"`
	OneTimePurchase   bool                  `json:"one_time_purchase"`
	ImageURL          string                `json:"image_url" validate:"omitempty,url"`
	Items             []PurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
} // @name CreatePurchaseRequest

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"duplicate receipt for this supplier"`
} // @name ErrorResponse

// PurchaseItemResponse is the wire shape of one purchase line.
type PurchaseItemResponse struct {
	SupplierGoodID    *uuid.UUID      `json:"supplier_good_id,omitempty"`
	QuantityPurchased decimal.Decimal `json:"quantity_purchased"`
	PurchasePrice     decimal.Decimal `json:"purchase_price"`
}

// PurchaseResponse is the wire shape of a purchase.
type PurchaseResponse struct {
	ID                uuid.UUID                      `json:"id"`
	BusinessID        uuid.UUID                      `json:"business_id"`
	SupplierID        uuid.UUID                      `json:"supplier_id"`
	PurchasedByUserID uuid.UUID                      `json:"purchased_by_user_id"`
	PurchaseDate      time.Time                      `json:"purchase_date"`
	ReceiptID         string                         `json:"receipt_id"`
	TotalAmount       decimal.Decimal                `json:"total_amount"`
	OneTimePurchase   bool                           `json:"one_time_purchase"`
	ImageURL          string                         `json:"image_url,omitempty"`
	Items             []PurchaseItemResponse         `json:"items"`
	Reconciliation    *appsvcs.ReconciliationOutcome `json:"reconciliation,omitempty"`
	CreatedAt         time.Time                      `json:"created_at"`
} // @name PurchaseResponse

func toPurchaseResponse(p *models.Purchase) PurchaseResponse {
	items := make([]PurchaseItemResponse, len(p.Items))
	for i, item := range p.Items {
		items[i] = PurchaseItemResponse{
			SupplierGoodID:    item.SupplierGoodID,
			QuantityPurchased: item.QuantityPurchased,
			PurchasePrice:     item.PurchasePrice,
		}
	}
	return PurchaseResponse{
		ID:                p.ID,
		BusinessID:        p.BusinessID,
		SupplierID:        p.SupplierID,
		PurchasedByUserID: p.PurchasedByUserID,
		PurchaseDate:      p.PurchaseDate,
		ReceiptID:         p.ReceiptID,
		TotalAmount:       p.TotalAmount,
		OneTimePurchase:   p.OneTimePurchase,
		ImageURL:          p.ImageURL,
		Items:             items,
		CreatedAt:         p.CreatedAt,
	}
}

// PurchaseHandlers bundles the purchase endpoints.
type PurchaseHandlers struct {
	svc *appsvcs.Services
}

// NewPurchaseHandlers returns handlers backed by the given services.
func NewPurchaseHandlers(svc *appsvcs.Services) *PurchaseHandlers {
	return &PurchaseHandlers{svc: svc}
}

// Create records a purchase. The reconciliation outcome rides the 201; a
// failed reconciliation never fails the request.
//
//	@Summary		Create purchase
//	@Description	Appends a purchase to the ledger, then reconciles it against the open inventory
//	@Tags			purchases
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreatePurchaseRequest	true	"Purchase creation request"
//	@Success		201		{object}	PurchaseResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/purchases [post]
func (h *PurchaseHandlers) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreatePurchaseRequest](w, r)
	if !ok {
		return
	}

	items := make([]appsvcs.PurchaseItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = appsvcs.PurchaseItemInput{
			SupplierGoodID:    item.SupplierGoodID,
			QuantityPurchased: item.QuantityPurchased,
			PurchasePrice:     item.PurchasePrice,
		}
	}

	result, err := h.svc.Purchase.Create(r.Context(), req.BusinessID, appsvcs.CreatePurchaseInput{
		SupplierID:        req.SupplierID,
		PurchasedByUserID: req.PurchasedByUserID,
		PurchaseDate:      req.PurchaseDate,
		ReceiptID:         req.ReceiptID,
		OneTimePurchase:   req.OneTimePurchase,
		ImageURL:          req.ImageURL,
		Items:             items,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := toPurchaseResponse(result.Purchase)
	resp.Reconciliation = &result.Reconciliation
	httpx.JSON(w, http.StatusCreated, resp)
}

// GetByID returns one purchase with its lines.
//
//	@Summary	Get purchase
//	@Tags		purchases
//	@Produce	json
//	@Param		id			path		string	true	"Purchase ID"
//	@Param		business_id	query		string	true	"Business ID"
//	@Success	200			{object}	PurchaseResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/purchases/{id} [get]
func (h *PurchaseHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Purchase.GetByID(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPurchaseResponse(p))
}

// List returns the business's purchases with optional start/end
// purchase-date filters (RFC 3339).
//
//	@Summary	List purchases
//	@Tags		purchases
//	@Produce	json
//	@Param		business_id	query	string	true	"Business ID"
//	@Param		start		query	string	false	"Start of the purchase-date range (RFC 3339)"
//	@Param		end			query	string	false	"End of the purchase-date range (RFC 3339)"
//	@Param		limit		query	int		false	"Page size"
//	@Param		offset		query	int		false	"Page offset"
//	@Success	200
//	@Failure	400	{object}	ErrorResponse
//	@Router		/purchases [get]
func (h *PurchaseHandlers) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessFromQuery(w, r)
	if !ok {
		return
	}

	var dr repositories.DateRange
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid start date")
			return
		}
		dr.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid end date")
			return
		}
		dr.End = t
	}

	purchases, total, err := h.svc.Purchase.List(r.Context(), businessID, dr, pagination(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	items := make([]PurchaseResponse, len(purchases))
	for i, p := range purchases {
		items[i] = toPurchaseResponse(p)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

func businessAndID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	businessID, ok := businessFromQuery(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, uuid.Nil, false
	}
	return businessID, id, true
}

func businessFromQuery(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	businessID, err := uuid.Parse(r.URL.Query().Get("business_id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid business_id")
		return uuid.Nil, false
	}
	return businessID, true
}

func pagination(r *http.Request) repositories.QueryOpts {
	opts := repositories.QueryOpts{Limit: 50, Offset: 0}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			opts.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Offset = n
		}
	}
	return opts
}
