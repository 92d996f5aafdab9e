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
	appsvcs "github.com/jpsm83/restaurant-pos/services/inventory/application/services"
	"github.com/jpsm83/restaurant-pos/services/inventory/domain/models"
	"github.com/jpsm83/restaurant-pos/services/inventory/domain/repositories"
)

// InventoryGoodResponse is the wire shape of one snapshot line.
type InventoryGoodResponse struct {
	SupplierGoodID       uuid.UUID        `json:"supplier_good_id"`
	MeasurementUnit      string           `json:"measurement_unit"`
	CountAtOpen          decimal.Decimal  `json:"count_at_open"`
	DynamicSystemCount   decimal.Decimal  `json:"dynamic_system_count"`
	CurrentCountQuantity *decimal.Decimal `json:"current_count_quantity,omitempty"`
	DeviationPercent     *decimal.Decimal `json:"deviation_percent,omitempty"`
	CountedByUserID      *uuid.UUID       `json:"counted_by_user_id,omitempty"`
}

// InventoryResponse is the wire shape of a snapshot.
type InventoryResponse struct {
	ID            uuid.UUID               `json:"id"`
	BusinessID    uuid.UUID               `json:"business_id"`
	SetFinalCount bool                    `json:"set_final_count"`
	CountedDate   *time.Time              `json:"counted_date,omitempty"`
	Goods         []InventoryGoodResponse `json:"goods,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
} // @name InventoryResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"no open inventory"`
} // @name ErrorResponse

func toInventoryResponse(inv *models.Inventory) InventoryResponse {
	resp := InventoryResponse{
		ID:            inv.ID,
		BusinessID:    inv.BusinessID,
		SetFinalCount: inv.SetFinalCount,
		CountedDate:   inv.CountedDate,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	for _, g := range inv.Goods {
		resp.Goods = append(resp.Goods, InventoryGoodResponse{
			SupplierGoodID:       g.SupplierGoodID,
			MeasurementUnit:      g.MeasurementUnit,
			CountAtOpen:          g.CountAtOpen,
			DynamicSystemCount:   g.DynamicSystemCount,
			CurrentCountQuantity: g.CurrentCountQuantity,
			DeviationPercent:     g.DeviationPercent,
			CountedByUserID:      g.CountedByUserID,
		})
	}
	return resp
}

// InventoryHandlers bundles the inventory endpoints.
type InventoryHandlers struct {
	svc *appsvcs.Services
}

// NewInventoryHandlers returns handlers backed by the given services.
func NewInventoryHandlers(svc *appsvcs.Services) *InventoryHandlers {
	return &InventoryHandlers{svc: svc}
}

// OpenInventoryRequest is the request body for POST /inventories.
type OpenInventoryRequest struct {
	BusinessID uuid.UUID `json:"business_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
} // @name OpenInventoryRequest

// Open opens an inventory snapshot.
//
//	@Summary		Open inventory
//	@Description	Opens a snapshot seeded with the business's in-use supplier goods; one open snapshot per business
//	@Tags			inventories
//	@Accept			json
//	@Produce		json
//	@Param			request	body		OpenInventoryRequest	true	"Inventory open request"
//	@Success		201		{object}	InventoryResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/inventories [post]
func (h *InventoryHandlers) Open(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[OpenInventoryRequest](w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Inventory.Open(r.Context(), req.BusinessID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toInventoryResponse(inv))
}

// GetOpen returns the business's open snapshot.
//
//	@Summary	Get open inventory
//	@Tags		inventories
//	@Produce	json
//	@Param		business_id	query		string	true	"Business ID"
//	@Success	200			{object}	InventoryResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/inventories/open [get]
func (h *InventoryHandlers) GetOpen(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessFromQuery(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Inventory.GetOpen(r.Context(), businessID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInventoryResponse(inv))
}

// GetByID returns one snapshot.
//
//	@Summary	Get inventory
//	@Tags		inventories
//	@Produce	json
//	@Param		id			path		string	true	"Inventory ID"
//	@Param		business_id	query		string	true	"Business ID"
//	@Success	200			{object}	InventoryResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/inventories/{id} [get]
func (h *InventoryHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Inventory.GetByID(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInventoryResponse(inv))
}

// List returns the business's snapshot headers.
//
//	@Summary	List inventories
//	@Tags		inventories
//	@Produce	json
//	@Param		business_id	query	string	true	"Business ID"
//	@Param		limit		query	int		false	"Page size"
//	@Param		offset		query	int		false	"Page offset"
//	@Success	200
//	@Router		/inventories [get]
func (h *InventoryHandlers) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessFromQuery(w, r)
	if !ok {
		return
	}
	invs, total, err := h.svc.Inventory.List(r.Context(), businessID, pagination(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	items := make([]InventoryResponse, len(invs))
	for i, inv := range invs {
		items[i] = toInventoryResponse(inv)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

// RecordCountRequest is the request body for PATCH /inventories/{id}/counts.
type RecordCountRequest struct {
	SupplierGoodID  uuid.UUID       `json:"supplier_good_id" validate:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	CountedQuantity decimal.Decimal `json:"counted_quantity" validate:"required" example:"8"`
	CountedByUserID uuid.UUID       `json:"counted_by_user_id" validate:"required"`
} // @name RecordCountRequest

// RecordCount stores a physical count for one snapshot line.
//
//	@Summary		Record physical count
//	@Description	Stores the counted quantity and its deviation from the system count
//	@Tags			inventories
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string				true	"Inventory ID"
//	@Param			business_id	query		string				true	"Business ID"
//	@Param			request		body		RecordCountRequest	true	"Physical count"
//	@Success		200			{object}	InventoryResponse
//	@Failure		409			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Router			/inventories/{id}/counts [patch]
func (h *InventoryHandlers) RecordCount(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[RecordCountRequest](w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Inventory.RecordCount(r.Context(), businessID, id, appsvcs.RecordCountInput{
		SupplierGoodID:  req.SupplierGoodID,
		CountedQuantity: req.CountedQuantity,
		CountedByUserID: req.CountedByUserID,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInventoryResponse(inv))
}

// Finalize closes a snapshot.
//
//	@Summary		Finalize inventory
//	@Description	Marks the snapshot terminal and resets the catalog's dynamic counts to the physical counts
//	@Tags			inventories
//	@Produce		json
//	@Param			id			path		string	true	"Inventory ID"
//	@Param			business_id	query		string	true	"Business ID"
//	@Success		200			{object}	InventoryResponse
//	@Failure		409			{object}	ErrorResponse
//	@Router			/inventories/{id}/finalize [post]
func (h *InventoryHandlers) Finalize(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Inventory.Finalize(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInventoryResponse(inv))
}

// Recount rebuilds the open snapshot's system counts from the purchase
// ledger.
//
//	@Summary		Recount inventory
//	@Description	Admin rebuild of the open snapshot's system counts; idempotent
//	@Tags			inventories
//	@Produce		json
//	@Param			business_id	query		string	true	"Business ID"
//	@Success		200			{object}	InventoryResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/inventories/recount [post]
func (h *InventoryHandlers) Recount(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessFromQuery(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Inventory.Recount(r.Context(), businessID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toInventoryResponse(inv))
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
