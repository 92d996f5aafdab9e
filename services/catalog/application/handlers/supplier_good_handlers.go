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
	appsvcs "github.com/jpsm83/restaurant-pos/services/catalog/application/services"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/repositories"
)

// CreateSupplierGoodRequest is the request body for POST /supplier-goods.
type CreateSupplierGoodRequest struct {
	BusinessID              uuid.UUID       `json:"business_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SupplierID              uuid.UUID       `json:"supplier_id" validate:"required" example:"123e4567-e89b-12d3-a456-426614174000"`
	Name                    string          `json:"name" validate:"required,min=1,max=255" example:"Whole Milk"`
	MainCategory            string          `json:"main_category" validate:"required" example:"Dairy"`
	SubCategory             string          `json:"sub_category"`
	MeasurementUnit         string          `json:"measurement_unit" validate:"required" example:"liter"`
	TotalQuantityPerUnit    decimal.Decimal `json:"total_quantity_per_unit" validate:"required" example:"10"`
	WholesalePrice          decimal.Decimal `json:"wholesale_price" validate:"required" example:"20.50"`
	ParLevel                decimal.Decimal `json:"par_level"`
	MinimumQuantityRequired decimal.Decimal `json:"minimum_quantity_required"`
	Allergens               []string        `json:"allergens" example:"lactose"`
} // @name CreateSupplierGoodRequest

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"supplier good not found"`
} // @name ErrorResponse

// SupplierGoodResponse is the wire shape of a supplier good.
type SupplierGoodResponse struct {
	ID                            uuid.UUID       `json:"id"`
	BusinessID                    uuid.UUID       `json:"business_id"`
	SupplierID                    uuid.UUID       `json:"supplier_id"`
	Name                          string          `json:"name"`
	MainCategory                  string          `json:"main_category"`
	SubCategory                   string          `json:"sub_category,omitempty"`
	MeasurementUnit               string          `json:"measurement_unit"`
	TotalQuantityPerUnit          decimal.Decimal `json:"total_quantity_per_unit"`
	WholesalePrice                decimal.Decimal `json:"wholesale_price"`
	PricePerUnit                  decimal.Decimal `json:"price_per_unit"`
	ParLevel                      decimal.Decimal `json:"par_level"`
	MinimumQuantityRequired       decimal.Decimal `json:"minimum_quantity_required"`
	Allergens                     []string        `json:"allergens"`
	CurrentlyInUse                bool            `json:"currently_in_use"`
	DynamicCountFromLastInventory decimal.Decimal `json:"dynamic_count_from_last_inventory"`
	LastInventoryCountDate        *time.Time      `json:"last_inventory_count_date,omitempty"`
	CreatedAt                     time.Time       `json:"created_at"`
} // @name SupplierGoodResponse

func toSupplierGoodResponse(g *models.SupplierGood) SupplierGoodResponse {
	return SupplierGoodResponse{
		ID:                            g.ID,
		BusinessID:                    g.BusinessID,
		SupplierID:                    g.SupplierID,
		Name:                          g.Name,
		MainCategory:                  g.MainCategory,
		SubCategory:                   g.SubCategory,
		MeasurementUnit:               g.MeasurementUnit,
		TotalQuantityPerUnit:          g.TotalQuantityPerUnit,
		WholesalePrice:                g.WholesalePrice,
		PricePerUnit:                  g.PricePerUnit,
		ParLevel:                      g.ParLevel,
		MinimumQuantityRequired:       g.MinimumQuantityRequired,
		Allergens:                     g.Allergens,
		CurrentlyInUse:                g.CurrentlyInUse,
		DynamicCountFromLastInventory: g.DynamicCountFromLastInventory,
		LastInventoryCountDate:        g.LastInventoryCountDate,
		CreatedAt:                     g.CreatedAt,
	}
}

// SupplierGoodHandlers bundles the supplier-good endpoints.
type SupplierGoodHandlers struct {
	svc *appsvcs.Services
}

// NewSupplierGoodHandlers returns handlers backed by the given services.
func NewSupplierGoodHandlers(svc *appsvcs.Services) *SupplierGoodHandlers {
	return &SupplierGoodHandlers{svc: svc}
}

// Create creates a supplier good.
//
//	@Summary		Create supplier good
//	@Description	Creates a raw supplier good; price per unit is derived server-side
//	@Tags			supplier-goods
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateSupplierGoodRequest	true	"Supplier good creation request"
//	@Success		201		{object}	SupplierGoodResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/supplier-goods [post]
func (h *SupplierGoodHandlers) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateSupplierGoodRequest](w, r)
	if !ok {
		return
	}

	good, err := h.svc.SupplierGood.Create(r.Context(), req.BusinessID, appsvcs.CreateSupplierGoodInput{
		SupplierID:              req.SupplierID,
		Name:                    req.Name,
		MainCategory:            req.MainCategory,
		SubCategory:             req.SubCategory,
		MeasurementUnit:         req.MeasurementUnit,
		TotalQuantityPerUnit:    req.TotalQuantityPerUnit,
		WholesalePrice:          req.WholesalePrice,
		ParLevel:                req.ParLevel,
		MinimumQuantityRequired: req.MinimumQuantityRequired,
		Allergens:               req.Allergens,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toSupplierGoodResponse(good))
}

// GetByID returns one supplier good.
//
//	@Summary	Get supplier good
//	@Tags		supplier-goods
//	@Produce	json
//	@Param		id			path		string	true	"Supplier good ID"
//	@Param		business_id	query		string	true	"Business ID"
//	@Success	200			{object}	SupplierGoodResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/supplier-goods/{id} [get]
func (h *SupplierGoodHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}

	good, err := h.svc.SupplierGood.GetByID(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSupplierGoodResponse(good))
}

// List returns the business's supplier goods.
//
//	@Summary	List supplier goods
//	@Tags		supplier-goods
//	@Produce	json
//	@Param		business_id	query	string	true	"Business ID"
//	@Param		limit		query	int		false	"Page size"
//	@Param		offset		query	int		false	"Page offset"
//	@Success	200
//	@Router		/supplier-goods [get]
func (h *SupplierGoodHandlers) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessFromQuery(w, r)
	if !ok {
		return
	}

	goods, total, err := h.svc.SupplierGood.List(r.Context(), businessID, pagination(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	items := make([]SupplierGoodResponse, len(goods))
	for i, g := range goods {
		items[i] = toSupplierGoodResponse(g)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

// UpdateSupplierGoodRequest is the request body for PATCH /supplier-goods/{id}.
type UpdateSupplierGoodRequest struct {
	Name                    string          `json:"name" validate:"omitempty,min=1,max=255"`
	MainCategory            string          `json:"main_category"`
	SubCategory             string          `json:"sub_category"`
	MeasurementUnit         string          `json:"measurement_unit"`
	TotalQuantityPerUnit    decimal.Decimal `json:"total_quantity_per_unit"`
	WholesalePrice          decimal.Decimal `json:"wholesale_price"`
	ParLevel                decimal.Decimal `json:"par_level"`
	MinimumQuantityRequired decimal.Decimal `json:"minimum_quantity_required"`
	Allergens               []string        `json:"allergens"`
	CurrentlyInUse          *bool           `json:"currently_in_use"`
} // @name UpdateSupplierGoodRequest

// Update applies a partial update to a supplier good.
//
//	@Summary		Update supplier good
//	@Description	Omitted fields keep their stored values; pricing changes recompute the unit price
//	@Tags			supplier-goods
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string						true	"Supplier good ID"
//	@Param			business_id	query		string						true	"Business ID"
//	@Param			request		body		UpdateSupplierGoodRequest	true	"Supplier good update request"
//	@Success		200			{object}	SupplierGoodResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Router			/supplier-goods/{id} [patch]
func (h *SupplierGoodHandlers) Update(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateSupplierGoodRequest](w, r)
	if !ok {
		return
	}

	good, err := h.svc.SupplierGood.Update(r.Context(), businessID, id, appsvcs.UpdateSupplierGoodInput{
		Name:                    req.Name,
		MainCategory:            req.MainCategory,
		SubCategory:             req.SubCategory,
		MeasurementUnit:         req.MeasurementUnit,
		TotalQuantityPerUnit:    req.TotalQuantityPerUnit,
		WholesalePrice:          req.WholesalePrice,
		ParLevel:                req.ParLevel,
		MinimumQuantityRequired: req.MinimumQuantityRequired,
		Allergens:               req.Allergens,
		CurrentlyInUse:          req.CurrentlyInUse,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSupplierGoodResponse(good))
}

// Delete removes a supplier good.
//
//	@Summary		Delete supplier good
//	@Description	Rejected while ingredient lists or purchase lines still reference the good
//	@Tags			supplier-goods
//	@Produce		json
//	@Param			id			path	string	true	"Supplier good ID"
//	@Param			business_id	query	string	true	"Business ID"
//	@Success		200
//	@Failure		409	{object}	ErrorResponse
//	@Router			/supplier-goods/{id} [delete]
func (h *SupplierGoodHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	if err := h.svc.SupplierGood.Delete(r.Context(), businessID, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "supplier good deleted"})
}

// businessAndID extracts the business scope from the query string and the
// record id from the URL path.
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
