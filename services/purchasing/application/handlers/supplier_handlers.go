package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jpsm83/restaurant-pos/pkg/errhttp"
	"github.com/jpsm83/restaurant-pos/pkg/httpx"
	pkgvalidator "github.com/jpsm83/restaurant-pos/pkg/validator"
	appsvcs "github.com/jpsm83/restaurant-pos/services/purchasing/application/services"
	"github.com/jpsm83/restaurant-pos/services/purchasing/domain/models"
)

// CreateSupplierRequest is the request body for POST /suppliers.
type CreateSupplierRequest struct {
	BusinessID uuid.UUID `json:"business_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	TradeName  string    `json:"trade_name" validate:"required,min=1,max=255" example:"Metro Cash and Carry"`
} // @name CreateSupplierRequest

// SupplierResponse is the wire shape of a supplier.
type SupplierResponse struct {
	ID              uuid.UUID `json:"id"`
	BusinessID      uuid.UUID `json:"business_id"`
	TradeName       string    `json:"trade_name"`
	OneTimePurchase bool      `json:"one_time_purchase"`
	CreatedAt       time.Time `json:"created_at"`
} // @name SupplierResponse

func toSupplierResponse(s *models.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:              s.ID,
		BusinessID:      s.BusinessID,
		TradeName:       s.TradeName,
		OneTimePurchase: s.OneTimePurchase,
		CreatedAt:       s.CreatedAt,
	}
}

// SupplierHandlers bundles the supplier endpoints.
type SupplierHandlers struct {
	svc *appsvcs.Services
}

// NewSupplierHandlers returns handlers backed by the given services.
func NewSupplierHandlers(svc *appsvcs.Services) *SupplierHandlers {
	return &SupplierHandlers{svc: svc}
}

// Create registers a supplier.
//
//	@Summary	Create supplier
//	@Tags		suppliers
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateSupplierRequest	true	"Supplier creation request"
//	@Success	201		{object}	SupplierResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/suppliers [post]
func (h *SupplierHandlers) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateSupplierRequest](w, r)
	if !ok {
		return
	}
	supplier, err := h.svc.Supplier.Create(r.Context(), req.BusinessID, req.TradeName)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toSupplierResponse(supplier))
}

// GetByID returns one supplier.
//
//	@Summary	Get supplier
//	@Tags		suppliers
//	@Produce	json
//	@Param		id			path		string	true	"Supplier ID"
//	@Param		business_id	query		string	true	"Business ID"
//	@Success	200			{object}	SupplierResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/suppliers/{id} [get]
func (h *SupplierHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	supplier, err := h.svc.Supplier.GetByID(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSupplierResponse(supplier))
}

// List returns the business's suppliers.
//
//	@Summary	List suppliers
//	@Tags		suppliers
//	@Produce	json
//	@Param		business_id	query	string	true	"Business ID"
//	@Param		limit		query	int		false	"Page size"
//	@Param		offset		query	int		false	"Page offset"
//	@Success	200
//	@Router		/suppliers [get]
func (h *SupplierHandlers) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessFromQuery(w, r)
	if !ok {
		return
	}
	suppliers, total, err := h.svc.Supplier.List(r.Context(), businessID, pagination(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	items := make([]SupplierResponse, len(suppliers))
	for i, s := range suppliers {
		items[i] = toSupplierResponse(s)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}
