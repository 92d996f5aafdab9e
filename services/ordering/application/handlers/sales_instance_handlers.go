package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jpsm83/restaurant-pos/pkg/errhttp"
	"github.com/jpsm83/restaurant-pos/pkg/httpx"
	pkgvalidator "github.com/jpsm83/restaurant-pos/pkg/validator"
	appsvcs "github.com/jpsm83/restaurant-pos/services/ordering/application/services"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/models"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/repositories"
)

// OpenSalesInstanceRequest is the request body for POST /sales-instances.
type OpenSalesInstanceRequest struct {
	BusinessID        uuid.UUID `json:"business_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Reference         string    `json:"reference" validate:"required,min=1,max=255" example:"Table 5"`
	ResponsibleUserID uuid.UUID `json:"responsible_user_id" validate:"required"`
} // @name OpenSalesInstanceRequest

// SalesInstanceResponse is the wire shape of a sales instance.
type SalesInstanceResponse struct {
	ID                uuid.UUID                  `json:"id"`
	BusinessID        uuid.UUID                  `json:"business_id"`
	Reference         string                     `json:"reference"`
	Status            models.SalesInstanceStatus `json:"status"`
	ResponsibleUserID uuid.UUID                  `json:"responsible_user_id"`
	OpenedAt          time.Time                  `json:"opened_at"`
	ClosedAt          *time.Time                 `json:"closed_at,omitempty"`
} // @name SalesInstanceResponse

func toSalesInstanceResponse(s *models.SalesInstance) SalesInstanceResponse {
	return SalesInstanceResponse{
		ID:                s.ID,
		BusinessID:        s.BusinessID,
		Reference:         s.Reference,
		Status:            s.Status,
		ResponsibleUserID: s.ResponsibleUserID,
		OpenedAt:          s.OpenedAt,
		ClosedAt:          s.ClosedAt,
	}
}

// SalesInstanceHandlers bundles the sales-instance endpoints.
type SalesInstanceHandlers struct {
	svc *appsvcs.Services
}

// NewSalesInstanceHandlers returns handlers backed by the given services.
func NewSalesInstanceHandlers(svc *appsvcs.Services) *SalesInstanceHandlers {
	return &SalesInstanceHandlers{svc: svc}
}

// Open opens a sales instance.
//
//	@Summary	Open sales instance
//	@Tags		sales-instances
//	@Accept		json
//	@Produce	json
//	@Param		request	body		OpenSalesInstanceRequest	true	"Sales instance open request"
//	@Success	201		{object}	SalesInstanceResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/sales-instances [post]
func (h *SalesInstanceHandlers) Open(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[OpenSalesInstanceRequest](w, r)
	if !ok {
		return
	}
	instance, err := h.svc.SalesInstance.Open(r.Context(), req.BusinessID, req.Reference, req.ResponsibleUserID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toSalesInstanceResponse(instance))
}

// GetByID returns one sales instance.
//
//	@Summary	Get sales instance
//	@Tags		sales-instances
//	@Produce	json
//	@Param		id			path		string	true	"Sales instance ID"
//	@Param		business_id	query		string	true	"Business ID"
//	@Success	200			{object}	SalesInstanceResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/sales-instances/{id} [get]
func (h *SalesInstanceHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	instance, err := h.svc.SalesInstance.GetByID(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSalesInstanceResponse(instance))
}

// List returns the business's sales instances.
//
//	@Summary	List sales instances
//	@Tags		sales-instances
//	@Produce	json
//	@Param		business_id	query	string	true	"Business ID"
//	@Param		limit		query	int		false	"Page size"
//	@Param		offset		query	int		false	"Page offset"
//	@Success	200
//	@Router		/sales-instances [get]
func (h *SalesInstanceHandlers) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessFromQuery(w, r)
	if !ok {
		return
	}
	instances, total, err := h.svc.SalesInstance.List(r.Context(), businessID, pagination(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	items := make([]SalesInstanceResponse, len(instances))
	for i, instance := range instances {
		items[i] = toSalesInstanceResponse(instance)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

// Close settles a sales instance.
//
//	@Summary		Close sales instance
//	@Description	Rejected while any of the instance's orders still bills open
//	@Tags			sales-instances
//	@Produce		json
//	@Param			id			path		string	true	"Sales instance ID"
//	@Param			business_id	query		string	true	"Business ID"
//	@Success		200			{object}	SalesInstanceResponse
//	@Failure		409			{object}	ErrorResponse
//	@Router			/sales-instances/{id}/close [post]
func (h *SalesInstanceHandlers) Close(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	instance, err := h.svc.SalesInstance.Close(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toSalesInstanceResponse(instance))
}

// Orders returns the instance's orders oldest-first.
//
//	@Summary	List sales instance orders
//	@Tags		sales-instances
//	@Produce	json
//	@Param		id			path	string	true	"Sales instance ID"
//	@Param		business_id	query	string	true	"Business ID"
//	@Success	200
//	@Router		/sales-instances/{id}/orders [get]
func (h *SalesInstanceHandlers) Orders(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	orders, err := h.svc.Order.ListBySalesInstance(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	items := make([]OrderResponse, len(orders))
	for i, o := range orders {
		items[i] = toOrderResponse(o)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
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
