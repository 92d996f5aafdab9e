package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jpsm83/restaurant-pos/pkg/errhttp"
	"github.com/jpsm83/restaurant-pos/pkg/httpx"
	pkgvalidator "github.com/jpsm83/restaurant-pos/pkg/validator"
	appsvcs "github.com/jpsm83/restaurant-pos/services/catalog/application/services"
	"github.com/jpsm83/restaurant-pos/services/catalog/domain/models"
)

// IngredientRequest is one ingredient line of a composition request.
// The cost of the required quantity is derived server-side and rejected
// as input by omission.
type IngredientRequest struct {
	SupplierGoodID   uuid.UUID       `json:"supplier_good_id" validate:"required"`
	MeasurementUnit  string          `json:"measurement_unit" validate:"required"`
	RequiredQuantity decimal.Decimal `json:"required_quantity" validate:"required"`
}

// CompositionRequest carries the requested composition. Exactly one of the
// two fields may be set; the service rejects both-or-neither.
type CompositionRequest struct {
	Ingredients []IngredientRequest `json:"ingredients" validate:"omitempty,dive"`
	SetMenu     []uuid.UUID         `json:"set_menu" validate:"omitempty,min=1"`
}

// CreateBusinessGoodRequest is the request body for POST /business-goods.
type CreateBusinessGoodRequest struct {
	BusinessID   uuid.UUID          `json:"business_id" validate:"required"`
	Name         string             `json:"name" validate:"required,min=1,max=255"`
	Keyword      string             `json:"keyword" validate:"required"`
	MainCategory string             `json:"main_category" validate:"required"`
	SubCategory  string             `json:"sub_category"`
	SellingPrice decimal.Decimal    `json:"selling_price" validate:"required"`
	OnMenu       bool               `json:"on_menu"`
	Available    bool               `json:"available"`
	Description  string             `json:"description"`
	Composition  CompositionRequest `json:"composition" validate:"required"`
} // @name CreateBusinessGoodRequest

// IngredientResponse mirrors a stored ingredient line, including the derived
// per-line cost.
type IngredientResponse struct {
	SupplierGoodID         uuid.UUID       `json:"supplier_good_id"`
	MeasurementUnit        string          `json:"measurement_unit"`
	RequiredQuantity       decimal.Decimal `json:"required_quantity"`
	CostOfRequiredQuantity decimal.Decimal `json:"cost_of_required_quantity"`
}

// BusinessGoodResponse is the wire shape of a business good.
type BusinessGoodResponse struct {
	ID           uuid.UUID            `json:"id"`
	BusinessID   uuid.UUID            `json:"business_id"`
	Name         string               `json:"name"`
	Keyword      string               `json:"keyword"`
	MainCategory string               `json:"main_category"`
	SubCategory  string               `json:"sub_category,omitempty"`
	SellingPrice decimal.Decimal      `json:"selling_price"`
	CostPrice    decimal.Decimal      `json:"cost_price"`
	Allergens    []string             `json:"allergens"`
	OnMenu       bool                 `json:"on_menu"`
	Available    bool                 `json:"available"`
	Description  string               `json:"description,omitempty"`
	Ingredients  []IngredientResponse `json:"ingredients,omitempty"`
	SetMenu      []uuid.UUID          `json:"set_menu,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
} // @name BusinessGoodResponse

func toBusinessGoodResponse(g *models.BusinessGood) BusinessGoodResponse {
	resp := BusinessGoodResponse{
		ID:           g.ID,
		BusinessID:   g.BusinessID,
		Name:         g.Name,
		Keyword:      g.Keyword,
		MainCategory: g.MainCategory,
		SubCategory:  g.SubCategory,
		SellingPrice: g.SellingPrice,
		CostPrice:    g.CostPrice,
		Allergens:    g.Allergens,
		OnMenu:       g.OnMenu,
		Available:    g.Available,
		Description:  g.Description,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
	switch g.Composition.Mode() {
	case models.CompositionIngredients:
		lines := g.Composition.Ingredients()
		resp.Ingredients = make([]IngredientResponse, len(lines))
		for i, l := range lines {
			resp.Ingredients[i] = IngredientResponse{
				SupplierGoodID:         l.SupplierGoodID,
				MeasurementUnit:        l.MeasurementUnit,
				RequiredQuantity:       l.RequiredQuantity,
				CostOfRequiredQuantity: l.CostOfRequiredQuantity,
			}
		}
	case models.CompositionSetMenu:
		resp.SetMenu = g.Composition.SetMenu()
	}
	return resp
}

// BusinessGoodHandlers bundles the business-good endpoints.
type BusinessGoodHandlers struct {
	svc *appsvcs.Services
}

// NewBusinessGoodHandlers returns handlers backed by the given services.
func NewBusinessGoodHandlers(svc *appsvcs.Services) *BusinessGoodHandlers {
	return &BusinessGoodHandlers{svc: svc}
}

func toCompositionInput(req CompositionRequest) appsvcs.CompositionInput {
	in := appsvcs.CompositionInput{SetMenu: req.SetMenu}
	if len(req.Ingredients) > 0 {
		in.Ingredients = make([]appsvcs.IngredientInput, len(req.Ingredients))
		for i, ing := range req.Ingredients {
			in.Ingredients[i] = appsvcs.IngredientInput{
				SupplierGoodID:   ing.SupplierGoodID,
				MeasurementUnit:  ing.MeasurementUnit,
				RequiredQuantity: ing.RequiredQuantity,
			}
		}
	}
	return in
}

// Create creates a business good. Cost price and allergens are not accepted
// from the client; they are derived from the composition.
//
//	@Summary		Create business good
//	@Description	Creates a sellable good with derived cost price and allergens
//	@Tags			business-goods
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateBusinessGoodRequest	true	"Business good creation request"
//	@Success		201		{object}	BusinessGoodResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/business-goods [post]
func (h *BusinessGoodHandlers) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateBusinessGoodRequest](w, r)
	if !ok {
		return
	}

	good, err := h.svc.BusinessGood.Create(r.Context(), req.BusinessID, appsvcs.CreateBusinessGoodInput{
		Name:         req.Name,
		Keyword:      req.Keyword,
		MainCategory: req.MainCategory,
		SubCategory:  req.SubCategory,
		SellingPrice: req.SellingPrice,
		OnMenu:       req.OnMenu,
		Available:    req.Available,
		Description:  req.Description,
		Composition:  toCompositionInput(req.Composition),
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toBusinessGoodResponse(good))
}

// GetByID returns one business good with its composition.
//
//	@Summary	Get business good
//	@Tags		business-goods
//	@Produce	json
//	@Param		id			path		string	true	"Business good ID"
//	@Param		business_id	query		string	true	"Business ID"
//	@Success	200			{object}	BusinessGoodResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/business-goods/{id} [get]
func (h *BusinessGoodHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	good, err := h.svc.BusinessGood.GetByID(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBusinessGoodResponse(good))
}

// MenuItem serves the cached menu projection of a business good.
//
//	@Summary	Get menu projection
//	@Tags		business-goods
//	@Produce	json
//	@Param		id			path	string	true	"Business good ID"
//	@Param		business_id	query	string	true	"Business ID"
//	@Success	200
//	@Failure	404	{object}	ErrorResponse
//	@Router		/business-goods/{id}/menu [get]
func (h *BusinessGoodHandlers) MenuItem(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.BusinessGood.MenuItem(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

// List returns the business's goods.
//
//	@Summary	List business goods
//	@Tags		business-goods
//	@Produce	json
//	@Param		business_id	query	string	true	"Business ID"
//	@Param		limit		query	int		false	"Page size"
//	@Param		offset		query	int		false	"Page offset"
//	@Success	200
//	@Router		/business-goods [get]
func (h *BusinessGoodHandlers) List(w http.ResponseWriter, r *http.Request) {
	businessID, ok := businessFromQuery(w, r)
	if !ok {
		return
	}
	goods, total, err := h.svc.BusinessGood.List(r.Context(), businessID, pagination(r))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	items := make([]BusinessGoodResponse, len(goods))
	for i, g := range goods {
		items[i] = toBusinessGoodResponse(g)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total})
}

// UpdateBusinessGoodRequest is the request body for PATCH /business-goods/{id}.
// Omitting the composition keeps the stored one and its derived values.
type UpdateBusinessGoodRequest struct {
	Name         string              `json:"name" validate:"omitempty,min=1,max=255"`
	Keyword      string              `json:"keyword"`
	MainCategory string              `json:"main_category"`
	SubCategory  string              `json:"sub_category"`
	SellingPrice decimal.Decimal     `json:"selling_price"`
	OnMenu       *bool               `json:"on_menu"`
	Available    *bool               `json:"available"`
	Description  string              `json:"description"`
	Composition  *CompositionRequest `json:"composition"`
} // @name UpdateBusinessGoodRequest

// Update applies a partial update to a business good.
//
//	@Summary		Update business good
//	@Description	Omitted fields keep their stored values; a new composition re-derives cost and allergens
//	@Tags			business-goods
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string						true	"Business good ID"
//	@Param			business_id	query		string						true	"Business ID"
//	@Param			request		body		UpdateBusinessGoodRequest	true	"Business good update request"
//	@Success		200			{object}	BusinessGoodResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		422			{object}	ErrorResponse
//	@Router			/business-goods/{id} [patch]
func (h *BusinessGoodHandlers) Update(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[UpdateBusinessGoodRequest](w, r)
	if !ok {
		return
	}

	in := appsvcs.UpdateBusinessGoodInput{
		Name:         req.Name,
		Keyword:      req.Keyword,
		MainCategory: req.MainCategory,
		SubCategory:  req.SubCategory,
		SellingPrice: req.SellingPrice,
		OnMenu:       req.OnMenu,
		Available:    req.Available,
		Description:  req.Description,
	}
	if req.Composition != nil {
		comp := toCompositionInput(*req.Composition)
		in.Composition = &comp
	}

	good, err := h.svc.BusinessGood.Update(r.Context(), businessID, id, in)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBusinessGoodResponse(good))
}

// Delete removes a business good.
//
//	@Summary		Delete business good
//	@Description	Rejected while open orders or set menus still reference the good
//	@Tags			business-goods
//	@Produce		json
//	@Param			id			path	string	true	"Business good ID"
//	@Param			business_id	query	string	true	"Business ID"
//	@Success		200
//	@Failure		409	{object}	ErrorResponse
//	@Router			/business-goods/{id} [delete]
func (h *BusinessGoodHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	if err := h.svc.BusinessGood.Delete(r.Context(), businessID, id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "business good deleted"})
}
