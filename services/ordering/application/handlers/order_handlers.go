package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jpsm83/restaurant-pos/pkg/errhttp"
	"github.com/jpsm83/restaurant-pos/pkg/httpx"
	pkgvalidator "github.com/jpsm83/restaurant-pos/pkg/validator"
	appsvcs "github.com/jpsm83/restaurant-pos/services/ordering/application/services"
	"github.com/jpsm83/restaurant-pos/services/ordering/domain/models"
)

// CreateOrderRequest is the request body for POST /orders. One request is one
// line item; business_good_ids carries the base good plus its add-ons.
type CreateOrderRequest struct {
	BusinessID         uuid.UUID        `json:"business_id" validate:"required"`
	SalesInstanceID    uuid.UUID        `json:"sales_instance_id" validate:"required"`
	UserID             uuid.UUID        `json:"user_id" validate:"required"`
	UserRole           string           `json:"user_role" validate:"required"`
	BusinessGoodIDs    []uuid.UUID      `json:"business_good_ids" validate:"required,min=1"`
	PromotionApplied   string           `json:"promotion_applied"`
	DiscountPercentage decimal.Decimal  `json:"discount_percentage"`
	NetPrice           *decimal.Decimal `json:"net_price"`
	Comments           string           `json:"comments" validate:"omitempty,max=1000"`
} // @name CreateOrderRequest

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"sales instance is closed"`
} // @name ErrorResponse

// OrderResponse is the wire shape of an order.
type OrderResponse struct {
	ID                 uuid.UUID                      `json:"id"`
	BusinessID         uuid.UUID                      `json:"business_id"`
	SalesInstanceID    uuid.UUID                      `json:"sales_instance_id"`
	UserID             uuid.UUID                      `json:"user_id"`
	BusinessGoodIDs    []uuid.UUID                    `json:"business_good_ids"`
	OrderStatus        models.OrderStatus             `json:"order_status"`
	BillingStatus      models.BillingStatus           `json:"billing_status"`
	OrderPrice         decimal.Decimal                `json:"order_price"`
	OrderNetPrice      decimal.Decimal                `json:"order_net_price"`
	OrderCostPrice     decimal.Decimal                `json:"order_cost_price"`
	Allergens          []string                       `json:"allergens"`
	PromotionApplied   string                         `json:"promotion_applied,omitempty"`
	DiscountPercentage decimal.Decimal                `json:"discount_percentage"`
	Comments           string                         `json:"comments,omitempty"`
	StockMutation      *appsvcs.StockMutationOutcome  `json:"stock_mutation,omitempty"`
	CreatedAt          time.Time                      `json:"created_at"`
	UpdatedAt          time.Time                      `json:"updated_at"`
} // @name OrderResponse

func toOrderResponse(o *models.Order) OrderResponse {
	return OrderResponse{
		ID:                 o.ID,
		BusinessID:         o.BusinessID,
		SalesInstanceID:    o.SalesInstanceID,
		UserID:             o.UserID,
		BusinessGoodIDs:    o.BusinessGoodIDs,
		OrderStatus:        o.OrderStatus,
		BillingStatus:      o.BillingStatus,
		OrderPrice:         o.OrderPrice,
		OrderNetPrice:      o.OrderNetPrice,
		OrderCostPrice:     o.OrderCostPrice,
		Allergens:          o.Allergens,
		PromotionApplied:   o.PromotionApplied,
		DiscountPercentage: o.DiscountPercentage,
		Comments:           o.Comments,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

// OrderHandlers bundles the order endpoints.
type OrderHandlers struct {
	svc *appsvcs.Services
}

// NewOrderHandlers returns handlers backed by the given services.
func NewOrderHandlers(svc *appsvcs.Services) *OrderHandlers {
	return &OrderHandlers{svc: svc}
}

// Create creates an order line. The stock mutation outcome rides the 201; a
// failed mutation never fails the request.
//
//	@Summary		Create order
//	@Description	Creates one order line, derives pricing and allergens, and consumes ingredient stock
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateOrderRequest	true	"Order creation request"
//	@Success		201		{object}	OrderResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/orders [post]
func (h *OrderHandlers) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateOrderRequest](w, r)
	if !ok {
		return
	}

	result, err := h.svc.Order.Create(r.Context(), req.BusinessID, appsvcs.CreateOrderInput{
		SalesInstanceID:    req.SalesInstanceID,
		UserID:             req.UserID,
		UserRole:           req.UserRole,
		BusinessGoodIDs:    req.BusinessGoodIDs,
		PromotionApplied:   req.PromotionApplied,
		DiscountPercentage: req.DiscountPercentage,
		ClientNetPrice:     req.NetPrice,
		Comments:           req.Comments,
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	resp := toOrderResponse(result.Order)
	resp.StockMutation = &result.StockMutation
	httpx.JSON(w, http.StatusCreated, resp)
}

// GetByID returns one order.
//
//	@Summary	Get order
//	@Tags		orders
//	@Produce	json
//	@Param		id			path		string	true	"Order ID"
//	@Param		business_id	query		string	true	"Business ID"
//	@Success	200			{object}	OrderResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/orders/{id} [get]
func (h *OrderHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	order, err := h.svc.Order.GetByID(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}

// Void cancels an order. The reversing stock mutation outcome rides the
// response.
//
//	@Summary		Void order
//	@Description	Cancels an open-billing order and flows its consumed quantities back
//	@Tags			orders
//	@Produce		json
//	@Param			id			path		string	true	"Order ID"
//	@Param			business_id	query		string	true	"Business ID"
//	@Success		200			{object}	OrderResponse
//	@Failure		409			{object}	ErrorResponse
//	@Router			/orders/{id}/void [post]
func (h *OrderHandlers) Void(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	result, err := h.svc.Order.Void(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	resp := toOrderResponse(result.Order)
	resp.StockMutation = &result.StockMutation
	httpx.JSON(w, http.StatusOK, resp)
}

// MarkPaid settles an order's billing.
//
//	@Summary	Pay order
//	@Tags		orders
//	@Produce	json
//	@Param		id			path		string	true	"Order ID"
//	@Param		business_id	query		string	true	"Business ID"
//	@Success	200			{object}	OrderResponse
//	@Failure	404			{object}	ErrorResponse
//	@Router		/orders/{id}/pay [post]
func (h *OrderHandlers) MarkPaid(w http.ResponseWriter, r *http.Request) {
	businessID, id, ok := businessAndID(w, r)
	if !ok {
		return
	}
	order, err := h.svc.Order.MarkPaid(r.Context(), businessID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toOrderResponse(order))
}
