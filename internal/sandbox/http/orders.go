package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

type OrderHandler struct {
	OrderService *service.OrderService
}

// HandleCreate godoc
//
//	@Summary		Create an order from the cart
//	@Description	Reserves stock, empties the cart and opens a payment awaiting proof.
//	@Description	While another order awaits payment this answers 409 with that order's number.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storesdk.CreateOrderRequest	true	"Address and payment method"
//	@Success		201		{object}	storesdk.OrderCreated
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		409		{object}	storesdk.ConflictResponse	"An order is awaiting payment"
//	@Security		BearerAuth
//	@Router			/api/orders/order/create/ [post].
func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req storesdk.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	o, err := h.OrderService.CreateFromCart(r.Context(), uid, req.AddressID, req.PaymentMethod)
	writeCreated(w, r, o, err)
}

// HandleDirectPurchase godoc
//
//	@Summary		Buy one product now
//	@Description	Creates an order for a single product without touching the cart.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storesdk.DirectPurchaseRequest	true	"Product, quantity, address and payment method"
//	@Success		201		{object}	storesdk.OrderCreated
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		409		{object}	storesdk.ConflictResponse	"An order is awaiting payment"
//	@Security		BearerAuth
//	@Router			/api/orders/order/direct-purchase/ [post].
func (h *OrderHandler) HandleDirectPurchase(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req storesdk.DirectPurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	o, err := h.OrderService.DirectPurchase(r.Context(), uid, req.ProductID, req.Quantity, req.AddressID, req.PaymentMethod)
	writeCreated(w, r, o, err)
}

func writeCreated(w http.ResponseWriter, r *http.Request, o domain.Order, err error) {
	var pending *service.PendingOrderError
	if errors.As(err, &pending) {
		httpx.WriteJSON(w, http.StatusConflict, storesdk.ConflictResponse{
			ID:    pending.OrderNumber,
			Error: "You already have an order awaiting payment. Complete or cancel it first.",
		})
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	order := toOrder(o)
	httpx.WriteJSON(w, http.StatusCreated, storesdk.OrderCreated{
		Message: "Order created successfully",
		Order:   order,
		Payment: order.Payment,
	})
}

// HandleList godoc
//
//	@Summary		List my orders
//	@Tags			Orders
//	@Produce		json
//	@Success		200	{array}	storesdk.OrderSummary
//	@Security		BearerAuth
//	@Router			/api/orders/order/ [get].
func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	orders, err := h.OrderService.List(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]storesdk.OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderSummary(o))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Order detail
//	@Tags			Orders
//	@Produce		json
//	@Param			number	path		string	true	"Order number"
//	@Success		200		{object}	storesdk.Order
//	@Failure		404		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/orders/order/{number}/ [get].
func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	o, err := h.OrderService.Get(r.Context(), uid, r.PathValue("number"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrder(o))
}

// HandleStatus godoc
//
//	@Summary		Order status
//	@Tags			Orders
//	@Produce		json
//	@Param			number	path		string	true	"Order number"
//	@Success		200		{object}	storesdk.OrderStatus
//	@Failure		404		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/orders/order/{number}/status/ [get].
func (h *OrderHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	o, err := h.OrderService.Get(r.Context(), uid, r.PathValue("number"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, storesdk.OrderStatus{
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		StatusDisplay: domain.StatusDisplay(o.Status),
		LastUpdated:   o.UpdatedAt,
	})
}

// HandleCancel godoc
//
//	@Summary		Cancel an unpaid order
//	@Description	Only orders awaiting payment can be cancelled. Stock is returned.
//	@Tags			Orders
//	@Produce		json
//	@Param			number	path		string	true	"Order number"
//	@Success		200		{object}	storesdk.OrderCreated
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		404		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/orders/order/{number}/cancel/ [post].
func (h *OrderHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	o, err := h.OrderService.Cancel(r.Context(), uid, r.PathValue("number"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, storesdk.OrderCreated{
		Message: "Order cancelled",
		Order:   toOrder(o),
	})
}

// HandlePaymentMethods godoc
//
//	@Summary		Accepted payment methods
//	@Tags			Orders
//	@Produce		json
//	@Success		200	{array}	storesdk.PaymentMethod
//	@Security		BearerAuth
//	@Router			/api/orders/payment/methods/ [get].
func (h *OrderHandler) HandlePaymentMethods(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, toPaymentMethods(service.PaymentMethods))
}
