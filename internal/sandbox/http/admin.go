package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// AdminHandler serves the order management routes. Every route requires
// the admin claim.
type AdminHandler struct {
	AdminService *service.AdminService
}

// HandleList godoc
//
//	@Summary		List all orders
//	@Tags			Admin
//	@Produce		json
//	@Param			status	query	string	false	"Filter by status"
//	@Success		200		{array}	storesdk.Order
//	@Failure		403		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/admin/orders/manage/ [get].
func (h *AdminHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.AdminService.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrders(orders))
}

// HandlePending godoc
//
//	@Summary		Orders awaiting payment review
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{array}		storesdk.Order
//	@Failure		403	{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/admin/orders/manage/pending/ [get].
func (h *AdminHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	orders, err := h.AdminService.Pending(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrders(orders))
}

// HandleGet godoc
//
//	@Summary		Order detail
//	@Tags			Admin
//	@Produce		json
//	@Param			number	path		string	true	"Order number"
//	@Success		200		{object}	storesdk.Order
//	@Failure		404		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/admin/orders/manage/{number}/ [get].
func (h *AdminHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.AdminService.Get(r.Context(), r.PathValue("number"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrder(o))
}

// HandleUpdateStatus godoc
//
//	@Summary		Change order status
//	@Description	Approving a submitted payment confirms the order; cancelling returns the stock.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			number	path		string							true	"Order number"
//	@Param			request	body		storesdk.UpdateOrderStatusRequest	true	"New status"
//	@Success		200		{object}	storesdk.Order
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		404		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/admin/orders/manage/{number}/status/ [patch].
func (h *AdminHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req storesdk.UpdateOrderStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}

	o, err := h.AdminService.UpdateStatus(r.Context(), r.PathValue("number"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrder(o))
}
