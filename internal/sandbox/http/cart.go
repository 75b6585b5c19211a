package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/sandbox/domain"
	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

// CartHandler answers every cart mutation with the whole updated cart.
type CartHandler struct {
	CartService *service.CartService
}

// HandleGet godoc
//
//	@Summary		Current cart
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	storesdk.Cart
//	@Security		BearerAuth
//	@Router			/api/orders/cart/ [get].
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.CartService.Get(r.Context(), uid))
}

// HandleAdd godoc
//
//	@Summary		Add to cart
//	@Description	Adds quantity to the product's line, creating it when missing.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storesdk.AddToCartRequest	true	"Product and quantity"
//	@Success		200		{object}	storesdk.Cart
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		404		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/orders/cart/add/ [post].
func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req storesdk.AddToCartRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return
	}
	h.respond(w, r)(h.CartService.Add(r.Context(), uid, req.ProductID, req.Quantity))
}

// HandleUpdate godoc
//
//	@Summary		Set line quantity
//	@Description	A quantity of zero or less removes the line.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Cart item id"
//	@Param			request	body		storesdk.UpdateCartItemRequest	true	"Quantity"
//	@Success		200		{object}	storesdk.Cart
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		404		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/orders/cart/update/{id}/ [put].
func (h *CartHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req storesdk.UpdateCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.respond(w, r)(h.CartService.Update(r.Context(), uid, id, req.Quantity))
}

// HandleRemove godoc
//
//	@Summary		Remove a line
//	@Tags			Cart
//	@Produce		json
//	@Param			id	path		int	true	"Cart item id"
//	@Success		200	{object}	storesdk.Cart
//	@Failure		404	{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/orders/cart/remove/{id}/ [delete].
func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.respond(w, r)(h.CartService.Remove(r.Context(), uid, id))
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request) func(domain.Cart, error) {
	return func(c domain.Cart, err error) {
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toCart(c))
	}
}
