package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

type AddressHandler struct {
	AddressService *service.AddressService
}

// HandleList godoc
//
//	@Summary		List addresses
//	@Tags			Addresses
//	@Produce		json
//	@Success		200	{array}	storesdk.Address
//	@Security		BearerAuth
//	@Router			/api/profile/addresses/ [get].
func (h *AddressHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	addrs, err := h.AddressService.List(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]storesdk.Address, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, toAddress(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate godoc
//
//	@Summary		Add an address
//	@Tags			Addresses
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storesdk.Address	true	"Address"
//	@Success		201		{object}	storesdk.Address
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/profile/addresses/ [post].
func (h *AddressHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	req, ok := decodeAddress(w, r)
	if !ok {
		return
	}

	a, err := h.AddressService.Create(r.Context(), fromAddress(uid, req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toAddress(a))
}

// HandleGet godoc
//
//	@Summary		Address detail
//	@Tags			Addresses
//	@Produce		json
//	@Param			id	path		int	true	"Address id"
//	@Success		200	{object}	storesdk.Address
//	@Failure		404	{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/profile/addresses/{id}/ [get].
func (h *AddressHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.AddressService.Get(r.Context(), uid, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAddress(a))
}

// HandleUpdate godoc
//
//	@Summary		Replace an address
//	@Tags			Addresses
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Address id"
//	@Param			request	body		storesdk.Address	true	"Address"
//	@Success		200		{object}	storesdk.Address
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		404		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/profile/addresses/{id}/ [put].
func (h *AddressHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodeAddress(w, r)
	if !ok {
		return
	}
	req.ID = id

	a, err := h.AddressService.Update(r.Context(), fromAddress(uid, req))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAddress(a))
}

// HandleDelete godoc
//
//	@Summary		Delete an address
//	@Tags			Addresses
//	@Param			id	path	int	true	"Address id"
//	@Success		204
//	@Failure		404	{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/profile/addresses/{id}/ [delete].
func (h *AddressHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.AddressService.Delete(r.Context(), uid, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeAddress(w http.ResponseWriter, r *http.Request) (storesdk.Address, bool) {
	var req storesdk.Address
	if !decodeJSON(w, r, &req) {
		return storesdk.Address{}, false
	}
	if req.AddressType == "" {
		req.AddressType = storesdk.AddressHome
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return storesdk.Address{}, false
	}
	return req, true
}
