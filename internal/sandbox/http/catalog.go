package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/storefront/internal/sandbox/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/storesdk"
)

type CatalogHandler struct {
	CatalogService *service.CatalogService
}

// HandleListProducts godoc
//
//	@Summary		List products
//	@Tags			Catalog
//	@Produce		json
//	@Param			category	query	int	false	"Category id"
//	@Success		200			{array}	storesdk.Product
//	@Router			/api/products/ [get].
func (h *CatalogHandler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	var category *int64
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeFieldErrors(w, map[string]string{"category": "category must be a number"})
			return
		}
		category = &id
	}

	products, err := h.CatalogService.ListProducts(r.Context(), category)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]storesdk.Product, 0, len(products))
	for _, p := range products {
		out = append(out, toProduct(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGetProduct godoc
//
//	@Summary		Product detail
//	@Tags			Catalog
//	@Produce		json
//	@Param			id	path		int	true	"Product id"
//	@Success		200	{object}	storesdk.Product
//	@Failure		404	{object}	storesdk.ErrorResponse
//	@Router			/api/products/{id}/ [get].
func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.CatalogService.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProduct(p))
}

// HandleListCategories godoc
//
//	@Summary		List categories
//	@Tags			Catalog
//	@Produce		json
//	@Success		200	{array}	storesdk.Category
//	@Router			/api/products/categories/ [get].
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.CatalogService.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]storesdk.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategory(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGetCategory godoc
//
//	@Summary		Category detail
//	@Tags			Catalog
//	@Produce		json
//	@Param			id	path		int	true	"Category id"
//	@Success		200	{object}	storesdk.Category
//	@Failure		404	{object}	storesdk.ErrorResponse
//	@Router			/api/products/categories/{id}/ [get].
func (h *CatalogHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.CatalogService.GetCategory(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCategory(c))
}

// HandleCreateProduct godoc
//
//	@Summary		Add a product
//	@Tags			Catalog
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storesdk.ProductInput	true	"Product"
//	@Success		201		{object}	storesdk.Product
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		403		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/products/ [post].
func (h *CatalogHandler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	p, err := h.CatalogService.CreateProduct(r.Context(), fromProductInput(0, in))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toProduct(p))
}

// HandleUpdateProduct godoc
//
//	@Summary		Replace a product
//	@Tags			Catalog
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Product id"
//	@Param			request	body		storesdk.ProductInput	true	"Product"
//	@Success		200		{object}	storesdk.Product
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		404		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/products/{id}/ [put].
func (h *CatalogHandler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	in, ok := decodeProduct(w, r)
	if !ok {
		return
	}
	p, err := h.CatalogService.UpdateProduct(r.Context(), fromProductInput(id, in))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toProduct(p))
}

// HandleDeleteProduct godoc
//
//	@Summary		Delete a product
//	@Tags			Catalog
//	@Param			id	path	int	true	"Product id"
//	@Success		204
//	@Failure		404	{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/products/{id}/ [delete].
func (h *CatalogHandler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.CatalogService.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateCategory godoc
//
//	@Summary		Add a category
//	@Tags			Catalog
//	@Accept			json
//	@Produce		json
//	@Param			request	body		storesdk.CategoryInput	true	"Category"
//	@Success		201		{object}	storesdk.Category
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/products/categories/ [post].
func (h *CatalogHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeCategory(w, r)
	if !ok {
		return
	}
	c, err := h.CatalogService.CreateCategory(r.Context(), fromCategoryInput(0, in))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toCategory(c))
}

// HandleUpdateCategory godoc
//
//	@Summary		Replace a category
//	@Tags			Catalog
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Category id"
//	@Param			request	body		storesdk.CategoryInput	true	"Category"
//	@Success		200		{object}	storesdk.Category
//	@Failure		400		{object}	storesdk.ErrorResponse
//	@Failure		404		{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/products/categories/{id}/ [put].
func (h *CatalogHandler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	in, ok := decodeCategory(w, r)
	if !ok {
		return
	}
	c, err := h.CatalogService.UpdateCategory(r.Context(), fromCategoryInput(id, in))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toCategory(c))
}

// HandleDeleteCategory godoc
//
//	@Summary		Delete a category
//	@Description	Products in the category are kept without one.
//	@Tags			Catalog
//	@Param			id	path	int	true	"Category id"
//	@Success		204
//	@Failure		404	{object}	storesdk.ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/products/categories/{id}/ [delete].
func (h *CatalogHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.CatalogService.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeProduct(w http.ResponseWriter, r *http.Request) (storesdk.ProductInput, bool) {
	var in storesdk.ProductInput
	if !decodeJSON(w, r, &in) {
		return in, false
	}
	if errs := in.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return in, false
	}
	return in, true
}

func decodeCategory(w http.ResponseWriter, r *http.Request) (storesdk.CategoryInput, bool) {
	var in storesdk.CategoryInput
	if !decodeJSON(w, r, &in) {
		return in, false
	}
	if errs := in.Validate(); len(errs) > 0 {
		writeFieldErrors(w, errs)
		return in, false
	}
	return in, true
}
