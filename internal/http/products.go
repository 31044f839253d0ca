package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/greenhollow/stockade/internal/service"
	"github.com/greenhollow/stockade/pkg/httpx"
)

// ProductsHandler handles the authenticated /v1/products CRUD surface.
type ProductsHandler struct {
	CatalogService *service.CatalogService
}

type productRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (req *productRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Name == "":
		return "name is required"
	case req.Price < 0:
		return "price must not be negative"
	}
	return ""
}

func (h *ProductsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be JSON with name and price")
		return
	}
	if msg := req.validate(); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	product, err := h.CatalogService.Create(ctx, req.Name, req.Price)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, product)
}

func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.CatalogService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, products)
}

func (h *ProductsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.CatalogService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, product)
}

func (h *ProductsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "request body must be JSON with name and price")
		return
	}
	if msg := req.validate(); msg != "" {
		writeBadRequest(w, msg)
		return
	}

	product, err := h.CatalogService.Update(ctx, r.PathValue("id"), req.Name, req.Price)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, product)
}

func (h *ProductsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.CatalogService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
