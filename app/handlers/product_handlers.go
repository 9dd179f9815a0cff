package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	catalog *services.CatalogService
	resp    *Responder
	present *Presenter
}

func NewProductHandler(catalog *services.CatalogService, resp *Responder, present *Presenter) *ProductHandler {
	return &ProductHandler{catalog: catalog, resp: resp, present: present}
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, h.present.CategoryWithCount(c))
	}
	h.resp.JSON(w, http.StatusOK, out)
}

func (h *ProductHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var in services.CategoryInput
	if err := decodeJSON(r, &in); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), p.IsStaff, in)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, h.present.Category(category))
}

func (h *ProductHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), p.IsStaff, mux.Vars(r)["slug"]); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.NoContent(w)
}

func (h *ProductHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	page, err := h.catalog.ProductsByCategory(r.Context(), mux.Vars(r)["slug"], filter)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, ProductPageResponse{Count: page.Count, Results: h.present.Products(page.Results)})
}

func (h *ProductHandler) Products(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	page, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, ProductPageResponse{Count: page.Count, Results: h.present.Products(page.Results)})
}

func (h *ProductHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.ProductBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.Product(product))
}

func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Featured(r.Context())
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.Products(products))
}

func (h *ProductHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "product")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	products, err := h.catalog.Recommended(r.Context(), id)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.Products(products))
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var in services.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), p.ID, p.IsStaff, in)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, h.present.Product(product))
}

func (h *ProductHandler) MyProducts(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	products, err := h.catalog.MyProducts(r.Context(), p.ID)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.Products(products))
}

func (h *ProductHandler) MyProduct(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	id, err := pathID(r, "product")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	product, err := h.catalog.MyProduct(r.Context(), p.ID, id)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.Product(product))
}

func (h *ProductHandler) UpdateMyProduct(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	id, err := pathID(r, "product")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.resp.Error(w, r, services.NewValidationError("body", "Could not read request body."))
		return
	}
	var patch services.ProductPatch
	if err := json.Unmarshal(body, &patch); err != nil {
		h.resp.Error(w, r, services.NewValidationError("body", "Malformed JSON body."))
		return
	}
	// An explicit null removes the discount.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err == nil {
		if v, ok := raw["discount_price"]; ok && strings.TrimSpace(string(v)) == "null" {
			patch.ClearDiscount = true
		}
	}

	product, err := h.catalog.UpdateMyProduct(r.Context(), p.ID, id, patch)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.Product(product))
}

func parseProductFilter(r *http.Request) (repositories.ProductFilter, error) {
	q := r.URL.Query()
	f := repositories.ProductFilter{
		Search:       strings.TrimSpace(q.Get("search")),
		Ordering:     strings.TrimSpace(q.Get("ordering")),
		CategorySlug: strings.TrimSpace(q.Get("category")),
		Featured:     truthy(q.Get("featured")),
		InStock:      truthy(q.Get("in_stock")),
	}

	fields := map[string]string{}
	if v := strings.TrimSpace(q.Get("min_price")); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			fields["min_price"] = "A valid number is required."
		} else {
			f.MinPrice = &d
		}
	}
	if v := strings.TrimSpace(q.Get("max_price")); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			fields["max_price"] = "A valid number is required."
		} else {
			f.MaxPrice = &d
		}
	}
	f.Limit = intParam(q.Get("limit"), services.DefaultPageSize, 1, services.MaxPageSize)
	f.Offset = intParam(q.Get("offset"), 0, 0, 1<<30)

	if len(fields) > 0 {
		return f, &services.ValidationError{Fields: fields}
	}
	return f, nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func intParam(raw string, def, min, max int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
