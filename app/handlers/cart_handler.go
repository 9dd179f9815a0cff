package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/services"
	"go.uber.org/zap"
)

type CartHandler struct {
	carts   *services.CartService
	resp    *Responder
	present *Presenter
	log     *zap.Logger
}

func NewCartHandler(carts *services.CartService, resp *Responder, present *Presenter, log *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		resp:    resp,
		present: present,
		log:     log,
	}
}

type addToCartRequest struct {
	ProductID *uint64 `json:"product_id"`
	Quantity  *int    `json:"quantity"`
}

type cartQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	cart, err := h.carts.GetCart(r.Context(), p.ID)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.Cart(cart))
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var in addToCartRequest
	if err := decodeJSON(r, &in); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if in.ProductID == nil {
		h.resp.Error(w, r, services.NewValidationError("product_id", "This field is required."))
		return
	}
	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}

	item, created, err := h.carts.AddItem(r.Context(), p.ID, *in.ProductID, quantity)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.log.Debug("cart item saved",
		zap.Uint64("user_id", p.ID),
		zap.Uint64("product_id", item.ProductID),
		zap.Int("quantity", item.Quantity),
		zap.Bool("created", created),
	)

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.resp.JSON(w, status, h.present.CartItem(item))
}

func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	id, err := pathID(r, "cart item")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var in cartQuantityRequest
	if err := decodeJSON(r, &in); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if in.Quantity == nil {
		h.resp.Error(w, r, services.NewValidationError("quantity", "This field is required."))
		return
	}

	item, err := h.carts.SetItemQuantity(r.Context(), p.ID, id, *in.Quantity)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.CartItem(item))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	id, err := pathID(r, "cart item")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.carts.RemoveItem(r.Context(), p.ID, id); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.NoContent(w)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if err := h.carts.Clear(r.Context(), p.ID); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.NoContent(w)
}
