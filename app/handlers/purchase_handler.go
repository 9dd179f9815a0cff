package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/shopspring/decimal"
)

type PurchaseHandler struct {
	orders   *services.OrderService
	payments *services.PaymentService
	resp     *Responder
	present  *Presenter
}

func NewPurchaseHandler(orders *services.OrderService, payments *services.PaymentService, resp *Responder, present *Presenter) *PurchaseHandler {
	return &PurchaseHandler{
		orders:   orders,
		payments: payments,
		resp:     resp,
		present:  present,
	}
}

type paymentIntentRequest struct {
	TotalAmount *decimal.Decimal `json:"total_amount"`
}

func (h *PurchaseHandler) History(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	purchases, err := h.orders.History(r.Context(), p.ID)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.Purchases(purchases))
}

func (h *PurchaseHandler) Detail(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	id, err := pathID(r, "purchase")
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	purchase, err := h.orders.Detail(r.Context(), p.ID, id)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.Purchase(purchase))
}

func (h *PurchaseHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var in paymentIntentRequest
	if err := decodeJSON(r, &in); err != nil {
		h.resp.Error(w, r, err)
		return
	}
	if in.TotalAmount == nil {
		h.resp.Error(w, r, services.NewValidationError("total_amount", "This field is required."))
		return
	}

	intent, err := h.payments.CreatePaymentIntent(r.Context(), p.ID, *in.TotalAmount)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, PaymentIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.PaymentIntentID,
		RedirectURL:     intent.RedirectURL,
	})
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var in services.CreateOrderInput
	if err := decodeJSON(r, &in); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	purchase, err := h.orders.CreateOrder(r.Context(), p.ID, in)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusCreated, h.present.Purchase(purchase))
}
