package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available *int   `json:"available,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// Responder writes JSON bodies and maps service errors to status codes.
type Responder struct {
	render *render.Render
	log    *zap.Logger
}

func NewResponder(r *render.Render, log *zap.Logger) *Responder {
	return &Responder{render: r, log: log}
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, v interface{}) {
	if err := rs.render.JSON(w, status, v); err != nil {
		rs.log.Error("failed to write response", zap.Error(err))
	}
}

func (rs *Responder) NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func (rs *Responder) fail(w http.ResponseWriter, status int, code, message string) {
	rs.JSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// Error renders err using the service error taxonomy. Unknown errors are
// logged and hidden behind a generic 500.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	var (
		lineErrs  services.LineItemErrors
		validErr  *services.ValidationError
		conflict  *services.ConflictError
		stockErr  *services.InsufficientStockError
		notFound  *services.NotFoundError
		paymentEr *services.PaymentError
	)

	switch {
	case errors.As(err, &lineErrs):
		rs.JSON(w, http.StatusBadRequest, map[string]interface{}{"items": lineErrs})
	case errors.As(err, &validErr):
		rs.JSON(w, http.StatusBadRequest, map[string]interface{}{"errors": validErr.Fields})
	case errors.As(err, &conflict):
		rs.JSON(w, http.StatusConflict, map[string]interface{}{"errors": conflict.Fields})
	case errors.As(err, &stockErr):
		available := stockErr.Available
		rs.JSON(w, http.StatusBadRequest, errorEnvelope{Error: errorBody{
			Code:      "insufficient_stock",
			Message:   "Insufficient stock. Available: " + strconv.Itoa(available),
			Available: &available,
		}})
	case errors.As(err, &notFound):
		rs.fail(w, http.StatusNotFound, "not_found", capitalize(notFound.Error())+".")
	case errors.Is(err, services.ErrNotFound):
		rs.fail(w, http.StatusNotFound, "not_found", "Not found.")
	case errors.Is(err, services.ErrInvalidLogin),
		errors.Is(err, services.ErrAccountDisabled),
		errors.Is(err, services.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		rs.fail(w, http.StatusUnauthorized, "unauthorized", capitalize(err.Error())+".")
	case errors.Is(err, services.ErrForbidden):
		rs.fail(w, http.StatusForbidden, "forbidden", capitalize(err.Error())+".")
	case errors.As(err, &paymentEr):
		rs.paymentError(w, r, paymentEr)
	default:
		rs.log.Error("unhandled error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		rs.fail(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (rs *Responder) paymentError(w http.ResponseWriter, r *http.Request, err *services.PaymentError) {
	rs.log.Error("payment processor error",
		zap.String("path", r.URL.Path),
		zap.String("kind", string(err.Kind)),
		zap.Error(err),
	)
	switch err.Kind {
	case services.PaymentErrConfig:
		rs.fail(w, http.StatusInternalServerError, "payment_not_configured", "The payment processor is not configured.")
	case services.PaymentErrAuth:
		rs.fail(w, http.StatusInternalServerError, "payment_auth_failed", "The payment processor rejected the configured credentials.")
	default:
		rs.fail(w, http.StatusBadGateway, "payment_processor_error", "The payment processor could not complete the request.")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return services.NewValidationError("body", "Could not read request body.")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return services.NewValidationError("body", "Request body is empty.")
	}
	if err := json.Unmarshal(body, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return services.NewValidationError(typeErr.Field, "Invalid value type.")
		}
		return services.NewValidationError("body", "Malformed JSON body.")
	}
	return nil
}

func principal(r *http.Request) (*helpers.Principal, error) {
	p, ok := helpers.PrincipalFromContext(r.Context())
	if !ok {
		return nil, services.ErrUnauthorized
	}
	return p, nil
}

func pathID(r *http.Request, resource string) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, &services.NotFoundError{Resource: resource}
	}
	return id, nil
}
