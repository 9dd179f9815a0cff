package handlers

import (
	"net/http"

	"github.com/Rakhulsr/go-storefront/app/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth    *services.AuthService
	resp    *Responder
	present *Presenter
	log     *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, resp *Responder, present *Presenter, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		resp:    resp,
		present: present,
		log:     log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	result, err := h.auth.Register(r.Context(), in)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.resp.JSON(w, http.StatusCreated, AuthResponse{
		Message:       "User registered successfully.",
		User:          h.present.User(result.User),
		TokenResponse: h.present.Tokens(result.Tokens),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	result, err := h.auth.Login(r.Context(), in)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.resp.JSON(w, http.StatusOK, AuthResponse{
		User:          h.present.User(result.User),
		TokenResponse: h.present.Tokens(result.Tokens),
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeJSON(r, &in); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	access, exp, err := h.auth.Refresh(r.Context(), in.Refresh)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.resp.JSON(w, http.StatusOK, TokenResponse{Access: access, AccessExpiresAt: exp})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), p.ID)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}
	h.resp.JSON(w, http.StatusOK, h.present.User(user))
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	var in services.UpdateProfileInput
	if err := decodeJSON(r, &in); err != nil {
		h.resp.Error(w, r, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), p.ID, in)
	if err != nil {
		h.resp.Error(w, r, err)
		return
	}

	h.log.Info("profile updated", zap.Uint64("user_id", user.ID))
	h.resp.JSON(w, http.StatusOK, h.present.User(user))
}
