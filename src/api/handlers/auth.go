package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cryptotracker/src/schemas"
	"cryptotracker/src/utils"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req schemas.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid request body"))
		return
	}

	tokenResponse, err := h.Controller.Register(ctx, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, tokenResponse, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req schemas.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid request body"))
		return
	}

	tokenResponse, err := h.Controller.Login(ctx, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, tokenResponse, http.StatusOK)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		h.HandleErrors(w, utils.Unauthorized("Access token required"))
		return
	}
	h.respond(w, r, h.Controller.Me(user), http.StatusOK)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req schemas.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid request body"))
		return
	}

	if err := h.Controller.ForgotPassword(ctx, req.Email); err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.MessageResponse{Message: "Password reset link sent to your email"}, http.StatusOK)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req schemas.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid request body"))
		return
	}

	if err := h.Controller.ResetPassword(ctx, req.Token, req.Password); err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, schemas.MessageResponse{Message: "Password reset successfully"}, http.StatusOK)
}
