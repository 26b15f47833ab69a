package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"cryptotracker/src/schemas"
	"cryptotracker/src/utils"
)

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := UserFromContext(ctx)
	if user == nil {
		h.HandleErrors(w, utils.Unauthorized("Access token required"))
		return
	}

	holdings, err := h.Controller.GetPortfolio(ctx, user.ID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, holdings, http.StatusOK)
}

func (h *Handler) AddToPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := UserFromContext(ctx)
	if user == nil {
		h.HandleErrors(w, utils.Unauthorized("Access token required"))
		return
	}

	var req schemas.AddHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid request body"))
		return
	}

	result, created, err := h.Controller.AddHolding(ctx, user.ID, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	h.respond(w, r, result, status)
}

func (h *Handler) UpdatePortfolioEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := UserFromContext(ctx)
	if user == nil {
		h.HandleErrors(w, utils.Unauthorized("Access token required"))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid portfolio entry id"))
		return
	}

	var req schemas.UpdateHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid request body"))
		return
	}

	result, err := h.Controller.UpdateHolding(ctx, user.ID, id, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) DeletePortfolioEntry(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := UserFromContext(ctx)
	if user == nil {
		h.HandleErrors(w, utils.Unauthorized("Access token required"))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid portfolio entry id"))
		return
	}

	result, err := h.Controller.DeleteHolding(ctx, user.ID, id)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) GetPortfolioSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user := UserFromContext(ctx)
	if user == nil {
		h.HandleErrors(w, utils.Unauthorized("Access token required"))
		return
	}

	summary, err := h.Controller.GetPortfolioSummary(ctx, user.ID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, summary, http.StatusOK)
}
