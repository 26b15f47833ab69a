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

func (h *Handler) GetAllCryptos(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cryptos, err := h.Controller.GetAllCryptos(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, cryptos, http.StatusOK)
}

func (h *Handler) GetCryptoBySymbol(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	symbol := chi.URLParam(r, "symbol")
	crypto, err := h.Controller.GetCryptoBySymbol(ctx, symbol)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, crypto, http.StatusOK)
}

func (h *Handler) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	symbol := chi.URLParam(r, "symbol")

	days := 7
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			h.HandleErrors(w, utils.BadRequest("days must be a positive integer"))
			return
		}
		days = parsed
	}

	points, err := h.Controller.GetPriceHistory(ctx, symbol, days)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, points, http.StatusOK)
}

func (h *Handler) CreateCrypto(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req schemas.CreateCryptoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("Invalid request body"))
		return
	}

	created, err := h.Controller.CreateCrypto(ctx, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, created, http.StatusCreated)
}

// RefreshPrices lets an authenticated user trigger the price refresh instead
// of waiting for the next cron tick. The upstream calls can take a while, so
// the timeout is looser than for plain reads.
func (h *Handler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	result, err := h.Controller.RefreshPrices(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, result, http.StatusOK)
}
