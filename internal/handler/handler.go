// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the issuance service.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/card-issuance/internal/auth"
	"github.com/Shivanand-hulikatti/card-issuance/internal/model"
	"github.com/Shivanand-hulikatti/card-issuance/internal/payment"
	"github.com/Shivanand-hulikatti/card-issuance/internal/service"
)

// Journal serves notification history. It is optional.
type Journal interface {
	ListByEdition(ctx context.Context, edition model.EditionID, limit int) ([]model.Notification, error)
}

// LedgerHandler holds all HTTP handlers for the issuance API.
type LedgerHandler struct {
	svc     *service.IssuanceService
	journal Journal
}

// NewLedgerHandler constructs a LedgerHandler. journal may be nil.
func NewLedgerHandler(svc *service.IssuanceService, journal Journal) *LedgerHandler {
	return &LedgerHandler{svc: svc, journal: journal}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func editionParam(r *http.Request) (model.EditionID, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 16)
	if err != nil {
		return 0, errInvalidID
	}
	return model.EditionID(v), nil
}

func cardParam(r *http.Request) (model.CardID, error) {
	v, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errInvalidID
	}
	return model.CardID(v), nil
}

func editionResponse(info model.EditionInfo) model.EditionResponse {
	return model.EditionResponse{
		ID:                 info.ID,
		Name:               info.Name,
		Capacity:           info.Capacity,
		UnitPrice:          info.UnitPrice.Dec(),
		Minted:             info.Minted,
		CanSellMoreBatches: info.CanSellMoreBatches,
		Outstanding:        info.Outstanding,
		CreatedAt:          info.CreatedAt,
	}
}

// ─── Editions ─────────────────────────────────────────────────────────────────

// ListEditions handles GET /editions
func (h *LedgerHandler) ListEditions(w http.ResponseWriter, r *http.Request) {
	infos := h.svc.ListEditions(r.Context())
	out := make([]model.EditionResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, editionResponse(info))
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateEdition handles POST /editions
func (h *LedgerHandler) CreateEdition(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEditionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid request body: "+err.Error())
		return
	}
	price, err := payment.ParseAmount(req.UnitPrice)
	if err != nil {
		respondError(w, r, err)
		return
	}

	edition, err := h.svc.CreateEdition(r.Context(), auth.CallerFrom(r.Context()), req.Name, req.Capacity, price)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, editionResponse(model.EditionInfo{
		Edition:            edition,
		CanSellMoreBatches: edition.Capacity >= model.BatchSize,
	}))
}

// GetEdition handles GET /editions/{id}
func (h *LedgerHandler) GetEdition(w http.ResponseWriter, r *http.Request) {
	id, err := editionParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	info, err := h.svc.EditionInfo(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editionResponse(info))
}

// SetPrice handles PUT /editions/{id}/price
func (h *LedgerHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	id, err := editionParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req model.SetPriceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid request body: "+err.Error())
		return
	}
	price, err := payment.ParseAmount(req.UnitPrice)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.svc.SetUnitPrice(r.Context(), auth.CallerFrom(r.Context()), id, price); err != nil {
		respondError(w, r, err)
		return
	}
	info, err := h.svc.EditionInfo(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editionResponse(info))
}

// History handles GET /editions/{id}/notifications
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusNotFound, codeNotFound, "notification journal is not enabled")
		return
	}
	id, err := editionParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notes, err := h.journal.ListByEdition(r.Context(), id, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if notes == nil {
		notes = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// ─── Reservations ─────────────────────────────────────────────────────────────

// BuyBatch handles POST /editions/{id}/reservations
func (h *LedgerHandler) BuyBatch(w http.ResponseWriter, r *http.Request) {
	id, err := editionParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req model.BuyBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid request body: "+err.Error())
		return
	}
	amount, err := payment.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.svc.BuyBatch(r.Context(), auth.CallerFrom(r.Context()), id, amount)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservationResponse(res))
}

// BuyBatchOnBehalf handles POST /editions/{id}/reservations/on-behalf
func (h *LedgerHandler) BuyBatchOnBehalf(w http.ResponseWriter, r *http.Request) {
	id, err := editionParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req model.OnBehalfRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid request body: "+err.Error())
		return
	}

	res, err := h.svc.BuyBatchOnBehalf(r.Context(), auth.CallerFrom(r.Context()), id, req.Purchaser)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservationResponse(res))
}

// GetReservation handles GET /editions/{id}/reservations/{purchaser}
func (h *LedgerHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := editionParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	purchaser := chi.URLParam(r, "purchaser")

	count, outstanding, err := h.svc.ReservationOf(r.Context(), id, purchaser)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ReservationResponse{
		EditionID:   id,
		Purchaser:   purchaser,
		Count:       count,
		Outstanding: outstanding,
	})
}

func reservationResponse(res service.Reservation) model.ReservationResponse {
	out := model.ReservationResponse{
		EditionID:   res.EditionID,
		Purchaser:   res.Purchaser,
		Count:       res.Count,
		Outstanding: res.Outstanding,
	}
	if res.Refund != nil && !res.Refund.IsZero() {
		out.Refund = res.Refund.Dec()
	}
	return out
}

// ─── Minting ──────────────────────────────────────────────────────────────────

// MintBatch handles POST /editions/{id}/batches
func (h *LedgerHandler) MintBatch(w http.ResponseWriter, r *http.Request) {
	h.mint(w, r, h.svc.MintBatch)
}

// FulfillBatch handles POST /editions/{id}/fulfillments
func (h *LedgerHandler) FulfillBatch(w http.ResponseWriter, r *http.Request) {
	h.mint(w, r, h.svc.FulfillBatch)
}

type mintFunc func(ctx context.Context, caller string, id model.EditionID, owner string, batch model.Batch) ([]model.CardID, error)

func (h *LedgerHandler) mint(w http.ResponseWriter, r *http.Request, fn mintFunc) {
	id, err := editionParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req model.MintBatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid request body: "+err.Error())
		return
	}
	batch, err := service.BatchFrom(req.Units)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ids, err := fn(r.Context(), auth.CallerFrom(r.Context()), id, req.Owner, batch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.BatchResponse{EditionID: id, Owner: req.Owner, CardIDs: ids})
}

// PurchaseBatch handles POST /editions/{id}/purchases
func (h *LedgerHandler) PurchaseBatch(w http.ResponseWriter, r *http.Request) {
	id, err := editionParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req model.PurchaseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid request body: "+err.Error())
		return
	}
	amount, err := payment.ParseAmount(req.Amount)
	if err != nil {
		respondError(w, r, err)
		return
	}
	batch, err := service.BatchFrom(req.Units)
	if err != nil {
		respondError(w, r, err)
		return
	}

	caller := auth.CallerFrom(r.Context())
	out, err := h.svc.PurchaseBatch(r.Context(), caller, id, amount, batch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	resp := model.BatchResponse{EditionID: id, Owner: caller, CardIDs: out.CardIDs}
	if !out.Refund.IsZero() {
		resp.Refund = out.Refund.Dec()
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ─── Cards ────────────────────────────────────────────────────────────────────

// GetCard handles GET /cards/{id}
func (h *LedgerHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := cardParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	info, err := h.svc.CardInfo(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.CardResponse{
		ID:           info.ID,
		EditionID:    info.EditionID,
		Category:     info.Category,
		SeriesNumber: info.SeriesNumber,
		TotalSeries:  info.TotalSeries,
		Owner:        info.Owner,
		MintedAt:     info.MintedAt,
	})
}

// ─── Treasury ─────────────────────────────────────────────────────────────────

// Treasury handles GET /treasury
func (h *LedgerHandler) Treasury(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.TreasuryBalance(r.Context(), auth.CallerFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TreasuryResponse{Balance: balance.Dec()})
}

// Refund handles GET /treasury/refunds/{account}
func (h *LedgerHandler) Refund(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")
	owed, err := h.svc.RefundOwed(r.Context(), auth.CallerFrom(r.Context()), account)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.RefundResponse{Account: account, Owed: owed.Dec()})
}

// Withdraw handles POST /treasury/withdrawals
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req model.WithdrawRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeInvalidBody, "invalid request body: "+err.Error())
		return
	}
	caller := auth.CallerFrom(r.Context())
	to := req.To
	if to == "" {
		to = caller
	}

	amount, err := h.svc.WithdrawFunds(r.Context(), caller, to)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.TreasuryResponse{Withdrawn: amount.Dec(), To: to})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
