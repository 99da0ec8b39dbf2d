package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veilspire/gridlink/internal/platform/requestctx"
	"github.com/veilspire/gridlink/internal/services/game/domain/payment"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

type recordPaymentRequest struct {
	GridTxnID   string `json:"grid_txn_id"`
	CharacterID string `json:"character_id"`
	Amount      int64  `json:"amount"`
	Note        string `json:"note"`
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	receipt, err := s.service.RecordPayment(r.Context(), payment.RecordInput{
		GridTxnID:   req.GridTxnID,
		CharacterID: req.CharacterID,
		Region:      requestctx.RegionFromContext(r.Context()),
		Amount:      req.Amount,
		Note:        req.Note,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	status := http.StatusCreated
	if receipt.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, receiptPayload{Payment: toPaymentPayload(receipt.Payment), Duplicate: receipt.Duplicate})
}

// handleGetPayment lets a grid re-fetch a receipt by its own transaction id.
func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.GetPaymentByGridTxn(r.Context(), chi.URLParam(r, "gridTxnID"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if !regionAllows(r, p.Region) {
		writeError(w, r, s.logger, storage.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentPayload(p))
}
