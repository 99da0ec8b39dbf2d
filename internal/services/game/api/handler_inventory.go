package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veilspire/gridlink/internal/services/game/domain/inventory"
)

type stackChangeRequest struct {
	ItemKey  string `json:"item_key"`
	Quantity int64  `json:"quantity"`
}

func (s *Server) handleGrantItem(w http.ResponseWriter, r *http.Request) {
	s.handleStackChange(w, r, s.service.GrantItem)
}

func (s *Server) handleConsumeItem(w http.ResponseWriter, r *http.Request) {
	s.handleStackChange(w, r, s.service.ConsumeItem)
}

func (s *Server) handleStackChange(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, input inventory.ChangeInput) (inventory.Stack, error)) {
	var req stackChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	characterID := chi.URLParam(r, "characterID")
	if err := s.requireRegion(r, characterID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	stack, err := change(r.Context(), inventory.ChangeInput{
		CharacterID: characterID,
		ItemKey:     req.ItemKey,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toStackPayload(stack))
}

func (s *Server) handleListInventory(w http.ResponseWriter, r *http.Request) {
	characterID := chi.URLParam(r, "characterID")
	if err := s.requireRegion(r, characterID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	stacks, err := s.service.ListInventory(r.Context(), characterID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	payload := stackList{Stacks: make([]stackPayload, 0, len(stacks))}
	for _, stack := range stacks {
		payload.Stacks = append(payload.Stacks, toStackPayload(stack))
	}
	writeJSON(w, http.StatusOK, payload)
}
