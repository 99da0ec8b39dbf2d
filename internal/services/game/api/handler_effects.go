package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veilspire/gridlink/internal/rules"
	"github.com/veilspire/gridlink/internal/services/game/app"
)

type applyEffectRequest struct {
	TemplateKey string           `json:"template_key"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Tag         string           `json:"tag"`
	TurnsLeft   int              `json:"turns_left"`
	Modifiers   []rules.Modifier `json:"modifiers"`
}

type applyEffectResponse struct {
	Effect    rules.Effect     `json:"effect"`
	Character characterPayload `json:"character"`
}

func (s *Server) handleApplyEffect(w http.ResponseWriter, r *http.Request) {
	var req applyEffectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	characterID := chi.URLParam(r, "characterID")
	if err := s.requireRegion(r, characterID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	effect, refreshed, err := s.service.ApplyEffect(r.Context(), characterID, app.ApplyEffectInput{
		TemplateKey: req.TemplateKey,
		Name:        req.Name,
		Category:    req.Category,
		Tag:         rules.DurationTag(req.Tag),
		TurnsLeft:   req.TurnsLeft,
		Modifiers:   req.Modifiers,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, applyEffectResponse{Effect: effect, Character: toCharacterPayload(refreshed)})
}

func (s *Server) handleDispelEffect(w http.ResponseWriter, r *http.Request) {
	characterID := chi.URLParam(r, "characterID")
	if err := s.requireRegion(r, characterID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	refreshed, err := s.service.DispelEffect(r.Context(), characterID, chi.URLParam(r, "effectID"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCharacterPayload(refreshed))
}

type endTurnRequest struct {
	Heal int `json:"heal"`
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	var req endTurnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	characterID := chi.URLParam(r, "characterID")
	if err := s.requireRegion(r, characterID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	outcome, err := s.service.EndTurn(r.Context(), characterID, req.Heal)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTurnPayload(outcome))
}

type damageRequest struct {
	Amount int `json:"amount"`
}

func (s *Server) handleDamage(w http.ResponseWriter, r *http.Request) {
	var req damageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	characterID := chi.URLParam(r, "characterID")
	if err := s.requireRegion(r, characterID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	c, err := s.service.Damage(r.Context(), characterID, req.Amount)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCharacterPayload(c))
}

type healRequest struct {
	Amount int `json:"amount"`
}

type healResponse struct {
	Character characterPayload `json:"character"`
	Healed    int              `json:"healed"`
}

func (s *Server) handleHeal(w http.ResponseWriter, r *http.Request) {
	var req healRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	characterID := chi.URLParam(r, "characterID")
	if err := s.requireRegion(r, characterID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	c, healed, err := s.service.Heal(r.Context(), characterID, req.Amount)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, healResponse{Character: toCharacterPayload(c), Healed: healed})
}
