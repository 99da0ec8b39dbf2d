package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/platform/requestctx"
	"github.com/veilspire/gridlink/internal/rules"
	"github.com/veilspire/gridlink/internal/services/game/domain/character"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

type registerCharacterRequest struct {
	Name      string          `json:"name"`
	AvatarKey string          `json:"avatar_key"`
	Kind      string          `json:"kind"`
	Base      rules.BaseStats `json:"base"`
}

func (s *Server) handleRegisterCharacter(w http.ResponseWriter, r *http.Request) {
	var req registerCharacterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	// The signature fixes the region; the body cannot pick another one.
	c, err := s.service.RegisterCharacter(r.Context(), character.RegisterInput{
		Name:      req.Name,
		AvatarKey: req.AvatarKey,
		Kind:      character.Kind(req.Kind),
		Region:    requestctx.RegionFromContext(r.Context()),
		Base:      req.Base,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCharacterPayload(c))
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	c, effects, err := s.service.GetCharacter(r.Context(), chi.URLParam(r, "characterID"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if !regionAllows(r, c.Region) {
		writeError(w, r, s.logger, storage.ErrNotFound)
		return
	}
	if effects == nil {
		effects = []rules.Effect{}
	}
	writeJSON(w, http.StatusOK, characterDetail{Character: toCharacterPayload(c), Effects: effects})
}

type updateStatsRequest struct {
	Base rules.BaseStats `json:"base"`
}

func (s *Server) handleUpdateStats(w http.ResponseWriter, r *http.Request) {
	var req updateStatsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	characterID := chi.URLParam(r, "characterID")
	if err := s.requireRegion(r, characterID); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	updated, err := s.service.UpdateCharacterStats(r.Context(), characterID, req.Base)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCharacterPayload(updated))
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	region := requestctx.RegionFromContext(r.Context())
	pageSize, err := parsePageSize(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	page, err := s.service.ListCharacters(r.Context(), storage.ListCharactersQuery{
		Region:    region,
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
		FilterKey: "region:" + region,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	payload := characterList{
		Characters:    make([]characterPayload, 0, len(page.Characters)),
		NextPageToken: page.NextPageToken,
	}
	for _, c := range page.Characters {
		payload.Characters = append(payload.Characters, toCharacterPayload(c))
	}
	writeJSON(w, http.StatusOK, payload)
}

// regionAllows reports whether the signed region covers the resource region.
func regionAllows(r *http.Request, resourceRegion string) bool {
	return requestctx.RegionFromContext(r.Context()) == resourceRegion
}

// requireRegion loads the character and rejects cross-region access. The
// mismatch reads as not found so other regions cannot probe ids.
func (s *Server) requireRegion(r *http.Request, characterID string) error {
	c, _, err := s.service.GetCharacter(r.Context(), characterID)
	if err != nil {
		return err
	}
	if !regionAllows(r, c.Region) {
		return storage.ErrNotFound
	}
	return nil
}

func parsePageSize(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page_size"))
	if raw == "" {
		return 0, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size < 0 {
		return 0, apperrors.New(apperrors.CodeRequestInvalid, "page_size must be a non-negative integer")
	}
	return size, nil
}
