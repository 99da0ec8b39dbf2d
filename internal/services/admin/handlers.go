package admin

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/veilspire/gridlink/internal/platform/errors"
	"github.com/veilspire/gridlink/internal/rules"
	"github.com/veilspire/gridlink/internal/services/game/storage"
)

// profilePayload is the public shape of a character: stats and active
// effects, without balance or avatar internals.
type profilePayload struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Kind    string          `json:"kind"`
	Region  string          `json:"region"`
	Live    rules.LiveStats `json:"live"`
	Health  int             `json:"health"`
	Effects []profileEffect `json:"effects"`
}

type profileEffect struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Tag      string `json:"tag"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	c, effects, err := s.service.GetCharacter(r.Context(), chi.URLParam(r, "characterID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	payload := profilePayload{
		ID:      c.ID,
		Name:    c.Name,
		Kind:    string(c.Kind),
		Region:  c.Region,
		Live:    c.Live,
		Health:  c.Health,
		Effects: make([]profileEffect, 0, len(effects)),
	}
	for _, effect := range effects {
		payload.Effects = append(payload.Effects, profileEffect{
			Name:     effect.Name,
			Category: effect.Category,
			Tag:      string(effect.Tag),
		})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

// characterRow is the dashboard shape of a character listing entry.
type characterRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Region    string    `json:"region"`
	Health    int       `json:"health"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

type characterListPayload struct {
	Characters    []characterRow `json:"characters"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	pageSize, err := parsePageSize(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filterStr := strings.TrimSpace(r.URL.Query().Get("filter"))
	region := strings.TrimSpace(r.URL.Query().Get("region"))

	query := storage.ListCharactersQuery{
		Region:    region,
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
		FilterKey: "region:" + region + "|filter:" + filterStr,
	}
	if filterStr != "" {
		condition, err := s.characterFilter.Parse(filterStr)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		query.FilterSQL = condition.Clause
		query.FilterArgs = condition.Params
	}

	page, err := s.service.ListCharacters(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	payload := characterListPayload{
		Characters:    make([]characterRow, 0, len(page.Characters)),
		NextPageToken: page.NextPageToken,
	}
	for _, c := range page.Characters {
		payload.Characters = append(payload.Characters, characterRow{
			ID:        c.ID,
			Name:      c.Name,
			Kind:      string(c.Kind),
			Region:    c.Region,
			Health:    c.Health,
			Balance:   c.Balance,
			CreatedAt: c.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

type paymentRow struct {
	ID          string    `json:"id"`
	GridTxnID   string    `json:"grid_txn_id"`
	CharacterID string    `json:"character_id"`
	Region      string    `json:"region,omitempty"`
	Amount      int64     `json:"amount"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type paymentListPayload struct {
	Payments      []paymentRow `json:"payments"`
	NextPageToken string       `json:"next_page_token,omitempty"`
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	pageSize, err := parsePageSize(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filterStr := strings.TrimSpace(r.URL.Query().Get("filter"))
	query := storage.ListPaymentsQuery{
		PageSize:  pageSize,
		PageToken: r.URL.Query().Get("page_token"),
		FilterKey: "filter:" + filterStr,
	}
	if filterStr != "" {
		condition, err := s.paymentFilter.Parse(filterStr)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		query.FilterSQL = condition.Clause
		query.FilterArgs = condition.Params
	}

	page, err := s.service.ListPayments(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	payload := paymentListPayload{
		Payments:      make([]paymentRow, 0, len(page.Payments)),
		NextPageToken: page.NextPageToken,
	}
	for _, p := range page.Payments {
		payload.Payments = append(payload.Payments, paymentRow{
			ID:          p.ID,
			GridTxnID:   p.GridTxnID,
			CharacterID: p.CharacterID,
			Region:      p.Region,
			Amount:      p.Amount,
			Note:        p.Note,
			CreatedAt:   p.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handlePaymentStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.PaymentStatistics(r.Context(), strings.TrimSpace(r.URL.Query().Get("region")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleInventoryExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/zstd")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.json.zst"`)
	if err := s.service.ExportInventory(r.Context(), w); err != nil {
		// Headers are gone already; log rather than rewrite the response.
		s.logger.Printf("inventory export failed: %v", err)
	}
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
