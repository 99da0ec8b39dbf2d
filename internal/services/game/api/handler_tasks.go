package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veilspire/gridlink/internal/services/game/domain/task"
)

type offerTaskRequest struct {
	NPCID      string `json:"npc_id"`
	Kind       string `json:"kind"`
	BaseReward int64  `json:"base_reward"`
	Streak     int    `json:"streak"`
}

func (s *Server) handleOfferTask(w http.ResponseWriter, r *http.Request) {
	var req offerTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	offered, err := s.service.OfferTask(r.Context(), task.OfferInput{
		NPCID:      req.NPCID,
		Kind:       req.Kind,
		BaseReward: req.BaseReward,
		Streak:     req.Streak,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskPayload(offered))
}

type acceptTaskRequest struct {
	CharacterID string `json:"character_id"`
}

func (s *Server) handleAcceptTask(w http.ResponseWriter, r *http.Request) {
	var req acceptTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	accepted, err := s.service.AcceptTask(r.Context(), chi.URLParam(r, "taskID"), req.CharacterID)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskPayload(accepted))
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	completed, err := s.service.CompleteTask(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskPayload(completed))
}

func (s *Server) handleExpireTask(w http.ResponseWriter, r *http.Request) {
	expired, err := s.service.ExpireTask(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskPayload(expired))
}

func (s *Server) handleListTasksByNPC(w http.ResponseWriter, r *http.Request) {
	pageSize, err := parsePageSize(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	page, err := s.service.ListTasksByNPC(r.Context(), chi.URLParam(r, "npcID"), pageSize, r.URL.Query().Get("page_token"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	payload := taskList{
		Tasks:         make([]taskPayload, 0, len(page.Tasks)),
		NextPageToken: page.NextPageToken,
	}
	for _, t := range page.Tasks {
		payload.Tasks = append(payload.Tasks, toTaskPayload(t))
	}
	writeJSON(w, http.StatusOK, payload)
}
