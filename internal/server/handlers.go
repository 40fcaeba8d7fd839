package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/verte-zerg/tango/internal/corpus"
	"github.com/verte-zerg/tango/internal/logging"
	"github.com/verte-zerg/tango/internal/mastery"
	"github.com/verte-zerg/tango/internal/model"
	"github.com/verte-zerg/tango/internal/selector"
)

type categoryInfo struct {
	Category model.Category `json:"category"`
	Label    string         `json:"label"`
}

type statsDelta struct {
	ID           string `json:"id"`
	ShownDelta   int    `json:"shownDelta"`
	CorrectDelta int    `json:"correctDelta"`
}

type ack struct {
	Status string `json:"status"`
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	out := []categoryInfo{}
	for _, category := range corpus.Categories() {
		out = append(out, categoryInfo{Category: category, Label: corpus.Label(category)})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleCards accepts category, mode and n. The legacy categoria and modo
// parameter names are honoured too.
func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawCategory := firstNonEmpty(q.Get("category"), q.Get("categoria"))
	category, err := corpus.ParseCategory(rawCategory)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "unknown category", nil)
		return
	}
	mode, err := model.ParseMode(firstNonEmpty(q.Get("mode"), q.Get("modo")))
	if err != nil {
		s.logger.Debug("unknown mode; using normal", logging.Error(err))
		mode = model.ModeNormal
	}
	n := selector.ParseCount(q.Get("n"))

	cards, err := corpus.Load(s.corpusDir, category)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "failed to load cards", err)
		return
	}
	var ledger model.Ledger
	if mode == model.ModeSmart {
		ledger = s.store.Snapshot()
	}
	s.writeJSON(w, http.StatusOK, s.sel.Select(cards, mode, n, ledger))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleStatsDelta(w http.ResponseWriter, r *http.Request) {
	var req statsDelta
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		s.respondWithError(w, http.StatusBadRequest, "missing id", nil)
		return
	}
	if err := s.store.Apply(req.ID, req.ShownDelta, req.CorrectDelta); err != nil {
		s.respondWithLedgerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ack{Status: "ok"})
}

func (s *Server) handleStatsReset(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.ResetAll(); err != nil {
		s.respondWithLedgerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ack{Status: "ok"})
}

func (s *Server) respondWithLedgerError(w http.ResponseWriter, err error) {
	var perr *mastery.PersistenceError
	if errors.As(err, &perr) {
		s.respondWithError(w, http.StatusInternalServerError, "failed to save stats", err)
		return
	}
	s.respondWithError(w, http.StatusInternalServerError, "failed to update stats", err)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
