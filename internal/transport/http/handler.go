package http

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"seminar-results-service/internal/app"
	"seminar-results-service/internal/domain"
	"seminar-results-service/internal/export"

	"github.com/go-chi/chi/v5"
)

// ResultsHandler exposes the results use cases over REST.
type ResultsHandler struct {
	service      *app.ResultsService
	participants int
	substitutes  int
	logger       *slog.Logger
	render       func(io.Writer, []domain.ResultRow) error
}

type HandlerOption func(*ResultsHandler)

// WithHandlerLogger sets the logger for failures that happen after a
// request was accepted. A nil logger is ignored.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *ResultsHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewResultsHandler uses participants and substitutes when an invitation
// request does not name its own counts.
func NewResultsHandler(service *app.ResultsService, participants, substitutes int, opts ...HandlerOption) *ResultsHandler {
	h := &ResultsHandler{
		service:      service,
		participants: participants,
		substitutes:  substitutes,
		logger:       slog.Default(),
		render:       export.WriteXLSX,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ResultsHandler) results(kind domain.SnapshotKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		data, err := h.service.ResultsJSON(r.Context(), domain.SnapshotKey{Kind: kind, ID: id})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRawJSON(w, data)
	}
}

func (h *ResultsHandler) freeze(kind domain.SnapshotKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var err error
		if kind == domain.KindRound {
			err = h.service.FreezeRound(r.Context(), id)
		} else {
			err = h.service.FreezePeriod(r.Context(), id)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, stateResponse{State: domain.StateFrozen})
	}
}

type stateResponse struct {
	State domain.FreezeState `json:"state"`
}

func (h *ResultsHandler) state(kind domain.SnapshotKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var (
			state domain.FreezeState
			err   error
		)
		if kind == domain.KindRound {
			state, err = h.service.RoundState(r.Context(), id)
		} else {
			state, err = h.service.PeriodState(r.Context(), id)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stateResponse{State: state})
	}
}

func (h *ResultsHandler) participantRow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	pid, ok := pathID(w, r, "participant")
	if !ok {
		return
	}
	row, err := h.service.ParticipantPeriodRow(r.Context(), id, domain.ParticipantID(pid))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (h *ResultsHandler) invitations(bySchool bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		participants, substitutes := h.participants, h.substitutes
		if chi.URLParam(r, "participants") != "" {
			p, ok := pathCount(w, r, "participants")
			if !ok {
				return
			}
			s, ok := pathCount(w, r, "substitutes")
			if !ok {
				return
			}
			participants, substitutes = p, s
		}

		var (
			body any
			err  error
		)
		if bySchool {
			body, err = h.service.SchoolInvitations(r.Context(), id, participants, substitutes)
		} else {
			body, err = h.service.Invitations(r.Context(), id, participants, substitutes)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func (h *ResultsHandler) spreadsheet(kind domain.SnapshotKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		rows, err := h.service.Results(r.Context(), domain.SnapshotKey{Kind: kind, ID: id})
		if err != nil {
			writeError(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := h.render(&buf, rows); err != nil {
			h.logger.Error("xlsx export failed", "kind", kind, "id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorPayload{Message: http.StatusText(http.StatusInternalServerError)})
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%d.xlsx"`, kind, id))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid " + name})
		return 0, false
	}
	return id, true
}

func pathCount(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 0 {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid " + name})
		return 0, false
	}
	return n, true
}
