package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/nbaelo/internal/domain/model"
	"github.com/okian/nbaelo/internal/domain/replay"
	"github.com/okian/nbaelo/internal/domain/types"
	"github.com/okian/nbaelo/pkg/logger"
)

// ReplayDependencies runs the pipeline and reports its warnings.
type ReplayDependencies interface {
	Run(ctx context.Context) (types.RunSummary, error)
	Warnings() []replay.Warning
}

// ReplayHandler triggers rating runs.
type ReplayHandler struct {
	deps   ReplayDependencies
	logger logger.Logger
}

// NewReplayHandler creates a new replay handler.
func NewReplayHandler(deps ReplayDependencies, l logger.Logger) *ReplayHandler {
	return &ReplayHandler{deps: deps, logger: l}
}

type warningResponse struct {
	Season int    `json:"season"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Error  string `json:"error"`
}

// HandleReplay handles POST /replay.
func (h *ReplayHandler) HandleReplay(w http.ResponseWriter, r *http.Request) {
	sum, err := h.deps.Run(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "replay request failed", logger.Error(err))
		if errors.Is(err, replay.ErrMissingHistory) {
			writeError(w, http.StatusConflict, "missing_history", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleWarnings handles GET /warnings.
func (h *ReplayHandler) HandleWarnings(w http.ResponseWriter, _ *http.Request) {
	ws := h.deps.Warnings()
	out := make([]warningResponse, 0, len(ws))
	for _, wn := range ws {
		resp := warningResponse{Season: wn.Season, Error: wn.Err.Error()}
		if wn.Season != replay.OffSeason {
			resp.Start = wn.Range.Start.Format(model.DateLayout)
			resp.End = wn.Range.End.Format(model.DateLayout)
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}
