package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"songvote/internal/platform/apperr"
)

type advanceRequest struct {
	SongID string `json:"songId"`
}

type advanceResponse struct {
	Status     string `json:"status"`
	NowPlaying string `json:"now_playing"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// @Summary     Vote counts per song
// @Tags        votes
// @Produce     json
// @Success     200  {object}  map[string]int
// @Router      /api/v1/votes/counts [get]
func (h *Handler) handleCounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coord.Counts())
}

// handleRawVotes serves the stored ballot as {deviceId: songId} in vote order.
func (h *Handler) handleRawVotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coord.Votes())
}

// @Summary     Current session snapshot
// @Description Counts, voters per song and playback states. Does not broadcast.
// @Tags        session
// @Produce     json
// @Success     200  {object}  session.Snapshot
// @Router      /api/v1/session [get]
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coord.Snapshot())
}

// @Summary     Mark a song as now playing
// @Description The previous now-playing song becomes played. Broadcasts an update.
// @Tags        playback
// @Security    BearerAuth
// @Accept      json
// @Produce     json
// @Param       request  body      advanceRequest  true  "Song to play"
// @Success     200      {object}  advanceResponse
// @Failure     400      {object}  map[string]string  "missing songId"
// @Failure     401      {object}  map[string]string  "unauthorized"
// @Router      /api/v1/playback/now-playing [post]
func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		errorResponse(w, apperr.ErrInvalidBody.Wrap(err))
		return
	}

	nowPlaying, _, err := h.coord.AdvancePlayback(r.Context(), req.SongID)
	if err != nil {
		errorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, advanceResponse{Status: "ok", NowPlaying: nowPlaying})
}

// @Summary     Reset the session
// @Description Clears votes and playback history, then broadcasts update and session_reset.
// @Tags        session
// @Security    BearerAuth
// @Produce     json
// @Success     200  {object}  statusResponse
// @Failure     401  {object}  map[string]string  "unauthorized"
// @Router      /api/v1/session/reset [post]
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if _, err := h.coord.ResetSession(r.Context()); err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *Handler) handleLegacyReset(w http.ResponseWriter, r *http.Request) {
	if _, err := h.coord.ResetSession(r.Context()); err != nil {
		errorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Message: "Votes reset"})
}

// @Summary     Reload the session from the state store
// @Tags        session
// @Security    BearerAuth
// @Produce     json
// @Success     200  {object}  session.Snapshot
// @Failure     401  {object}  map[string]string  "unauthorized"
// @Failure     503  {object}  map[string]string  "no state store"
// @Router      /api/v1/session/reload [post]
func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	if h.loader == nil {
		errorResponse(w, apperr.ErrStoreUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, h.coord.Reload(r.Context(), h.loader))
}
