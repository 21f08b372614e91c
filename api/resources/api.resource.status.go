// FilePath: api/resources/api.resource.status.go
package resources

import (
	"encoding/json"
	"net/http"

	nuts "github.com/vaudience/go-nuts"

	"github.com/blitt001/ha-opensensemap/internal/coordinator"
	"github.com/blitt001/ha-opensensemap/internal/errors"
)

// StatusHandlers encapsulates the upload-status HTTP handlers. This is the
// status observer surface: it derives pending/ok/error from the snapshot
// and stays reachable regardless of upload state.
type StatusHandlers struct {
	coordinator *coordinator.Coordinator
}

// @Summary Get upload status
// @Description Get the current upload status snapshot for the configured box
// @Tags status
// @Produce json
// @Success 200 {object} models.StatusSnapshot
// @Router /status [get]
func (h *StatusHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.coordinator.Status())
}

// @Summary Trigger an upload cycle
// @Description Start a manual upload cycle, serialized with timer-driven ones
// @Tags status
// @Produce json
// @Success 202 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /refresh [post]
func (h *StatusHandlers) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	if !h.coordinator.Refresh() {
		nuts.L.Warnf("[API] Refresh %s rejected, cycle already in flight", requestID)
		respondWithJSON(w, http.StatusConflict, map[string]string{
			"status": "busy", "message": "an upload cycle is already running",
		})
		return
	}

	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

// @Summary Get the last upload request
// @Description Get the last captured request snapshot; requires debug mode
// @Tags status
// @Produce json
// @Success 200 {object} models.RequestSnapshot
// @Failure 404 {object} errors.APIError
// @Router /debug/request [get]
func (h *StatusHandlers) GetDebugRequest(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	snapshot := h.coordinator.Status().LastRequest
	if snapshot == nil {
		respondWithError(w, errors.NewNotFoundError(
			"no request captured; debug mode off or nothing pushed yet", nil).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, snapshot)
}

// Helper functions

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
