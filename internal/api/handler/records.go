package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordlegame-go/internal/api/apierr"
	"github.com/mcoot/wordlegame-go/internal/api/response"
	"github.com/mcoot/wordlegame-go/internal/services/records"
)

// RecordsHandler exposes player records to admins
type RecordsHandler struct {
	records *records.Service
	logger  *slog.Logger
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(records *records.Service, logger *slog.Logger) *RecordsHandler {
	return &RecordsHandler{records: records, logger: logger}
}

// List handles GET /api/records
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.records.All(r.Context())
	if err != nil {
		h.logger.Error("failed to list records", slog.String("error", err.Error()))
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RecordsFromModel(all))
}

// Get handles GET /api/records/{name}
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	stats, err := h.records.Get(r.Context(), name)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.PlayerRecordFromStats(name, stats))
}

// Reset handles DELETE /api/records
func (h *RecordsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.records.Reset(r.Context()); err != nil {
		h.logger.Error("failed to reset records", slog.String("error", err.Error()))
		apierr.WriteError(w, err)
		return
	}
	h.logger.Info("records reset", slog.String("remote_addr", r.RemoteAddr))
	response.NoContent(w)
}
