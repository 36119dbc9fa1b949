package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/barbaarintasan/bsa-bridge/internal/models"
)

type importErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ImportUsers handles POST /api/admin/import: a JSON export from the app
// admin is processed in one sequential run. Per-record failures are isolated
// and reported in the summary, never as a request failure.
func (h *Handler) ImportUsers(w http.ResponseWriter, r *http.Request) {
	var file models.ImportFile
	if err := json.NewDecoder(r.Body).Decode(&file); err != nil || file.Users == nil {
		writeJSON(w, http.StatusBadRequest, importErrorResponse{
			Success: false,
			Error:   `Invalid JSON file format. Expected "users" array.`,
		})
		return
	}

	results := h.Importer.Run(r.Context(), &file)

	if err := h.Audit.RecordImportRun(r.Context(), results); err != nil {
		log.Printf("[BSA Import] failed to record import run: %v", err)
	}

	writeJSON(w, http.StatusOK, results)
}

// GetSyncEvents handles GET /api/admin/sync-events: recent sync activity from
// the audit trail, newest first.
func (h *Handler) GetSyncEvents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	events, err := h.Audit.RecentSyncEvents(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, importErrorResponse{Success: false, Error: "Failed to load sync events"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  events,
	})
}
