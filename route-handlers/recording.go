package routehandlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/evolvetech/opsdash/datastore"
	"github.com/evolvetech/opsdash/models"
	"github.com/evolvetech/opsdash/storage"
	"github.com/evolvetech/opsdash/webutil"
	"github.com/go-chi/chi/v5"
)

type RecordingHandler struct {
	Repo    *datastore.RecordingRepository
	Archive storage.MediaStore
}

func NewRecordingHandler(repo *datastore.RecordingRepository, archive storage.MediaStore) *RecordingHandler {
	return &RecordingHandler{Repo: repo, Archive: archive}
}

// HandleGetRecordings returns the full table; the client sorts and filters.
func (h *RecordingHandler) HandleGetRecordings(w http.ResponseWriter, r *http.Request) error {
	recordings, err := h.Repo.GetRecordings(r.Context())
	if err != nil {
		return fmt.Errorf("failed to retrieve recordings: %w", err)
	}
	if recordings == nil {
		recordings = []models.Recording{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, recordings)
	return nil
}

func (h *RecordingHandler) HandleGetRecording(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if id == "" {
		return webutil.ErrBadRequest("Recording ID is required")
	}

	recording, err := h.Repo.GetRecordingByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFound("Recording not found")
		}
		return fmt.Errorf("failed to retrieve recording %s: %w", id, err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, recording)
	return nil
}

// HandleDeleteRecording removes exactly the row matching the id and reports
// the deleted id back. The archived media copy is removed best-effort.
func (h *RecordingHandler) HandleDeleteRecording(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if id == "" {
		return webutil.ErrBadRequest("Recording ID is required")
	}

	deletedID, err := h.Repo.DeleteRecording(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return webutil.ErrNotFound("Recording not found")
		}
		return fmt.Errorf("failed to delete recording %s: %w", id, err)
	}

	if h.Archive != nil {
		if err := h.Archive.Remove(deletedID); err != nil {
			slog.Warn("Failed to remove archived media", "recording_id", deletedID, "error", err)
		}
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Recording deleted successfully",
		"deletedId": deletedID,
	})
	return nil
}
