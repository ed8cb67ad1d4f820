package routehandlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/evolvetech/opsdash/qa"
	"github.com/evolvetech/opsdash/transcription"
	"github.com/evolvetech/opsdash/webutil"
)

// multipartMemoryLimit is how much of the form is buffered in memory before
// spilling to temp files. Uploads routinely exceed this; the rest streams
// from disk.
const multipartMemoryLimit = 32 << 20

type UploadHandler struct {
	Orchestrator *qa.Orchestrator
}

func NewUploadHandler(orchestrator *qa.Orchestrator) *UploadHandler {
	return &UploadHandler{Orchestrator: orchestrator}
}

// HandleUpload accepts one multipart "file" field, runs the transcription
// flow, and returns the transcript plus derived metadata.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return webutil.ErrBadRequestWrap("Invalid multipart form", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		// No file field at all is reported the same way as a disallowed one.
		return webutil.ErrBadRequest("Invalid file type")
	}
	defer file.Close()

	upload := &qa.Upload{
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Data:        file,
	}

	recording, err := h.Orchestrator.Process(r.Context(), upload)
	if err != nil {
		return mapUploadError(err)
	}

	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"transcription": recording.Transcription,
		"metadata": map[string]any{
			"id":        recording.ID,
			"duration":  recording.Duration,
			"wordCount": recording.WordCount,
			"speakers":  recording.SpeakerCount,
		},
	})
	return nil
}

func mapUploadError(err error) error {
	switch {
	case errors.Is(err, qa.ErrInvalidFileType):
		return webutil.ErrBadRequest("Invalid file type")
	case errors.Is(err, qa.ErrFileTooLarge):
		return webutil.ErrBadRequest(fmt.Sprintf("File exceeds %dMB limit", qa.MaxUploadBytes/1024/1024))
	case errors.Is(err, transcription.ErrUnavailable):
		return webutil.ErrServiceUnavailableWrap("Connection to transcription service failed. Please try again.", err)
	}

	var providerErr *transcription.ProviderError
	if errors.As(err, &providerErr) {
		return webutil.NewHTTPErrorWrap(http.StatusInternalServerError, providerErr.Message, err)
	}

	return err
}
