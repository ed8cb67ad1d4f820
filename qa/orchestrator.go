// Package qa implements the Quality Assurance upload flow: validate an
// uploaded recording, transcribe it, and persist the result.
package qa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/evolvetech/opsdash/models"
	"github.com/evolvetech/opsdash/transcription"
	"github.com/google/uuid"
)

// MaxUploadBytes is the upload size ceiling (500 MiB).
const MaxUploadBytes = 500 * 1024 * 1024

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

// allowedTypes is the fixed MIME allow-list for uploads.
var allowedTypes = map[string]bool{
	"audio/mpeg":      true,
	"audio/wav":       true,
	"audio/m4a":       true,
	"video/mp4":       true,
	"video/quicktime": true,
	"video/x-msvideo": true,
}

// Gateway is the slice of the transcription client the orchestrator needs.
type Gateway interface {
	Transcribe(ctx context.Context, media io.Reader, contentType string) (*transcription.Result, error)
}

// RecordingStore persists finished transcriptions.
type RecordingStore interface {
	CreateRecording(ctx context.Context, rec *models.Recording) error
}

// MediaArchive keeps a best-effort copy of the raw upload.
type MediaArchive interface {
	Save(recordingID, filename string, media []byte) (string, error)
}

// Upload is one inbound multipart file.
type Upload struct {
	Filename    string
	Size        int64
	ContentType string
	Data        io.Reader
}

// Orchestrator runs the upload flow. Exactly one Recording row is created
// per successful call and zero rows on any failure path: the insert happens
// only after a fully parsed gateway response.
type Orchestrator struct {
	gateway    Gateway
	recordings RecordingStore
	archive    MediaArchive
}

func NewOrchestrator(gateway Gateway, recordings RecordingStore, archive MediaArchive) *Orchestrator {
	return &Orchestrator{
		gateway:    gateway,
		recordings: recordings,
		archive:    archive,
	}
}

// Process validates the upload, forwards it to the gateway, and persists the
// result. Validation failures happen before any gateway call or write.
func (o *Orchestrator) Process(ctx context.Context, upload *Upload) (*models.Recording, error) {
	if upload == nil || !allowedTypes[upload.ContentType] {
		return nil, ErrInvalidFileType
	}
	if upload.Size > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	media, err := io.ReadAll(upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	result, err := o.gateway.Transcribe(ctx, bytes.NewReader(media), upload.ContentType)
	if err != nil {
		return nil, err
	}

	rec := &models.Recording{
		ID:            uuid.NewString(),
		Filename:      upload.Filename,
		FileSize:      upload.Size,
		FileType:      upload.ContentType,
		Duration:      result.Duration,
		WordCount:     result.WordCount,
		SpeakerCount:  result.SpeakerCount,
		Transcription: result.Transcript,
		CreatedAt:     time.Now().UTC(),
	}

	if err := o.recordings.CreateRecording(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to persist recording: %w", err)
	}

	// Archive after the insert so a storage hiccup never costs the row.
	if o.archive != nil {
		if _, err := o.archive.Save(rec.ID, rec.Filename, media); err != nil {
			slog.Warn("Failed to archive upload media", "recording_id", rec.ID, "error", err)
		}
	}

	return rec, nil
}
