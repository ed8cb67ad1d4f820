package qa

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/evolvetech/opsdash/models"
	"github.com/evolvetech/opsdash/transcription"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	result *transcription.Result
	err    error
	calls  int
}

func (f *fakeGateway) Transcribe(ctx context.Context, media io.Reader, contentType string) (*transcription.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStore struct {
	created []*models.Recording
	err     error
}

func (f *fakeStore) CreateRecording(ctx context.Context, rec *models.Recording) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, rec)
	return nil
}

type fakeArchive struct {
	saved map[string][]byte
	err   error
}

func (f *fakeArchive) Save(recordingID, filename string, media []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[recordingID] = media
	return "/tmp/" + recordingID, nil
}

func validUpload() *Upload {
	return &Upload{
		Filename:    "standup.mp3",
		Size:        10 * 1024 * 1024,
		ContentType: "audio/mpeg",
		Data:        strings.NewReader("fake-audio-bytes"),
	}
}

func helloWorldResult() *transcription.Result {
	return &transcription.Result{
		Transcript:   "hello world",
		Duration:     3.2,
		WordCount:    2,
		SpeakerCount: 1,
	}
}

func TestProcess_Success(t *testing.T) {
	gateway := &fakeGateway{result: helloWorldResult()}
	store := &fakeStore{}
	archive := &fakeArchive{}
	o := NewOrchestrator(gateway, store, archive)

	rec, err := o.Process(context.Background(), validUpload())
	require.NoError(t, err)

	_, err = uuid.Parse(rec.ID)
	assert.NoError(t, err, "recording id must be a freshly generated uuid")

	assert.Equal(t, "standup.mp3", rec.Filename)
	assert.Equal(t, int64(10*1024*1024), rec.FileSize)
	assert.Equal(t, "audio/mpeg", rec.FileType)
	assert.Equal(t, 3.2, rec.Duration)
	assert.Equal(t, 2, rec.WordCount)
	assert.Equal(t, 1, rec.SpeakerCount)
	assert.Equal(t, "hello world", rec.Transcription)

	// Exactly one row, and the media was archived under the new id.
	require.Len(t, store.created, 1)
	assert.Equal(t, rec, store.created[0])
	assert.Equal(t, []byte("fake-audio-bytes"), archive.saved[rec.ID])
}

func TestProcess_DisallowedType_NoSideEffects(t *testing.T) {
	gateway := &fakeGateway{result: helloWorldResult()}
	store := &fakeStore{}
	o := NewOrchestrator(gateway, store, nil)

	upload := validUpload()
	upload.ContentType = "application/pdf"

	_, err := o.Process(context.Background(), upload)
	assert.ErrorIs(t, err, ErrInvalidFileType)
	assert.Zero(t, gateway.calls, "gateway must not be called for a disallowed type")
	assert.Empty(t, store.created)
}

func TestProcess_TooLarge_NoSideEffects(t *testing.T) {
	gateway := &fakeGateway{result: helloWorldResult()}
	store := &fakeStore{}
	o := NewOrchestrator(gateway, store, nil)

	upload := validUpload()
	upload.Size = MaxUploadBytes + 1

	_, err := o.Process(context.Background(), upload)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Zero(t, gateway.calls)
	assert.Empty(t, store.created)
}

func TestProcess_GatewayFailure_NothingPersisted(t *testing.T) {
	gateway := &fakeGateway{err: transcription.ErrUnavailable}
	store := &fakeStore{}
	o := NewOrchestrator(gateway, store, &fakeArchive{})

	_, err := o.Process(context.Background(), validUpload())
	assert.ErrorIs(t, err, transcription.ErrUnavailable)
	assert.Empty(t, store.created, "no row may be created when the gateway fails")
}

func TestProcess_StoreFailure(t *testing.T) {
	gateway := &fakeGateway{result: helloWorldResult()}
	store := &fakeStore{err: errors.New("connection reset")}
	o := NewOrchestrator(gateway, store, nil)

	_, err := o.Process(context.Background(), validUpload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist recording")
}

func TestProcess_ArchiveFailureDoesNotFailTheUpload(t *testing.T) {
	gateway := &fakeGateway{result: helloWorldResult()}
	store := &fakeStore{}
	o := NewOrchestrator(gateway, store, &fakeArchive{err: errors.New("disk full")})

	rec, err := o.Process(context.Background(), validUpload())
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, rec.ID, store.created[0].ID)
}
