package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/evolvetech/opsdash/models"
)

type RecordingRepository struct {
	db *sql.DB
}

func NewRecordingRepository(db *sql.DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

func (r *RecordingRepository) CreateRecording(ctx context.Context, rec *models.Recording) error {
	query := `
		INSERT INTO recordings (id, filename, file_size, file_type, duration, word_count, speaker_count, transcription)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Filename, rec.FileSize, rec.FileType,
		rec.Duration, rec.WordCount, rec.SpeakerCount, rec.Transcription,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recording: %w", err)
	}
	return nil
}

// GetRecordings returns the full table. No server-side ordering or paging is
// applied; the client sorts and filters the complete result set.
func (r *RecordingRepository) GetRecordings(ctx context.Context) ([]models.Recording, error) {
	query := `
		SELECT id, filename, file_size, file_type, duration, word_count, speaker_count, transcription, created_at
		FROM recordings
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer rows.Close()

	var recordings []models.Recording
	for rows.Next() {
		var rec models.Recording
		if err := rows.Scan(
			&rec.ID, &rec.Filename, &rec.FileSize, &rec.FileType,
			&rec.Duration, &rec.WordCount, &rec.SpeakerCount, &rec.Transcription, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recording row: %w", err)
		}
		recordings = append(recordings, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recording rows: %w", err)
	}

	return recordings, nil
}

// GetRecordingByID retrieves one recording. The returned error wraps
// sql.ErrNoRows when the id is unknown.
func (r *RecordingRepository) GetRecordingByID(ctx context.Context, id string) (*models.Recording, error) {
	query := `
		SELECT id, filename, file_size, file_type, duration, word_count, speaker_count, transcription, created_at
		FROM recordings
		WHERE id = $1
	`
	var rec models.Recording
	row := r.db.QueryRowContext(ctx, query, id)
	err := row.Scan(
		&rec.ID, &rec.Filename, &rec.FileSize, &rec.FileType,
		&rec.Duration, &rec.WordCount, &rec.SpeakerCount, &rec.Transcription, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recording not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get recording by ID: %w", err)
	}
	return &rec, nil
}

// DeleteRecording removes the row and returns its id. The returned error
// wraps sql.ErrNoRows when the id matched nothing; the store is unchanged in
// that case.
func (r *RecordingRepository) DeleteRecording(ctx context.Context, id string) (string, error) {
	query := `
		DELETE FROM recordings
		WHERE id = $1
		RETURNING id
	`
	var deletedID string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&deletedID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("recording not found: %w", err)
		}
		return "", fmt.Errorf("failed to delete recording: %w", err)
	}
	return deletedID, nil
}
