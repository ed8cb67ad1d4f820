package models

import "time"

// Recording is one transcribed upload. Rows are append-only: created once
// per successful transcription, never updated, removed only by explicit
// deletion.
type Recording struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	FileSize      int64     `json:"file_size"`
	FileType      string    `json:"file_type"`
	Duration      float64   `json:"duration"`
	WordCount     int       `json:"word_count"`
	SpeakerCount  int       `json:"speaker_count"`
	Transcription string    `json:"transcription"`
	CreatedAt     time.Time `json:"created_at"`
}
