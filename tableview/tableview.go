// Package tableview provides the pure derivation functions behind the
// recordings table: sorting, filtering, and pagination over the full list
// the API returns. None of the functions mutate their input.
package tableview

import (
	"sort"
	"strings"

	"github.com/evolvetech/opsdash/models"
)

type SortField string

const (
	SortByFilename     SortField = "filename"
	SortByDuration     SortField = "duration"
	SortByWordCount    SortField = "word_count"
	SortBySpeakerCount SortField = "speaker_count"
	SortByCreatedAt    SortField = "created_at"
)

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Sort returns a copy of recordings ordered by the given field. Unknown
// fields fall back to created_at. The sort is stable, so equal rows keep
// their incoming order.
func Sort(recordings []models.Recording, field SortField, direction SortDirection) []models.Recording {
	sorted := make([]models.Recording, len(recordings))
	copy(sorted, recordings)

	less := lessFunc(field)
	sort.SliceStable(sorted, func(i, j int) bool {
		if direction == Descending {
			return less(sorted[j], sorted[i])
		}
		return less(sorted[i], sorted[j])
	})

	return sorted
}

func lessFunc(field SortField) func(a, b models.Recording) bool {
	switch field {
	case SortByFilename:
		return func(a, b models.Recording) bool {
			return strings.ToLower(a.Filename) < strings.ToLower(b.Filename)
		}
	case SortByDuration:
		return func(a, b models.Recording) bool { return a.Duration < b.Duration }
	case SortByWordCount:
		return func(a, b models.Recording) bool { return a.WordCount < b.WordCount }
	case SortBySpeakerCount:
		return func(a, b models.Recording) bool { return a.SpeakerCount < b.SpeakerCount }
	default:
		return func(a, b models.Recording) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
}

// Filter returns the recordings whose filename or transcript contains the
// query, case-insensitively. An empty query returns a copy of the input.
func Filter(recordings []models.Recording, query string) []models.Recording {
	filtered := make([]models.Recording, 0, len(recordings))
	query = strings.ToLower(strings.TrimSpace(query))

	for _, rec := range recordings {
		if query == "" ||
			strings.Contains(strings.ToLower(rec.Filename), query) ||
			strings.Contains(strings.ToLower(rec.Transcription), query) {
			filtered = append(filtered, rec)
		}
	}

	return filtered
}

// Paginate returns the 1-based page of the given size. Out-of-range pages
// yield an empty slice; a non-positive size yields everything.
func Paginate(recordings []models.Recording, page, pageSize int) []models.Recording {
	if pageSize <= 0 {
		out := make([]models.Recording, len(recordings))
		copy(out, recordings)
		return out
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(recordings) {
		return []models.Recording{}
	}

	end := start + pageSize
	if end > len(recordings) {
		end = len(recordings)
	}

	out := make([]models.Recording, end-start)
	copy(out, recordings[start:end])
	return out
}
