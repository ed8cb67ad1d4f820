package tableview

import (
	"testing"
	"time"

	"github.com/evolvetech/opsdash/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecordings() []models.Recording {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.Recording{
		{ID: "r1", Filename: "standup.mp3", Duration: 300, WordCount: 900, SpeakerCount: 4, Transcription: "daily standup notes", CreatedAt: base},
		{ID: "r2", Filename: "Interview.mp4", Duration: 1800, WordCount: 5200, SpeakerCount: 2, Transcription: "candidate interview", CreatedAt: base.Add(time.Hour)},
		{ID: "r3", Filename: "all-hands.wav", Duration: 2400, WordCount: 7000, SpeakerCount: 6, Transcription: "quarterly all hands", CreatedAt: base.Add(2 * time.Hour)},
	}
}

func ids(recs []models.Recording) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestSort_ByDuration(t *testing.T) {
	recs := sampleRecordings()

	asc := Sort(recs, SortByDuration, Ascending)
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(asc))

	desc := Sort(recs, SortByDuration, Descending)
	assert.Equal(t, []string{"r3", "r2", "r1"}, ids(desc))
}

func TestSort_ByFilenameCaseInsensitive(t *testing.T) {
	recs := sampleRecordings()

	asc := Sort(recs, SortByFilename, Ascending)
	assert.Equal(t, []string{"r3", "r2", "r1"}, ids(asc)) // all-hands < interview < standup
}

func TestSort_UnknownFieldFallsBackToCreatedAt(t *testing.T) {
	recs := sampleRecordings()

	got := Sort(recs, SortField("bogus"), Descending)
	assert.Equal(t, []string{"r3", "r2", "r1"}, ids(got))
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	recs := sampleRecordings()
	_ = Sort(recs, SortByWordCount, Descending)
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(recs))
}

func TestFilter(t *testing.T) {
	recs := sampleRecordings()

	assert.Equal(t, []string{"r2"}, ids(Filter(recs, "INTERVIEW")))
	assert.Equal(t, []string{"r3"}, ids(Filter(recs, "quarterly")))
	assert.Empty(t, Filter(recs, "nonexistent"))
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(Filter(recs, "")))
}

func TestPaginate(t *testing.T) {
	recs := sampleRecordings()

	page1 := Paginate(recs, 1, 2)
	require.Len(t, page1, 2)
	assert.Equal(t, []string{"r1", "r2"}, ids(page1))

	page2 := Paginate(recs, 2, 2)
	assert.Equal(t, []string{"r3"}, ids(page2))

	assert.Empty(t, Paginate(recs, 3, 2))
	assert.Equal(t, []string{"r1", "r2", "r3"}, ids(Paginate(recs, 1, 0)))
	assert.Equal(t, []string{"r1", "r2"}, ids(Paginate(recs, 0, 2)))
}
