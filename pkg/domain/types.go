package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Mode selects where transcripts and highlights live and how the dialogue
// list is reconciled.
type Mode string

const (
	// ModeFiles keeps transcripts and highlights as files in the folder.
	ModeFiles Mode = "files"
	// ModeHybrid lists complete audio/transcript pairs and keeps highlights in the database.
	ModeHybrid Mode = "hybrid"
	// ModeDatabase lists every audio file and keeps transcripts and highlights in the database.
	ModeDatabase Mode = "database"
)

// UsesDatabase reports whether the mode needs a record store.
func (m Mode) UsesDatabase() bool {
	return m == ModeHybrid || m == ModeDatabase
}

// Highlight is one element of a client-supplied highlight list, kept exactly
// as sent. Clients usually send {"russian", "translation", "date"} objects but
// no shape is enforced.
type Highlight = json.RawMessage

// WithDefaultDate adds a "date" key set to now when h is a JSON object that
// has none. Anything else is returned unchanged.
func WithDefaultDate(h Highlight, now time.Time) Highlight {
	trimmed := bytes.TrimSpace(h)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return h
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return h
	}
	if _, ok := fields["date"]; ok {
		return h
	}
	date, _ := json.Marshal(now.UTC().Format(time.RFC3339Nano))
	out := make([]byte, 0, len(trimmed)+len(date)+9)
	out = append(out, `{"date":`...)
	out = append(out, date...)
	if len(fields) > 0 {
		out = append(out, ',')
	}
	// Splice after the opening brace so the client's key order survives.
	out = append(out, bytes.TrimSpace(trimmed[1:])...)
	return out
}

type Dialogue struct {
	Number         int         `json:"number"`
	Title          string      `json:"title"`
	AudioDriveID   string      `json:"audioDriveId,omitempty"`
	TranscriptText string      `json:"transcriptText,omitempty"`
	Highlights     []Highlight `json:"highlights"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// DefaultTitle is the title given to records created implicitly.
func DefaultTitle(number int) string {
	return "Dialogue " + strconv.Itoa(number)
}

// Summary is one entry of the dialogue list. Which optional fields are set
// depends on the active Mode.
type Summary struct {
	Number        int    `json:"number"`
	Label         string `json:"label"`
	AudioID       string `json:"audioId,omitempty"`
	TranscriptID  string `json:"transcriptId,omitempty"`
	HighlightsID  string `json:"highlightsId,omitempty"`
	HasTranscript *bool  `json:"hasTranscript,omitempty"`
	HasHighlights *bool  `json:"hasHighlights,omitempty"`
}

// Content is the payload returned for a single dialogue.
type Content struct {
	Transcript string      `json:"transcript"`
	Highlights []Highlight `json:"highlights"`
}

// SaveResult reports the outcome of a highlight save. Files mode fills
// Status and FileID; database modes only set Success.
type SaveResult struct {
	Success bool   `json:"success,omitempty"`
	Status  string `json:"status,omitempty"`
	FileID  string `json:"fileId,omitempty"`
}
