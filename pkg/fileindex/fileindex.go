// Package fileindex classifies folder file names by the audioN / transcriptN /
// highlightsN naming convention and groups them by dialogue number.
package fileindex

import (
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Kind is the role a file plays for a dialogue.
type Kind int

const (
	Unrecognized Kind = iota
	Audio
	Transcript
	Highlights
)

func (k Kind) String() string {
	switch k {
	case Audio:
		return "audio"
	case Transcript:
		return "transcript"
	case Highlights:
		return "highlights"
	default:
		return "unrecognized"
	}
}

// DefaultAudioExtensions is the extension set accepted for audio files.
var DefaultAudioExtensions = []string{"mp3", "wav", "webm"}

var (
	transcriptPattern = regexp.MustCompile(`(?i)^transcript(\d+)\.txt$`)
	highlightsPattern = regexp.MustCompile(`(?i)^highlights(\d+)\.json$`)
	audioPrefix       = regexp.MustCompile(`(?i)^audio(\d+)(.*)$`)
)

// Entry is the parsed form of a single file name. Number and Ext are only
// meaningful when Kind is not Unrecognized; Ext is set for audio files only.
type Entry struct {
	Kind   Kind
	Number int
	Ext    string
}

// File is an (id, name) pair taken from a folder listing.
type File struct {
	ID   string
	Name string
}

// Group collects the file ids that belong to one dialogue number.
type Group struct {
	AudioID      string
	TranscriptID string
	HighlightsID string
}

// Index maps a dialogue number to its files.
type Index map[int]Group

// Matcher parses names against a configured audio extension set.
type Matcher struct {
	audio *regexp.Regexp
}

// NewMatcher builds a matcher. An empty extension list accepts any suffix
// after the audioN prefix.
func NewMatcher(audioExtensions []string) *Matcher {
	exts := make([]string, 0, len(audioExtensions))
	for _, ext := range audioExtensions {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext == "" {
			continue
		}
		exts = append(exts, regexp.QuoteMeta(ext))
	}
	if len(exts) == 0 {
		return &Matcher{audio: audioPrefix}
	}
	return &Matcher{audio: regexp.MustCompile(`(?i)^audio(\d+)\.(` + strings.Join(exts, "|") + `)$`)}
}

// Parse classifies name with the default audio extension set.
func Parse(name string) Entry {
	return defaultMatcher.Parse(name)
}

var defaultMatcher = NewMatcher(DefaultAudioExtensions)

// Parse classifies a single file name.
func (m *Matcher) Parse(name string) Entry {
	if match := m.audio.FindStringSubmatch(name); match != nil {
		if n, ok := parseNumber(match[1]); ok {
			return Entry{Kind: Audio, Number: n, Ext: strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))}
		}
	}
	if match := transcriptPattern.FindStringSubmatch(name); match != nil {
		if n, ok := parseNumber(match[1]); ok {
			return Entry{Kind: Transcript, Number: n}
		}
	}
	if match := highlightsPattern.FindStringSubmatch(name); match != nil {
		if n, ok := parseNumber(match[1]); ok {
			return Entry{Kind: Highlights, Number: n}
		}
	}
	return Entry{Kind: Unrecognized}
}

// Group builds the per-number index. When several files share a role and
// number the last one in listing order wins.
func (m *Matcher) Group(files []File) Index {
	idx := make(Index)
	for _, f := range files {
		entry := m.Parse(f.Name)
		if entry.Kind == Unrecognized {
			continue
		}
		g := idx[entry.Number]
		switch entry.Kind {
		case Audio:
			g.AudioID = f.ID
		case Transcript:
			g.TranscriptID = f.ID
		case Highlights:
			g.HighlightsID = f.ID
		}
		idx[entry.Number] = g
	}
	return idx
}

// Numbers returns the index keys in ascending numeric order.
func (idx Index) Numbers() []int {
	out := make([]int, 0, len(idx))
	for n := range idx {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// TranscriptName is the exact file name holding the transcript of number.
func TranscriptName(number int) string {
	return "transcript" + strconv.Itoa(number) + ".txt"
}

// HighlightsName is the exact file name holding the highlights of number.
func HighlightsName(number int) string {
	return "highlights" + strconv.Itoa(number) + ".json"
}

func parseNumber(digits string) (int, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
