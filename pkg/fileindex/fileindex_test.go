package fileindex

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Entry
	}{
		{name: "audio7.mp3", want: Entry{Kind: Audio, Number: 7, Ext: "mp3"}},
		{name: "AUDIO12.WAV", want: Entry{Kind: Audio, Number: 12, Ext: "wav"}},
		{name: "audio3.webm", want: Entry{Kind: Audio, Number: 3, Ext: "webm"}},
		{name: "audio007.mp3", want: Entry{Kind: Audio, Number: 7, Ext: "mp3"}},
		{name: "audio7.ogg", want: Entry{Kind: Unrecognized}},
		{name: "myaudio7.mp3", want: Entry{Kind: Unrecognized}},
		{name: "audio.mp3", want: Entry{Kind: Unrecognized}},
		{name: "transcript7.txt", want: Entry{Kind: Transcript, Number: 7}},
		{name: "Transcript7.TXT", want: Entry{Kind: Transcript, Number: 7}},
		{name: "transcript7.txt.bak", want: Entry{Kind: Unrecognized}},
		{name: "highlights4.json", want: Entry{Kind: Highlights, Number: 4}},
		{name: "highlights4.jsonl", want: Entry{Kind: Unrecognized}},
		{name: "notes.txt", want: Entry{Kind: Unrecognized}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Parse(tc.name); got != tc.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tc.name, got, tc.want)
			}
		})
	}
}

func TestPrefixOnlyMatcher(t *testing.T) {
	m := NewMatcher(nil)
	got := m.Parse("audio9 - final take.m4a")
	if got.Kind != Audio || got.Number != 9 {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if got := m.Parse("transcript9.txt"); got.Kind != Transcript {
		t.Fatalf("transcript should still match, got %+v", got)
	}
}

func TestCustomExtensions(t *testing.T) {
	m := NewMatcher([]string{".M4A", " ogg "})
	if got := m.Parse("audio1.m4a"); got.Kind != Audio {
		t.Fatalf("expected m4a audio, got %+v", got)
	}
	if got := m.Parse("audio1.mp3"); got.Kind != Unrecognized {
		t.Fatalf("mp3 should not match custom set, got %+v", got)
	}
}

func TestGroup(t *testing.T) {
	m := NewMatcher(DefaultAudioExtensions)
	idx := m.Group([]File{
		{ID: "a7", Name: "audio7.mp3"},
		{ID: "t7", Name: "transcript7.txt"},
		{ID: "a8", Name: "audio8.mp3"},
		{ID: "x", Name: "cover.png"},
		{ID: "h7", Name: "highlights7.json"},
	})
	want := Index{
		7: {AudioID: "a7", TranscriptID: "t7", HighlightsID: "h7"},
		8: {AudioID: "a8"},
	}
	if !reflect.DeepEqual(idx, want) {
		t.Fatalf("index = %+v, want %+v", idx, want)
	}
}

func TestGroupLastSeenWins(t *testing.T) {
	idx := NewMatcher(DefaultAudioExtensions).Group([]File{
		{ID: "first", Name: "audio2.mp3"},
		{ID: "second", Name: "audio2.wav"},
	})
	if idx[2].AudioID != "second" {
		t.Fatalf("audio id = %q, want second", idx[2].AudioID)
	}
}

func TestNumbersSortedNumerically(t *testing.T) {
	idx := Index{10: {}, 2: {}, 1: {}}
	if got := idx.Numbers(); !reflect.DeepEqual(got, []int{1, 2, 10}) {
		t.Fatalf("numbers = %v, want [1 2 10]", got)
	}
}

func TestNames(t *testing.T) {
	if got := TranscriptName(5); got != "transcript5.txt" {
		t.Fatalf("transcript name = %q", got)
	}
	if got := HighlightsName(5); got != "highlights5.json" {
		t.Fatalf("highlights name = %q", got)
	}
}
