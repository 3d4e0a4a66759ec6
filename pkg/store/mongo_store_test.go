package store

import (
	"encoding/json"
	"reflect"
	"testing"

	"dialoguehub/pkg/domain"
	"go.mongodb.org/mongo-driver/bson"
)

func TestHighlightsBSONRoundTripKeepsClientShape(t *testing.T) {
	in := []domain.Highlight{
		domain.Highlight(`{"russian":"a","translation":"b","date":"2024-01-02"}`),
		domain.Highlight(`{"russian":"c","note":"keep me","tags":["x","y"],"score":2.5}`),
		domain.Highlight(`"loose string"`),
	}
	value, err := highlightsToBSON(in)
	if err != nil {
		t.Fatalf("to bson: %v", err)
	}
	if value.Type != bson.TypeArray {
		t.Fatalf("expected a BSON array, got %v", value.Type)
	}
	out, err := highlightsFromBSON(value)
	if err != nil {
		t.Fatalf("from bson: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d highlights, got %d", len(in), len(out))
	}
	for i := range in {
		var want, got any
		if err := json.Unmarshal(in[i], &want); err != nil {
			t.Fatalf("decode input %d: %v", i, err)
		}
		if err := json.Unmarshal(out[i], &got); err != nil {
			t.Fatalf("decode output %d: %v", i, err)
		}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("highlight %d changed: want %s, got %s", i, in[i], out[i])
		}
	}
}

func TestHighlightsFromMissingField(t *testing.T) {
	out, err := highlightsFromBSON(bson.RawValue{})
	if err != nil {
		t.Fatalf("from bson: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", out)
	}
}
