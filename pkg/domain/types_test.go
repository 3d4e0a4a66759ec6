package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWithDefaultDate(t *testing.T) {
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"adds missing date", `{"russian":"да","translation":"yes"}`, `{"date":"2025-03-04T05:06:07Z","russian":"да","translation":"yes"}`},
		{"empty object", `{}`, `{"date":"2025-03-04T05:06:07Z"}`},
		{"keeps client date", `{"russian":"a","date":"2024-01-02"}`, `{"russian":"a","date":"2024-01-02"}`},
		{"keeps null date", `{"date":null}`, `{"date":null}`},
		{"non object untouched", `"just a string"`, `"just a string"`},
		{"array untouched", `[1,2]`, `[1,2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithDefaultDate(Highlight(tt.in), now)
			if string(got) != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
			if !json.Valid(got) {
				t.Fatalf("result is not valid JSON: %s", got)
			}
		})
	}
}
