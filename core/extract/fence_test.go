package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Fence
	}{
		{
			name:  "no fences",
			input: `{"a": 1}`,
			want:  nil,
		},
		{
			name:  "json tagged",
			input: "text\n```json\n{\"a\": 1}\n```\nmore",
			want:  []Fence{{Lang: "json", Body: `{"a": 1}`}},
		},
		{
			name:  "untagged",
			input: "```\n{\"a\": 1}\n```",
			want:  []Fence{{Lang: "", Body: `{"a": 1}`}},
		},
		{
			name:  "single line",
			input: "```json{\"a\": 1}```",
			want:  []Fence{{Lang: "json", Body: `{"a": 1}`}},
		},
		{
			name:  "single line bare keys keep the first word",
			input: "```flights: [], hotels: []```",
			want:  []Fence{{Lang: "", Body: "flights: [], hotels: []"}},
		},
		{
			name:  "word then space then brace is body",
			input: "```plan {\"a\": 1}```",
			want:  []Fence{{Lang: "", Body: `plan {"a": 1}`}},
		},
		{
			name:  "tag with trailing spaces",
			input: "```json  \n{}\n```",
			want:  []Fence{{Lang: "json", Body: "{}"}},
		},
		{
			name:  "tag only",
			input: "```json```",
			want:  []Fence{{Lang: "json", Body: ""}},
		},
		{
			name:  "uppercase tag sorted first",
			input: "```text\nhello\n```\n```JSON\n{}\n```",
			want: []Fence{
				{Lang: "JSON", Body: "{}"},
				{Lang: "text", Body: "hello"},
			},
		},
		{
			name:  "document order kept within groups",
			input: "```\n1\n```\n```json\n2\n```\n```\n3\n```\n```json\n4\n```",
			want: []Fence{
				{Lang: "json", Body: "2"},
				{Lang: "json", Body: "4"},
				{Lang: "", Body: "1"},
				{Lang: "", Body: "3"},
			},
		},
		{
			name:  "unpaired opening marker ignored",
			input: "```json\n{\"a\": 1}",
			want:  nil,
		},
		{
			name:  "third marker without partner ignored",
			input: "```\n{}\n```\n```json\n{",
			want:  []Fence{{Lang: "", Body: "{}"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Fences(tt.input)); diff != "" {
				t.Errorf("Fences() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBraceSpan(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"object", `{"a": 1}`, `{"a": 1}`, true},
		{"prose around", `Here: {"a": {"b": 2}} done.`, `{"a": {"b": 2}}`, true},
		{"first and last", `{"a": 1} and {"b": 2}`, `{"a": 1} and {"b": 2}`, true},
		{"no braces", "plain text", "", false},
		{"only opening", "{ open", "", false},
		{"reversed", "} {", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BraceSpan(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("BraceSpan(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
