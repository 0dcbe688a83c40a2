package extract

import "testing"

func TestRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid json untouched",
			input: `{"a": [1, 2], "b": {"c": null}}`,
			want:  `{"a": [1, 2], "b": {"c": null}}`,
		},
		{
			name:  "trailing comma in object",
			input: `{"a": 1,}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "trailing comma in array with whitespace",
			input: "[1, 2,\n  ]",
			want:  "[1, 2\n  ]",
		},
		{
			name:  "repeated trailing commas",
			input: `[1,,]`,
			want:  `[1]`,
		},
		{
			name:  "bare keys",
			input: `{a: 1, b_2: {$c: true}}`,
			want:  `{"a": 1, "b_2": {"$c": true}}`,
		},
		{
			name:  "bare key with space before colon",
			input: `{ daily_plan : {} }`,
			want:  `{ "daily_plan" : {} }`,
		},
		{
			name:  "hyphenated key",
			input: `{check-in: "14:00"}`,
			want:  `{"check-in": "14:00"}`,
		},
		{
			name:  "commas inside strings untouched",
			input: `{"note": "a,]b,}"}`,
			want:  `{"note": "a,]b,}"}`,
		},
		{
			name:  "colons inside strings untouched",
			input: `{"url": "https://example.com:8080/x", k: "v"}`,
			want:  `{"url": "https://example.com:8080/x", "k": "v"}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"q": "say \"x: y\",}", z: 1,}`,
			want:  `{"q": "say \"x: y\",}", "z": 1}`,
		},
		{
			name:  "literals in arrays not quoted",
			input: `[true, null, false]`,
			want:  `[true, null, false]`,
		},
		{
			name:  "bare values not quoted",
			input: `{"a": yes}`,
			want:  `{"a": yes}`,
		},
		{
			name:  "prose left alone",
			input: `Note: see below, then go`,
			want:  `Note: see below, then go`,
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Repair(tt.input); got != tt.want {
				t.Errorf("Repair(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRepair_Idempotent(t *testing.T) {
	inputs := []string{
		`{a: 1, b: [1, 2,],}`,
		`{"x": {y: [,]}, z: "w: ,}"}`,
		`[1,,2,,]`,
		`{ key : value , }`,
		"```json\n{flights: [],}\n```",
		`{"unterminated: "string`,
	}

	for _, input := range inputs {
		once := Repair(input)
		twice := Repair(once)
		if once != twice {
			t.Errorf("Repair is not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}
