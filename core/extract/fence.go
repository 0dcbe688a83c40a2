package extract

import "strings"

const fenceMarker = "```"

// Fence is one paired markdown code fence.
type Fence struct {
	// Lang is the info string right after the opening marker, e.g. "json".
	Lang string
	Body string
}

// Fences returns the paired code fences in text. Blocks tagged json
// (case-insensitive) come first, the rest follow in document order. An
// opening marker without a closing one is ignored.
func Fences(text string) []Fence {
	var tagged, untagged []Fence

	rest := text
	for {
		open := strings.Index(rest, fenceMarker)
		if open < 0 {
			break
		}
		inner := rest[open+len(fenceMarker):]
		closing := strings.Index(inner, fenceMarker)
		if closing < 0 {
			break
		}

		f := splitFence(inner[:closing])
		if strings.EqualFold(f.Lang, "json") {
			tagged = append(tagged, f)
		} else {
			untagged = append(untagged, f)
		}
		rest = inner[closing+len(fenceMarker):]
	}

	return append(tagged, untagged...)
}

// splitFence separates the language tag from the fenced body. A leading
// word is a tag only when the line ends right after it, or when a JSON
// value opens directly against it (```json{...}```). In ```a: 1``` the
// word is body.
func splitFence(block string) Fence {
	end := 0
	for end < len(block) && isLangByte(block[end]) {
		end++
	}
	if end == 0 {
		return Fence{Body: strings.TrimSpace(block)}
	}
	rest := block[end:]
	if next := strings.TrimLeft(rest, " \t"); next != "" {
		switch {
		case next[0] == '\n' || next[0] == '\r':
		case len(next) == len(rest) && (next[0] == '{' || next[0] == '['):
		default:
			return Fence{Body: strings.TrimSpace(block)}
		}
	}
	return Fence{
		Lang: block[:end],
		Body: strings.TrimSpace(rest),
	}
}

func isLangByte(c byte) bool {
	return isIdentPart(c) || c == '+' || c == '.'
}

// BraceSpan returns the text from the first '{' to the last '}' inclusive.
func BraceSpan(text string) (string, bool) {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first < 0 || last <= first {
		return "", false
	}
	return text[first : last+1], true
}
