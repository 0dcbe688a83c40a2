package extract

import "strings"

// Repair applies two narrow syntax fixes to text, both only outside string
// literals:
//
//   - a comma whose next significant byte (skipping whitespace and further
//     commas) is ']' or '}' is dropped
//   - a bare identifier that follows '{' or ',' and is itself followed by ':'
//     is wrapped in double quotes
//
// Repair is idempotent and the two fixes do not interact, so the order they
// are applied in does not matter. Values are never rewritten, which keeps
// strings such as URLs intact.
func Repair(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	inString := false
	escaped := false
	var lastSignificant byte

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			b.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				lastSignificant = c
			}
			continue
		}

		switch {
		case c == '"':
			inString = true

		case c == ',':
			if closesAfterCommas(text, i+1) {
				continue
			}

		case isIdentStart(c) && (lastSignificant == '{' || lastSignificant == ','):
			end := i + 1
			for end < len(text) && isIdentPart(text[end]) {
				end++
			}
			if next := skipSpace(text, end); next < len(text) && text[next] == ':' {
				b.WriteByte('"')
				b.WriteString(text[i:end])
				b.WriteByte('"')
				lastSignificant = '"'
			} else {
				b.WriteString(text[i:end])
				lastSignificant = text[end-1]
			}
			i = end - 1
			continue
		}

		b.WriteByte(c)
		if !isSpace(c) {
			lastSignificant = c
		}
	}

	return b.String()
}

// closesAfterCommas reports whether the next byte at or after from that is
// neither whitespace nor a comma closes an array or object.
func closesAfterCommas(text string, from int) bool {
	for i := from; i < len(text); i++ {
		switch c := text[i]; {
		case c == ',' || isSpace(c):
			continue
		case c == ']' || c == '}':
			return true
		default:
			return false
		}
	}
	return false
}

func skipSpace(text string, from int) int {
	for from < len(text) && isSpace(text[from]) {
		from++
	}
	return from
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}
