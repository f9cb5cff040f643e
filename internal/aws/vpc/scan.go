package vpc

import "strings"

// The scanners in this file work on raw response text without parsing it.
// They never panic and never fail hard: a missing or truncated field is
// reported through the ok result and the caller decides what to skip.

// Delim selects the pair of delimiters that BalancedSpan matches.
type Delim int

const (
	Brackets Delim = iota
	Braces
)

func (d Delim) pair() (open, close byte) {
	if d == Braces {
		return '{', '}'
	}
	return '[', ']'
}

// FindValue returns the string value of the first occurrence of "key" that is
// followed by a colon and a quoted string. Occurrences with non-string values
// are passed over.
func FindValue(blob, key string) (string, bool) {
	v, _, _, ok := findValueAt(blob, key, 0)
	return v, ok
}

// findValueAt is FindValue starting at from. It also returns the offset of the
// key token and the offset just past the closing quote of the value.
func findValueAt(blob, key string, from int) (value string, keyAt, end int, ok bool) {
	if from < 0 || from >= len(blob) || key == "" {
		return "", 0, 0, false
	}
	token := `"` + key + `"`
	for from < len(blob) {
		i := strings.Index(blob[from:], token)
		if i < 0 {
			return "", 0, 0, false
		}
		keyAt = from + i
		pos := skipSpace(blob, keyAt+len(token))
		from = keyAt + len(token)
		if pos >= len(blob) || blob[pos] != ':' {
			continue
		}
		pos = skipSpace(blob, pos+1)
		if pos >= len(blob) || blob[pos] != '"' {
			continue
		}
		closeAt, closed := closingQuote(blob, pos+1)
		if !closed {
			return "", 0, 0, false
		}
		return blob[pos+1 : closeAt], keyAt, closeAt + 1, true
	}
	return "", 0, 0, false
}

// FindLiteral returns the bare token (true, false, a number, null) that
// follows the first "key": occurrence with an unquoted value.
func FindLiteral(blob, key string) (string, bool) {
	token := `"` + key + `"`
	from := 0
	for from < len(blob) {
		i := strings.Index(blob[from:], token)
		if i < 0 {
			return "", false
		}
		from += i + len(token)
		pos := skipSpace(blob, from)
		if pos >= len(blob) || blob[pos] != ':' {
			continue
		}
		pos = skipSpace(blob, pos+1)
		end := pos
		for end < len(blob) && isLiteralByte(blob[end]) {
			end++
		}
		if end > pos {
			return blob[pos:end], true
		}
	}
	return "", false
}

// FindBool reports the boolean value of the first "key": true|false pair.
func FindBool(blob, key string) (value, ok bool) {
	lit, found := FindLiteral(blob, key)
	switch {
	case !found:
		return false, false
	case lit == "true":
		return true, true
	case lit == "false":
		return false, true
	}
	return false, false
}

// BalancedSpan matches delimiters from blob[start:] and returns the offset one
// past the close that brings the depth back to zero. Closers seen before any
// opener are ignored and delimiters inside quoted strings are not counted.
func BalancedSpan(blob string, start int, mode Delim) (int, bool) {
	if start < 0 || start >= len(blob) {
		return 0, false
	}
	open, close := mode.pair()
	depth := 0
	inString := false
	for i := start; i < len(blob); i++ {
		c := blob[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// NextBlock finds the next opener at or after from and returns the span
// [start, end) of its balanced block.
func NextBlock(blob string, from int, mode Delim) (start, end int, ok bool) {
	if from < 0 || from >= len(blob) {
		return 0, 0, false
	}
	open, _ := mode.pair()
	i := strings.IndexByte(blob[from:], open)
	if i < 0 {
		return 0, 0, false
	}
	start = from + i
	end, ok = BalancedSpan(blob, start, mode)
	if !ok {
		return 0, 0, false
	}
	return start, end, true
}

// nextSlot returns the next sibling block of a row at or after from. A null
// in the slot yields an empty block so later slots keep their positions.
func nextSlot(row string, from int) (block string, end int, ok bool) {
	if from < 0 || from > len(row) {
		return "", from, false
	}
	i := skipSpace(row, from)
	if i < len(row) && row[i] == ',' {
		i = skipSpace(row, i+1)
	}
	if strings.HasPrefix(row[i:], "null") {
		return "", i + len("null"), true
	}
	start, stop, ok := NextBlock(row, from, Brackets)
	if !ok {
		return "", from, false
	}
	return row[start:stop], stop, true
}

// nextID finds the next quoted string starting with prefix at or after from
// and returns it together with the offset past its closing quote.
func nextID(blob, prefix string, from int) (id string, end int, ok bool) {
	token := `"` + prefix
	for from >= 0 && from < len(blob) {
		i := strings.Index(blob[from:], token)
		if i < 0 {
			return "", 0, false
		}
		begin := from + i + 1
		closeAt, closed := closingQuote(blob, begin)
		if !closed {
			return "", 0, false
		}
		from = closeAt + 1
		// a key such as "igw-..." followed by a colon is not a value
		if next := skipSpace(blob, from); next < len(blob) && blob[next] == ':' {
			continue
		}
		return blob[begin:closeAt], closeAt + 1, true
	}
	return "", 0, false
}

// enclosingObject returns the bounds of the innermost {...} that surrounds at,
// falling back to the blob edges when there is none. floor caps how far back
// the search may look.
func enclosingObject(blob string, at, floor int) (lo, hi int) {
	lo = strings.LastIndexByte(blob[:at], '{')
	if lo < floor {
		lo = floor
	}
	if lo < len(blob) && blob[lo] == '{' {
		if end, ok := BalancedSpan(blob, lo, Braces); ok && end > at {
			return lo, end
		}
	}
	return lo, objectClose(blob, at)
}

// objectClose returns the offset of the first } at or after from that is not
// inside a quoted string, or len(blob).
func objectClose(blob string, from int) int {
	for i := from; i < len(blob); i++ {
		switch blob[i] {
		case '"':
			end, ok := closingQuote(blob, i+1)
			if !ok {
				return len(blob)
			}
			i = end
		case '}':
			return i
		}
	}
	return len(blob)
}

func closingQuote(blob string, from int) (int, bool) {
	for i := from; i < len(blob); i++ {
		switch blob[i] {
		case '\\':
			i++
		case '"':
			return i, true
		}
	}
	return 0, false
}

func skipSpace(blob string, i int) int {
	for i < len(blob) {
		switch blob[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func isLiteralByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-' || c == '.'
}
