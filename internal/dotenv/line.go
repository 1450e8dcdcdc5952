package dotenv

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LineKind tells whether a line declares a key
type LineKind int

const (
	Inert       LineKind = iota // No '=', empty key, or key not valid UTF-8
	Declaration                 // KEY=value, possibly disabled with '#'
)

func (k LineKind) String() string {
	if k == Declaration {
		return "declaration"
	}
	return "inert"
}

// Line is the parse result for one physical line of the buffer
type Line struct {
	Kind       LineKind
	Start      int // first byte of the line
	End        int // end of content, trailing '\r' and '\n' excluded
	Next       int // first byte of the following line, or len(buf)
	Key        string
	ValueStart int // only set for declarations
}

// Entry converts a declaration line into an index entry
func (l Line) Entry() Entry {
	return Entry{
		Key:        l.Key,
		LineStart:  l.Start,
		ValueStart: l.ValueStart,
		ValueEnd:   l.End,
	}
}

// ParseLine parses the line beginning at start
func ParseLine(buf []byte, start int) Line {
	line := Line{Kind: Inert, Start: start, End: len(buf), Next: len(buf)}

	if nl := bytes.IndexByte(buf[start:], '\n'); nl >= 0 {
		line.End = start + nl
		line.Next = start + nl + 1
	}
	for line.End > start && buf[line.End-1] == '\r' {
		line.End--
	}

	eq := bytes.IndexByte(buf[start:line.End], '=')
	if eq < 0 {
		return line
	}

	keyPart := buf[start : start+eq]
	if !utf8.Valid(keyPart) {
		return line
	}
	key := strings.TrimLeftFunc(string(keyPart), isKeyPrefix)
	if key == "" {
		return line
	}

	line.Kind = Declaration
	line.Key = key
	line.ValueStart = start + eq + 1
	return line
}

// Lines splits the whole buffer into parsed lines
func Lines(buf []byte) []Line {
	var lines []Line
	for start := 0; start < len(buf); {
		line := ParseLine(buf, start)
		lines = append(lines, line)
		start = line.Next
	}
	return lines
}

func isKeyPrefix(r rune) bool {
	return r == '#' || unicode.IsSpace(r)
}

// isComment reports whether the line's first non-blank byte is '#'
func isComment(buf []byte, l Line) bool {
	content := bytes.TrimLeft(buf[l.Start:l.End], " \t")
	return len(content) > 0 && content[0] == '#'
}
