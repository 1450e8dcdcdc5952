package dotenv

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// State selects the direction of Toggle
type State int

const (
	Disable State = iota // Comment the declaration out with '#'
	Enable               // Remove one leading '#'
)

func (st State) String() string {
	if st == Enable {
		return "enable"
	}
	return "disable"
}

// Set replaces the value of key, or appends a new declaration when key is
// not indexed yet. Non-empty descriptions become "# <line>" comments directly
// above the declaration, replacing any comment block already there.
func (s *Store) Set(key string, value []byte, descriptions ...string) error {
	if err := checkValue(value, descriptions); err != nil {
		return err
	}

	e, ok := s.index[key]
	if !ok {
		if err := checkKey(key); err != nil {
			return err
		}
		s.create(key, value, descriptions)
		return s.Save()
	}

	lineStart := e.LineStart
	s.splice(e.ValueStart, e.ValueEnd, value)
	if len(descriptions) > 0 {
		blockStart := s.descriptionStart(lineStart)
		block := renderDescriptions(descriptions)
		s.splice(blockStart, lineStart, block)
		lineStart = blockStart + len(block)
	}
	s.reparse(key, lineStart)

	return s.Save()
}

func (s *Store) create(key string, value []byte, descriptions []string) {
	var decl []byte
	if len(s.buf) > 0 {
		decl = append(decl, '\n')
	}
	decl = append(decl, renderDescriptions(descriptions)...)
	lineStart := len(s.buf) + len(decl)
	decl = append(decl, key...)
	decl = append(decl, '=')
	decl = append(decl, value...)

	s.splice(len(s.buf), len(s.buf), decl)
	s.reparse(key, lineStart)
}

// Toggle comments out (Disable) or uncomments (Enable) the line of key.
// Disable always inserts a '#', so disabling twice nests the comment.
// Enable removes exactly one '#' and fails with ErrAlreadyEnabled when
// the line does not start with one.
func (s *Store) Toggle(key string, st State) error {
	e, ok := s.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	lineStart := e.LineStart
	switch st {
	case Disable:
		s.splice(lineStart, lineStart, []byte{'#'})
	case Enable:
		if s.buf[lineStart] != '#' {
			return fmt.Errorf("%w: %s", ErrAlreadyEnabled, key)
		}
		s.splice(lineStart, lineStart+1, nil)
	default:
		panic(fmt.Sprintf("dotenv: unknown toggle state %d", st))
	}
	s.reparse(key, lineStart)

	return s.Save()
}

// Delete removes the line declaring key together with its line break
func (s *Store) Delete(key string) error {
	e, ok := s.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	line := ParseLine(s.buf, e.LineStart)
	start, end := line.Start, line.Next
	if !endsWithNewline(s.buf[:end]) && start > 0 {
		// Last line without a terminator: take the preceding break instead
		start--
		if start > 0 && s.buf[start-1] == '\r' {
			start--
		}
	}

	delete(s.index, key)
	s.splice(start, end, nil)

	return s.Save()
}

// Restore replaces the whole buffer with data and rebuilds the index
func (s *Store) Restore(data []byte) error {
	s.buf = append([]byte(nil), data...)
	s.reindex()
	return s.Save()
}

// splice replaces buf[start:end] with repl and shifts every indexed offset
// that lies after the edit. For pure insertions an offset equal to start is
// left in place.
func (s *Store) splice(start, end int, repl []byte) {
	if start < 0 || start > end || end > len(s.buf) {
		panic(fmt.Sprintf("dotenv: splice [%d,%d) outside buffer of %d bytes", start, end, len(s.buf)))
	}

	delta := len(repl) - (end - start)
	s.buf = slices.Replace(s.buf, start, end, repl...)

	if delta != 0 {
		for _, e := range s.index {
			e.LineStart = shift(e.LineStart, start, end, delta)
			e.ValueStart = shift(e.ValueStart, start, end, delta)
			e.ValueEnd = shift(e.ValueEnd, start, end, delta)
		}
	}
	s.log.Debug("splice", "start", start, "end", end, "inserted", len(repl), "delta", delta)
}

func shift(off, start, end, delta int) int {
	if off >= end && off > start {
		return off + delta
	}
	return off
}

// reparse re-reads the declaration of key at lineStart into the index
func (s *Store) reparse(key string, lineStart int) {
	line := ParseLine(s.buf, lineStart)
	if line.Kind != Declaration || line.Key != key {
		panic(fmt.Sprintf("dotenv: line at offset %d no longer declares %q", lineStart, key))
	}
	entry := line.Entry()
	s.index[key] = &entry
}

// descriptionStart walks up from lineStart over comment lines that are not
// declarations and returns the first byte of that block. It returns
// lineStart when there is no block.
func (s *Store) descriptionStart(lineStart int) int {
	start := lineStart
	for start > 0 {
		prev := bytes.LastIndexByte(s.buf[:start-1], '\n') + 1
		line := ParseLine(s.buf, prev)
		if line.Kind == Declaration || !isComment(s.buf, line) {
			break
		}
		start = prev
	}
	return start
}

func renderDescriptions(descriptions []string) []byte {
	var block []byte
	for _, d := range descriptions {
		if d == "" {
			block = append(block, "#\n"...)
			continue
		}
		block = append(block, "# "...)
		block = append(block, d...)
		block = append(block, '\n')
	}
	return block
}

func endsWithNewline(b []byte) bool {
	return len(b) > 0 && b[len(b)-1] == '\n'
}

func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if !utf8.ValidString(key) || strings.ContainsAny(key, "=\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if strings.TrimLeftFunc(key, isKeyPrefix) != key {
		return fmt.Errorf("%w: %q starts with '#' or whitespace", ErrInvalidKey, key)
	}
	return nil
}

func checkValue(value []byte, descriptions []string) error {
	if bytes.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: value contains a line break", ErrInvalidValue)
	}
	for _, d := range descriptions {
		if strings.ContainsAny(d, "\r\n") {
			return fmt.Errorf("%w: description %q contains a line break", ErrInvalidValue, d)
		}
	}
	return nil
}
