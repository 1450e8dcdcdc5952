package diff

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	BinarySampleSize   = 8192 // Bytes to sample for text/binary detection
	BinaryThresholdPct = 10   // Max % non-printable chars for text files
	ContextLines       = 3    // Unchanged lines shown around each change
)

// ANSI colours used by Colorize
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
)

// Op is the kind of a diff line
type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

func (o Op) prefix() byte {
	switch o {
	case Delete:
		return '-'
	case Insert:
		return '+'
	}
	return ' '
}

// Line is one line of a line-level diff. Text excludes the line break;
// NoEOL marks a last line that had none.
type Line struct {
	Op    Op
	Text  string
	NoEOL bool
}

// IsText determines if data is likely text.
//
// Detection heuristic (in order):
//  1. Null bytes present → binary
//  2. Invalid UTF-8 → binary
//  3. >10% non-printable control chars → binary
func IsText(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	if bytes.IndexByte(data, 0) != -1 {
		return false
	}

	sample := data[:min(len(data), BinarySampleSize)]
	if !utf8.Valid(sample) {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		// Allow tab, newline, carriage return
		if b < 32 && b != 9 && b != 10 && b != 13 {
			nonPrintable++
		}
		if b == 127 {
			nonPrintable++
		}
	}

	threshold := len(sample) * BinaryThresholdPct / 100
	return nonPrintable <= threshold
}

// Lines computes the line-level diff turning before into after
func Lines(before, after []byte) []Line {
	dmp := diffmatchpatch.New()

	// Line-mode diff: each line becomes one rune, then back to text
	a, b, lineArray := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = Delete
		case diffmatchpatch.DiffInsert:
			op = Insert
		}
		lines = append(lines, splitLines(op, d.Text)...)
	}
	return lines
}

func splitLines(op Op, text string) []Line {
	var lines []Line
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i == -1 {
			lines = append(lines, Line{Op: op, Text: text, NoEOL: true})
			break
		}
		lines = append(lines, Line{Op: op, Text: text[:i]})
		text = text[i+1:]
	}
	return lines
}

// Unified returns a unified diff of before and after labelled with name,
// or an empty string if both are identical
func Unified(name string, before, after []byte) string {
	if bytes.Equal(before, after) {
		return ""
	}

	if !IsText(before) || !IsText(after) {
		return fmt.Sprintf("Binary file %s has changed\n", name)
	}

	lines := Lines(before, after)

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- a/%s\n", name))
	result.WriteString(fmt.Sprintf("+++ b/%s\n", name))
	for _, h := range hunks(lines) {
		writeHunk(&result, lines, h)
	}
	return result.String()
}

// Stats counts inserted and deleted lines
func Stats(lines []Line) (added, removed int) {
	for _, l := range lines {
		switch l.Op {
		case Insert:
			added++
		case Delete:
			removed++
		}
	}
	return added, removed
}

type hunk struct {
	start, end int // Range of lines, end exclusive
}

// hunks groups changed lines, merging groups whose context would overlap
func hunks(lines []Line) []hunk {
	var result []hunk
	for i, l := range lines {
		if l.Op == Equal {
			continue
		}
		start := max(0, i-ContextLines)
		end := min(len(lines), i+ContextLines+1)
		if n := len(result); n > 0 && start <= result[n-1].end {
			result[n-1].end = end
			continue
		}
		result = append(result, hunk{start: start, end: end})
	}
	return result
}

func writeHunk(w *strings.Builder, lines []Line, h hunk) {
	// Line numbers before the hunk
	oldLine, newLine := 0, 0
	for _, l := range lines[:h.start] {
		if l.Op != Insert {
			oldLine++
		}
		if l.Op != Delete {
			newLine++
		}
	}

	oldCount, newCount := 0, 0
	for _, l := range lines[h.start:h.end] {
		if l.Op != Insert {
			oldCount++
		}
		if l.Op != Delete {
			newCount++
		}
	}

	fmt.Fprintf(w, "@@ -%s +%s @@\n", hunkRange(oldLine, oldCount), hunkRange(newLine, newCount))
	for _, l := range lines[h.start:h.end] {
		w.WriteByte(l.Op.prefix())
		w.WriteString(l.Text)
		w.WriteByte('\n')
		if l.NoEOL {
			w.WriteString("\\ No newline at end of file\n")
		}
	}
}

// hunkRange formats "start,count"; an empty range points at the line before it
func hunkRange(before, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", before)
	}
	if count == 1 {
		return fmt.Sprintf("%d", before+1)
	}
	return fmt.Sprintf("%d,%d", before+1, count)
}

// Colorize adds ANSI colours to a unified diff for terminal output
func Colorize(unified string) string {
	if unified == "" {
		return ""
	}

	var result strings.Builder
	for _, line := range strings.SplitAfter(unified, "\n") {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		color := ""
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "@@"):
			color = colorCyan
		case strings.HasPrefix(line, "+"):
			color = colorGreen
		case strings.HasPrefix(line, "-"):
			color = colorRed
		}
		if color == "" {
			result.WriteString(line)
			continue
		}
		result.WriteString(color + body + colorReset)
		if len(body) < len(line) {
			result.WriteByte('\n')
		}
	}
	return result.String()
}
