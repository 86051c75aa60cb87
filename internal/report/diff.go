package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineOp classifies a line of a code diff
type LineOp int

const (
	LineContext LineOp = iota
	LineAdded
	LineRemoved
)

// DiffLine is one line of a code diff
type DiffLine struct {
	Op   LineOp
	Text string
}

// LineDiff compares two code samples line by line
func LineDiff(oldCode, newCode string) []DiffLine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lineArray := dmp.DiffLinesToChars(withNewline(oldCode), withNewline(newCode))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []DiffLine
	for _, d := range diffs {
		op := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = LineAdded
		case diffmatchpatch.DiffDelete:
			op = LineRemoved
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			out = append(out, DiffLine{Op: op, Text: line})
		}
	}
	return out
}

// DiffStats counts added and removed lines
func DiffStats(lines []DiffLine) (added, removed int) {
	for _, l := range lines {
		switch l.Op {
		case LineAdded:
			added++
		case LineRemoved:
			removed++
		}
	}
	return added, removed
}

// FormatDiff renders lines with unified-diff prefixes
func FormatDiff(lines []DiffLine) string {
	var b strings.Builder
	for _, l := range lines {
		switch l.Op {
		case LineAdded:
			b.WriteString("+ ")
		case LineRemoved:
			b.WriteString("- ")
		default:
			b.WriteString("  ")
		}
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
