package evaluator

import (
	"strings"

	"github.com/RevCBH/skill-harness/internal/criteria"
)

// compiledPattern caches the normalized forms of a pattern used for matching
type compiledPattern struct {
	pattern *criteria.CodePattern

	// imports holds, per import line, its normalized entries
	imports [][]string

	// importLines holds each import line normalized as a whole
	importLines []string

	// lines are the significant normalized body lines used for matching.
	// For incorrect patterns only lines absent from every correct pattern are kept.
	lines []string
}

func compile(p *criteria.CodePattern, shared map[string]bool) compiledPattern {
	cp := compiledPattern{pattern: p}
	for _, stmt := range p.ImportLines {
		var entries []string
		for _, e := range criteria.ImportEntries(stmt, p.Language) {
			entries = append(entries, criteria.NormalizeLine(e))
		}
		cp.imports = append(cp.imports, entries)
		cp.importLines = append(cp.importLines, criteria.NormalizeLine(stmt))
	}
	for _, body := range p.BodyLines {
		frag := matchFragment(criteria.NormalizeLine(body))
		if !criteria.IsSignificant(frag) || shared[frag] {
			continue
		}
		cp.lines = append(cp.lines, frag)
	}
	return cp
}

// matchFragment reduces a normalized statement to the part that identifies
// the usage: the right-hand side of a top-level assignment, else the whole line.
func matchFragment(line string) string {
	depth := 0
	for i := 0; i < len(line); i++ {
		switch c := line[i]; c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '"':
			if j := strings.IndexByte(line[i+1:], '"'); j >= 0 {
				i += j + 1
			}
		case '=':
			if depth != 0 {
				continue
			}
			if i+1 < len(line) && (line[i+1] == '=' || line[i+1] == '>') {
				return line
			}
			if i > 0 && strings.IndexByte("=!<>+-*/%&|^", line[i-1]) >= 0 {
				return line
			}
			if rhs := strings.TrimSuffix(line[i+1:], ";"); rhs != "" {
				return rhs
			}
			return line
		}
	}
	return line
}

// analyzedCode is generated code prepared for matching
type analyzedCode struct {
	entries map[string]bool

	// lines holds every non-empty code line normalized, comments stripped
	lines []string
	raw   []string
}

func analyze(code string, lang criteria.Language) *analyzedCode {
	src := criteria.Split(code, lang)
	ac := &analyzedCode{entries: criteria.EntrySet(src.Imports, lang)}
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(criteria.StripComment(strings.TrimSpace(line), lang))
		if trimmed == "" {
			continue
		}
		ac.lines = append(ac.lines, criteria.NormalizeLine(trimmed))
		ac.raw = append(ac.raw, trimmed)
	}
	return ac
}

// hasImport reports whether an import line of a pattern is present in the code.
// Entry-set comparison comes first; a normalized substring is the fallback.
func (ac *analyzedCode) hasImport(entries []string, whole string) bool {
	if len(entries) > 0 {
		all := true
		for _, e := range entries {
			if !ac.entries[e] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return ac.containsStatement(whole)
}

// hasAnyEntry reports whether at least one entry of an import line is present
func (ac *analyzedCode) hasAnyEntry(entries []string, whole string) bool {
	for _, e := range entries {
		if ac.entries[e] {
			return true
		}
	}
	return ac.containsStatement(whole)
}

// containsStatement reports whether a normalized statement occurs in some code
// line without being part of a longer identifier
func (ac *analyzedCode) containsStatement(stmt string) bool {
	if stmt == "" {
		return false
	}
	for _, l := range ac.lines {
		if containsBounded(l, stmt) {
			return true
		}
	}
	return false
}

func containsBounded(s, frag string) bool {
	for start := 0; start <= len(s)-len(frag); {
		i := strings.Index(s[start:], frag)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(frag)
		before := i == 0 || !isIdentByte(s[i-1]) || !isIdentByte(frag[0])
		after := end == len(s) || !isIdentByte(s[end]) || !isIdentByte(frag[len(frag)-1])
		if before && after {
			return true
		}
		start = i + 1
	}
	return false
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= 0x80 ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// findLine returns the raw code line containing the normalized fragment
func (ac *analyzedCode) findLine(fragment string) (string, bool) {
	for i, l := range ac.lines {
		if strings.Contains(l, fragment) {
			return ac.raw[i], true
		}
	}
	return "", false
}

// matchIncorrect applies the strict rule for incorrect patterns.
// Import-only patterns match when every import is present. Mixed patterns
// also require one distinguishing body line; imports alone never suffice.
// It returns the offending snippet.
func (cp *compiledPattern) matchIncorrect(ac *analyzedCode) (string, bool) {
	for i := range cp.imports {
		if !ac.hasImport(cp.imports[i], cp.importLines[i]) {
			return "", false
		}
	}

	if cp.pattern.IsImportOnly {
		if len(cp.imports) == 0 {
			return "", false
		}
		return strings.Join(cp.pattern.ImportLines, "\n"), true
	}

	for _, line := range cp.lines {
		if raw, ok := ac.findLine(line); ok {
			return raw, true
		}
	}
	return "", false
}

// matchCorrect applies the lenient rule for correct patterns:
// any import present or any significant body line contained.
func (cp *compiledPattern) matchCorrect(ac *analyzedCode) bool {
	for i := range cp.imports {
		if ac.hasAnyEntry(cp.imports[i], cp.importLines[i]) {
			return true
		}
	}
	for _, line := range cp.lines {
		if _, ok := ac.findLine(line); ok {
			return true
		}
	}
	return false
}
