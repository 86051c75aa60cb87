package criteria

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	pyFromRe     = regexp.MustCompile(`^from\s+([\w.]+)\s+import\s+(.+)$`)
	pyImportStRe = regexp.MustCompile(`^import\s+(.+)$`)
	tsFromRe     = regexp.MustCompile(`^import\s+(?:type\s+)?(.+?)\s*from\s*["']([^"']+)["']`)
	tsBareRe     = regexp.MustCompile(`^import\s*["']([^"']+)["']`)
	requireRe    = regexp.MustCompile(`require\(\s*["']([^"']+)["']\s*\)`)
	goPathRe     = regexp.MustCompile(`"([^"]+)"`)
)

// ImportEntries expands an import statement into normalized entries.
// Each entry names one imported symbol so that entries compare as sets:
// "from m import a, b as c" yields "from m import a" and "from m import b".
func ImportEntries(stmt string, lang Language) []string {
	stmt = strings.TrimSpace(strings.Join(strings.Fields(stmt), " "))
	switch lang {
	case LanguageTypeScript:
		return tsEntries(stmt)
	case LanguageCSharp, LanguageJava:
		return []string{strings.TrimSpace(strings.TrimSuffix(stmt, ";"))}
	case LanguageGo:
		if m := goPathRe.FindStringSubmatch(stmt); m != nil {
			return []string{`import "` + m[1] + `"`}
		}
		return []string{stmt}
	default:
		return pyEntries(stmt)
	}
}

func pyEntries(stmt string) []string {
	if m := pyFromRe.FindStringSubmatch(stmt); m != nil {
		module := m[1]
		names := strings.NewReplacer("(", "", ")", "", "\\", "").Replace(m[2])
		var entries []string
		for _, name := range strings.Split(names, ",") {
			name = stripAlias(name)
			if name == "" {
				continue
			}
			entries = append(entries, "from "+module+" import "+name)
		}
		return entries
	}
	if m := pyImportStRe.FindStringSubmatch(stmt); m != nil {
		var entries []string
		for _, name := range strings.Split(m[1], ",") {
			name = stripAlias(name)
			if name == "" {
				continue
			}
			entries = append(entries, "import "+name)
		}
		return entries
	}
	return []string{stmt}
}

func tsEntries(stmt string) []string {
	if m := requireRe.FindStringSubmatch(stmt); m != nil {
		return []string{`require("` + m[1] + `")`}
	}
	if m := tsBareRe.FindStringSubmatch(stmt); m != nil {
		return []string{`import "` + m[1] + `"`}
	}
	m := tsFromRe.FindStringSubmatch(stmt)
	if m == nil {
		return []string{strings.TrimSuffix(stmt, ";")}
	}
	clause, module := strings.TrimSpace(m[1]), m[2]
	from := ` from "` + module + `"`

	var entries []string
	if open := strings.Index(clause, "{"); open >= 0 {
		closing := strings.LastIndex(clause, "}")
		if closing < open {
			closing = len(clause)
		}
		for _, name := range strings.Split(clause[open+1:closing], ",") {
			name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "type "))
			name = stripAlias(name)
			if name != "" {
				entries = append(entries, "import { "+name+" }"+from)
			}
		}
		clause = strings.TrimSpace(clause[:open])
	}

	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "*"):
			entries = append(entries, "import *"+from)
		default:
			entries = append(entries, "import "+part+from)
		}
	}
	return entries
}

// stripAlias drops an "as alias" suffix and surrounding space
func stripAlias(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.Index(name, " as "); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// EntrySet collects the normalized import entries of a list of statements
func EntrySet(stmts []string, lang Language) map[string]bool {
	set := make(map[string]bool)
	for _, stmt := range stmts {
		for _, e := range ImportEntries(stmt, lang) {
			set[NormalizeLine(e)] = true
		}
	}
	return set
}

// ImportModule returns the module an import statement refers to
func ImportModule(stmt string, lang Language) string {
	stmt = strings.Join(strings.Fields(stmt), " ")
	switch lang {
	case LanguageTypeScript:
		if m := requireRe.FindStringSubmatch(stmt); m != nil {
			return m[1]
		}
		if m := tsFromRe.FindStringSubmatch(stmt); m != nil {
			return m[2]
		}
		if m := tsBareRe.FindStringSubmatch(stmt); m != nil {
			return m[1]
		}
	case LanguageCSharp:
		s := strings.TrimSuffix(stmt, ";")
		s = strings.TrimPrefix(s, "global ")
		s = strings.TrimPrefix(s, "using ")
		s = strings.TrimPrefix(s, "static ")
		if i := strings.Index(s, "="); i >= 0 {
			s = s[i+1:]
		}
		return strings.TrimSpace(s)
	case LanguageJava:
		s := strings.TrimSuffix(stmt, ";")
		s = strings.TrimPrefix(s, "import ")
		s = strings.TrimPrefix(s, "static ")
		if i := strings.LastIndex(s, "."); i >= 0 {
			return s[:i]
		}
		return s
	case LanguageGo:
		if m := goPathRe.FindStringSubmatch(stmt); m != nil {
			return m[1]
		}
	default:
		if m := pyFromRe.FindStringSubmatch(stmt); m != nil {
			return m[1]
		}
		if m := pyImportStRe.FindStringSubmatch(stmt); m != nil {
			return stripAlias(strings.Split(m[1], ",")[0])
		}
	}
	return stmt
}

// NormalizeLine collapses quote style and whitespace for substring comparison.
// Whitespace survives only where it separates two identifier characters.
func NormalizeLine(s string) string {
	s = strings.ReplaceAll(s, "'", `"`)
	var b strings.Builder
	var prev rune
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && isIdentRune(prev) && isIdentRune(r) {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// IsSignificant reports whether a normalized body line carries enough
// content to be matched on its own
func IsSignificant(normalized string) bool {
	if len(normalized) < 6 {
		return false
	}
	return strings.IndexFunc(normalized, unicode.IsLetter) >= 0
}

// Identifiers returns the distinct identifier tokens of a text, in order of appearance
func Identifiers(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return !isIdentRune(r) }) {
		if len(tok) < 2 || unicode.IsDigit(rune(tok[0])) || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
