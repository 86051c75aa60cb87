package criteria

import (
	"regexp"
	"strings"
	"unicode"
)

// Source is a code snippet split into import statements, statement lines and comments
type Source struct {
	// Imports are import statements; multi-line statements are joined by single spaces
	Imports []string

	// Body holds non-import statement lines, trimmed, with trailing comments stripped
	Body []string

	// LeadingComments holds the text of comment lines before the first statement
	LeadingComments []string
}

var (
	pyImportRe     = regexp.MustCompile(`^(import\s+[\w.]|from\s+[\w.]+\s+import\b)`)
	tsImportRe     = regexp.MustCompile(`^import(\s|\{|\*|["'])`)
	tsRequireRe    = regexp.MustCompile(`^(export\s+)?(const|let|var)\s+[\w{}\s,:]+=\s*require\(\s*["'][^"']+["']\s*\)`)
	csUsingRe      = regexp.MustCompile(`^(global\s+)?using\s+(static\s+)?[A-Za-z_][\w.]*(\s*=\s*[A-Za-z_][\w.<>, ]*)?\s*;`)
	javaImportRe   = regexp.MustCompile(`^import\s+(static\s+)?[\w.]+(\.\*)?\s*;`)
	goImportRe     = regexp.MustCompile(`^import\s+([\w.]+\s+)?"[^"]+"`)
	goImportOpenRe = regexp.MustCompile(`^import\s*\($`)
	tsFromQuoteRe  = regexp.MustCompile(`\bfrom\s*["']`)
	tsSideEffectRe = regexp.MustCompile(`^import\s*["']`)
)

// maxStatementLines bounds how far a multi-line import is followed
const maxStatementLines = 50

// IsImportLine reports whether a trimmed line starts an import statement
func IsImportLine(line string, lang Language) bool {
	switch lang {
	case LanguageTypeScript:
		return tsImportRe.MatchString(line) || tsRequireRe.MatchString(line)
	case LanguageCSharp:
		return csUsingRe.MatchString(line)
	case LanguageJava:
		return javaImportRe.MatchString(line)
	case LanguageGo:
		return goImportRe.MatchString(line) || goImportOpenRe.MatchString(line)
	default:
		return pyImportRe.MatchString(line)
	}
}

// Split breaks code into imports, body statements and leading comments
func Split(code string, lang Language) Source {
	var src Source
	lines := strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n")

	inBlock := false     // inside /* */ comment
	inDocstring := ""    // closing delimiter of an open python docstring
	inGoImports := false // inside import ( ... )
	seenStatement := false

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if inDocstring != "" {
			if strings.Contains(line, inDocstring) {
				inDocstring = ""
			}
			continue
		}
		if inBlock {
			if strings.Contains(line, "*/") {
				inBlock = false
			}
			continue
		}
		if line == "" {
			continue
		}

		if inGoImports {
			if line == ")" {
				inGoImports = false
				continue
			}
			if stmt := strings.TrimSpace(StripComment(line, lang)); stmt != "" {
				src.Imports = append(src.Imports, "import "+stmt)
			}
			continue
		}

		if comment, ok := commentText(line, lang); ok {
			if strings.HasPrefix(line, "/*") && !strings.Contains(line[2:], "*/") {
				inBlock = true
			}
			if !seenStatement && comment != "" {
				src.LeadingComments = append(src.LeadingComments, comment)
			}
			continue
		}

		if lang.HashComments() {
			if delim, open := docstringDelimiter(line); delim != "" {
				if open {
					inDocstring = delim
				}
				continue
			}
		}

		seenStatement = true

		if IsImportLine(line, lang) {
			if lang == LanguageGo && goImportOpenRe.MatchString(line) {
				inGoImports = true
				continue
			}
			stmt, consumed := joinImport(lines, i, lang)
			i += consumed
			src.Imports = append(src.Imports, stmt)
			continue
		}

		if stmt := strings.TrimSpace(StripComment(line, lang)); stmt != "" {
			src.Body = append(src.Body, stmt)
		}
	}

	return src
}

// joinImport collects a possibly multi-line import starting at lines[start].
// It returns the joined statement and the number of extra lines consumed.
func joinImport(lines []string, start int, lang Language) (string, int) {
	stmt := strings.TrimSpace(StripComment(strings.TrimSpace(lines[start]), lang))
	consumed := 0

	done := func(s string) bool {
		switch lang {
		case LanguagePython:
			if strings.HasSuffix(s, "\\") {
				return false
			}
			return strings.Count(s, "(") <= strings.Count(s, ")")
		case LanguageTypeScript:
			if tsRequireRe.MatchString(s) || tsSideEffectRe.MatchString(s) {
				return true
			}
			return tsFromQuoteRe.MatchString(s)
		default:
			return true
		}
	}

	for !done(stmt) && start+consumed+1 < len(lines) && consumed < maxStatementLines {
		consumed++
		next := strings.TrimSpace(StripComment(strings.TrimSpace(lines[start+consumed]), lang))
		stmt = strings.TrimSuffix(stmt, "\\")
		stmt = strings.TrimSpace(stmt) + " " + next
	}

	return strings.Join(strings.Fields(stmt), " "), consumed
}

// commentText returns the text of a comment-only line
func commentText(line string, lang Language) (string, bool) {
	if lang.HashComments() {
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#")), true
		}
		return "", false
	}
	switch {
	case strings.HasPrefix(line, "//"):
		return strings.TrimSpace(strings.TrimLeft(line, "/")), true
	case strings.HasPrefix(line, "/*"):
		text := strings.TrimPrefix(line, "/*")
		text = strings.TrimSuffix(strings.TrimSpace(text), "*/")
		return strings.TrimSpace(strings.TrimLeft(text, "*")), true
	case strings.HasPrefix(line, "*"):
		return strings.TrimSpace(strings.TrimLeft(line, "*/")), true
	}
	return "", false
}

// docstringDelimiter detects a standalone python string statement.
// open is true when the string continues on later lines.
func docstringDelimiter(line string) (delim string, open bool) {
	for _, d := range []string{`"""`, `'''`} {
		if strings.HasPrefix(line, d) {
			rest := line[len(d):]
			return d, !strings.Contains(rest, d)
		}
	}
	return "", false
}

// StripComment removes a trailing line comment that is outside string literals
func StripComment(line string, lang Language) string {
	var quote rune
	escaped := false
	runes := []rune(line)
	for i, r := range runes {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch {
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case lang.HashComments() && r == '#':
			return strings.TrimRightFunc(string(runes[:i]), unicode.IsSpace)
		case !lang.HashComments() && r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			return strings.TrimRightFunc(string(runes[:i]), unicode.IsSpace)
		}
	}
	return line
}
