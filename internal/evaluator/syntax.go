package evaluator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/RevCBH/skill-harness/internal/criteria"
)

// SyntaxError describes the first structural problem found in a code sample
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

var closers = map[rune]rune{')': '(', ']': '[', '}': '{'}

// templateBrace marks a "${" opened inside a JS template literal
const templateBrace = '$'

type opener struct {
	r    rune
	line int
}

type scanState int

const (
	stateCode scanState = iota
	stateLineComment
	stateBlockComment
	stateString   // single-line string, delim in quote
	stateTriple   // triple-quoted string, python/java/csharp
	stateTemplate // JS template literal
	stateVerbatim // C# @"..." string
	stateRaw      // Go raw string
)

// CheckSyntax runs a shallow structural check: brackets balance and
// strings terminate. It is not a parser.
func CheckSyntax(code string, lang criteria.Language) error {
	runes := []rune(code)
	var stack []opener
	state := stateCode
	var quote rune
	strLine := 0
	line := 1

	hash := lang.HashComments()
	cstyle := !hash
	regexes := lang == criteria.LanguageTypeScript

	// last significant code rune and the identifier ending at it
	var lastSig rune
	var word string

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		next := rune(0)
		if i+1 < len(runes) {
			next = runes[i+1]
		}
		if r == '\n' {
			line++
		}

		switch state {
		case stateLineComment:
			if r == '\n' {
				state = stateCode
			}
			continue

		case stateBlockComment:
			if r == '*' && next == '/' {
				state = stateCode
				i++
			}
			continue

		case stateString:
			switch {
			case r == '\\':
				i++
				if i < len(runes) && runes[i] == '\n' {
					line++
				}
			case r == quote:
				state = stateCode
			case r == '\n':
				return &SyntaxError{Line: strLine, Message: "unterminated string literal"}
			}
			continue

		case stateTriple:
			if r == '\\' {
				i++
				if i < len(runes) && runes[i] == '\n' {
					line++
				}
				continue
			}
			if r == quote && hasTriple(runes, i, quote) {
				state = stateCode
				i += 2
			}
			continue

		case stateVerbatim:
			if r == '"' {
				if next == '"' {
					i++
					continue
				}
				state = stateCode
			}
			continue

		case stateRaw:
			if r == '`' {
				state = stateCode
			}
			continue

		case stateTemplate:
			switch {
			case r == '\\':
				i++
				if i < len(runes) && runes[i] == '\n' {
					line++
				}
			case r == '`':
				state = stateCode
			case r == '$' && next == '{':
				stack = append(stack, opener{r: templateBrace, line: line})
				state = stateCode
				i++
			}
			continue
		}

		// stateCode
		if regexes && r == '/' && next != '/' && next != '*' && regexAllowed(lastSig, word) {
			if end, ok := scanRegex(runes, i); ok {
				i = end
				lastSig, word = 'a', ""
				continue
			}
		}
		if !unicode.IsSpace(r) && !startsComment(r, next, hash) {
			switch {
			case !isIdentRune(r):
				word = ""
			case i > 0 && isIdentRune(runes[i-1]):
				word += string(r)
			default:
				word = string(r)
			}
			lastSig = r
		}

		switch {
		case hash && r == '#':
			state = stateLineComment
		case cstyle && r == '/' && next == '/':
			state = stateLineComment
			i++
		case cstyle && r == '/' && next == '*':
			state = stateBlockComment
			i++

		case r == '"' || r == '\'':
			strLine = line
			quote = r
			if tripleAllowed(lang, r) && hasTriple(runes, i, r) {
				state = stateTriple
				i += 2
				continue
			}
			if lang == criteria.LanguageCSharp && r == '"' && i > 0 && isVerbatimPrefix(runes, i) {
				state = stateVerbatim
				continue
			}
			state = stateString

		case r == '`' && lang == criteria.LanguageTypeScript:
			strLine = line
			state = stateTemplate
		case r == '`' && lang == criteria.LanguageGo:
			strLine = line
			state = stateRaw

		case r == '(' || r == '[' || r == '{':
			stack = append(stack, opener{r: r, line: line})

		case r == ')' || r == ']' || r == '}':
			if len(stack) == 0 {
				return &SyntaxError{Line: line, Message: fmt.Sprintf("unexpected %q", r)}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.r == templateBrace {
				if r != '}' {
					return &SyntaxError{Line: line, Message: fmt.Sprintf("unexpected %q in template expression", r)}
				}
				state = stateTemplate
				continue
			}
			if closers[r] != top.r {
				return &SyntaxError{Line: line, Message: fmt.Sprintf("mismatched %q closes %q opened at line %d", r, top.r, top.line)}
			}
		}
	}

	switch state {
	case stateString, stateTriple, stateVerbatim, stateRaw, stateTemplate:
		return &SyntaxError{Line: strLine, Message: "unterminated string literal"}
	case stateBlockComment:
		return &SyntaxError{Line: line, Message: "unterminated block comment"}
	}
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.r == templateBrace {
			return &SyntaxError{Line: top.line, Message: "unterminated template expression"}
		}
		return &SyntaxError{Line: top.line, Message: fmt.Sprintf("unclosed %q", top.r)}
	}
	return nil
}

func startsComment(r, next rune, hash bool) bool {
	if hash {
		return r == '#'
	}
	return r == '/' && (next == '/' || next == '*')
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// regexKeywords may directly precede a JS regex literal
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "in": true, "of": true,
	"delete": true, "void": true, "throw": true, "new": true, "yield": true, "await": true,
}

// regexAllowed reports whether a '/' following prev starts a regex literal
// rather than a division
func regexAllowed(prev rune, word string) bool {
	if prev == 0 {
		return true
	}
	if isIdentRune(prev) {
		return regexKeywords[word]
	}
	return strings.ContainsRune("(,=:[!&|?{};+-*%<>~^", prev)
}

// scanRegex returns the index of the '/' closing the regex literal opened
// at start. A literal never spans lines.
func scanRegex(runes []rune, start int) (int, bool) {
	inClass := false
	for j := start + 1; j < len(runes); j++ {
		switch runes[j] {
		case '\n':
			return 0, false
		case '\\':
			if j+1 < len(runes) && runes[j+1] == '\n' {
				return 0, false
			}
			j++
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				return j, true
			}
		}
	}
	return 0, false
}

func hasTriple(runes []rune, i int, q rune) bool {
	return i+2 < len(runes) && runes[i+1] == q && runes[i+2] == q
}

func tripleAllowed(lang criteria.Language, q rune) bool {
	switch lang {
	case criteria.LanguagePython:
		return true
	case criteria.LanguageJava, criteria.LanguageCSharp:
		return q == '"'
	}
	return false
}

// isVerbatimPrefix reports whether the quote at i is preceded by @ or $@ / @$
func isVerbatimPrefix(runes []rune, i int) bool {
	prev := runes[i-1]
	if prev == '@' {
		return true
	}
	return prev == '$' && i > 1 && runes[i-2] == '@'
}

// SyntaxLine returns the offending source line of a syntax error, trimmed
func SyntaxLine(code string, err *SyntaxError) string {
	lines := strings.Split(code, "\n")
	if err.Line < 1 || err.Line > len(lines) {
		return ""
	}
	return strings.TrimSpace(lines[err.Line-1])
}
