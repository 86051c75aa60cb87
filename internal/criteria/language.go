package criteria

import "strings"

// Language identifies the source language of a skill or fence
type Language string

const (
	LanguagePython     Language = "python"
	LanguageTypeScript Language = "typescript"
	LanguageCSharp     Language = "csharp"
	LanguageJava       Language = "java"
	LanguageGo         Language = "go"
)

// languageAliases maps fence info strings to languages
var languageAliases = map[string]Language{
	"python":     LanguagePython,
	"py":         LanguagePython,
	"python3":    LanguagePython,
	"typescript": LanguageTypeScript,
	"ts":         LanguageTypeScript,
	"tsx":        LanguageTypeScript,
	"javascript": LanguageTypeScript,
	"js":         LanguageTypeScript,
	"jsx":        LanguageTypeScript,
	"csharp":     LanguageCSharp,
	"cs":         LanguageCSharp,
	"c#":         LanguageCSharp,
	"java":       LanguageJava,
	"go":         LanguageGo,
	"golang":     LanguageGo,
}

// nonCodeFences are fence languages that never hold evaluable code
var nonCodeFences = map[string]bool{
	"bash":       true,
	"sh":         true,
	"shell":      true,
	"zsh":        true,
	"console":    true,
	"powershell": true,
	"ps1":        true,
	"text":       true,
	"txt":        true,
	"plaintext":  true,
	"json":       true,
	"jsonc":      true,
	"yaml":       true,
	"yml":        true,
	"toml":       true,
	"ini":        true,
	"xml":        true,
	"markdown":   true,
	"md":         true,
	"dockerfile": true,
	"env":        true,
}

// ParseLanguage resolves a fence info string or config value to a Language.
// It returns false for unknown names.
func ParseLanguage(name string) (Language, bool) {
	lang, ok := languageAliases[strings.ToLower(strings.TrimSpace(name))]
	return lang, ok
}

// LanguageForSkill derives the language from the skill name suffix.
// Unknown suffixes default to python.
func LanguageForSkill(skill string) Language {
	name := strings.ToLower(skill)
	switch {
	case strings.HasSuffix(name, "-py"):
		return LanguagePython
	case strings.HasSuffix(name, "-dotnet"):
		return LanguageCSharp
	case strings.HasSuffix(name, "-ts"):
		return LanguageTypeScript
	case strings.HasSuffix(name, "-java"):
		return LanguageJava
	case strings.HasSuffix(name, "-go"):
		return LanguageGo
	}
	return LanguagePython
}

// HashComments reports whether the language uses "#" line comments
func (l Language) HashComments() bool {
	return l == LanguagePython
}

func isNonCodeFence(info string) bool {
	return nonCodeFences[strings.ToLower(strings.TrimSpace(info))]
}
