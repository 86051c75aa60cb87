package criteria

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	DefaultSkillsDir    = ".github/skills"
	DefaultCriteriaFile = "references/acceptance-criteria.md"
)

// Loader locates and parses acceptance-criteria documents
type Loader struct {
	// BaseDir is the repository root
	BaseDir string

	// SkillsDir is relative to BaseDir
	SkillsDir string

	// CriteriaFile is relative to a skill directory
	CriteriaFile string
}

// NewLoader creates a Loader rooted at baseDir with the default layout
func NewLoader(baseDir string) *Loader {
	return &Loader{
		BaseDir:      baseDir,
		SkillsDir:    DefaultSkillsDir,
		CriteriaFile: DefaultCriteriaFile,
	}
}

// Path returns where the criteria document of a skill lives
func (l *Loader) Path(skill string) string {
	return filepath.Join(l.BaseDir, l.SkillsDir, skill, l.CriteriaFile)
}

// Load reads and parses the criteria document of a skill.
// A missing document returns *NotFoundError.
func (l *Loader) Load(skill string) (*Set, error) {
	if err := validateSkillName(skill); err != nil {
		return nil, err
	}

	path := l.Path(skill)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Skill: skill, Path: path}
		}
		return nil, fmt.Errorf("failed to read criteria for %s: %w", skill, err)
	}

	return Parse(skill, path, content)
}

// ListSkills returns the sorted names of skills that have a criteria document
func (l *Loader) ListSkills() ([]string, error) {
	root := filepath.Join(l.BaseDir, l.SkillsDir)
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list skills in %s: %w", root, err)
	}

	var skills []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(l.Path(entry.Name())); err == nil {
			skills = append(skills, entry.Name())
		}
	}
	sort.Strings(skills)
	return skills, nil
}

func validateSkillName(skill string) error {
	if skill == "" || skill == "." || skill == ".." ||
		strings.ContainsAny(skill, `/\`) {
		return &InvalidSkillError{Skill: skill}
	}
	return nil
}

// Parse builds a Set from an in-memory criteria document
func Parse(skill, path string, content []byte) (*Set, error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))

	fmData, body, err := SplitFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	fm, err := ParseFrontmatter(fmData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	set := &Set{
		SkillName:  skill,
		Language:   LanguageForSkill(skill),
		SourcePath: path,
	}
	if fm.Skill != "" {
		set.SkillName = fm.Skill
	}
	if fm.Language != "" {
		lang, ok := ParseLanguage(fm.Language)
		if !ok {
			return nil, fmt.Errorf("%s: unknown language %q in frontmatter", path, fm.Language)
		}
		set.Language = lang
	}

	p := &docParser{set: set, src: body, path: path}
	if err := p.parse(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return set, nil
}

// docParser walks a markdown AST, tracking which markers are in scope
type docParser struct {
	set  *Set
	src  []byte
	path string

	headings  [7]Marker // indexed by heading level
	paragraph Marker    // marker of the last marked paragraph since the last heading

	section      int // index into set.Sections, -1 before the first "##"
	needsSummary bool
	index        int
}

func (p *docParser) parse() error {
	p.section = -1
	doc := goldmark.New().Parser().Parse(text.NewReader(p.src))

	return ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			p.heading(node)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			p.paragraphText(n)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			p.fence(node)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
}

func (p *docParser) heading(h *ast.Heading) {
	title := strings.TrimSpace(nodeText(h, p.src))
	level := h.Level
	if level < 1 || level > 6 {
		return
	}
	p.headings[level] = Classify(title)
	for l := level + 1; l < len(p.headings); l++ {
		p.headings[l] = MarkerNone
	}
	p.paragraph = MarkerNone

	if level == 2 {
		p.set.Sections = append(p.set.Sections, Section{Title: title})
		p.section = len(p.set.Sections) - 1
		p.needsSummary = true
	}
}

func (p *docParser) paragraphText(n ast.Node) {
	s := nodeText(n, p.src)
	if p.needsSummary && p.section >= 0 {
		p.set.Sections[p.section].Description = strings.TrimSpace(s)
		p.needsSummary = false
	}
	if m := p.leadMarker(n, s); m != MarkerNone {
		p.paragraph = m
	}
}

// leadMarker classifies a paragraph by its opening only. A bold or italic
// lead-in such as "**❌ Wrong**" counts as a whole.
func (p *docParser) leadMarker(n ast.Node, s string) Marker {
	if em, ok := n.FirstChild().(*ast.Emphasis); ok {
		if m := Classify(nodeText(em, p.src)); m != MarkerNone {
			return m
		}
	}
	return ClassifyLead(s)
}

func (p *docParser) fence(f *ast.FencedCodeBlock) {
	info := strings.TrimSpace(string(f.Language(p.src)))
	lang := p.set.Language
	if info != "" {
		if isNonCodeFence(info) {
			return
		}
		parsed, ok := ParseLanguage(info)
		if !ok {
			return
		}
		lang = parsed
	}

	var buf strings.Builder
	lines := f.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(p.src))
	}
	code := strings.TrimRight(buf.String(), "\n")
	if strings.TrimSpace(code) == "" {
		return
	}

	src := Split(code, lang)
	if len(src.Imports) == 0 && len(src.Body) == 0 {
		return
	}

	marker := p.decide(src.LeadingComments)
	if marker == MarkerAmbiguous {
		p.set.Warnings = append(p.set.Warnings,
			fmt.Sprintf("%s:%d: ambiguous correct/incorrect marker, fence skipped", p.path, p.line(f)))
		return
	}
	kind, ok := marker.Kind()
	if !ok {
		return
	}

	pattern := &CodePattern{
		Code:         code,
		Kind:         kind,
		Language:     lang,
		Index:        p.index,
		ImportLines:  src.Imports,
		BodyLines:    src.Body,
		IsImportOnly: len(src.Body) == 0,
	}
	p.index++

	if p.section >= 0 {
		sec := &p.set.Sections[p.section]
		pattern.Section = sec.Title
		if kind == KindCorrect {
			sec.Correct++
		} else {
			sec.Incorrect++
		}
	}

	if kind == KindCorrect {
		p.set.CorrectPatterns = append(p.set.CorrectPatterns, pattern)
	} else {
		p.set.IncorrectPatterns = append(p.set.IncorrectPatterns, pattern)
	}
}

// decide picks the marker in scope for a fence: its own marker comment first,
// then a marker paragraph since the last heading, then the innermost marked heading.
func (p *docParser) decide(comments []string) Marker {
	for _, c := range comments {
		if m := ClassifyLead(c); m != MarkerNone {
			return m
		}
	}
	if p.paragraph != MarkerNone {
		return p.paragraph
	}
	for level := len(p.headings) - 1; level >= 1; level-- {
		if p.headings[level] != MarkerNone {
			return p.headings[level]
		}
	}
	return MarkerNone
}

// line returns the 1-based line of a fence's opening delimiter
func (p *docParser) line(f *ast.FencedCodeBlock) int {
	if f.Lines().Len() == 0 {
		return 0
	}
	start := f.Lines().At(0).Start
	return bytes.Count(p.src[:start], []byte("\n"))
}

// nodeText concatenates the inline text beneath n
func nodeText(n ast.Node, src []byte) string {
	var buf strings.Builder
	var walk func(ast.Node)
	walk = func(node ast.Node) {
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf.WriteByte('\n')
				}
			case *ast.String:
				buf.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return buf.String()
}
