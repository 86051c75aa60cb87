package criteria

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the optional YAML header of a criteria document
type Frontmatter struct {
	// Skill overrides the skill name recorded on the Set
	Skill string `yaml:"skill"`

	// Language overrides the language derived from the skill name
	Language string `yaml:"language"`

	Description string `yaml:"description"`
}

// SplitFrontmatter separates YAML frontmatter from a markdown document.
// Frontmatter is delimited by --- on its own line at start and end.
// Documents without frontmatter are returned unchanged as body.
func SplitFrontmatter(content []byte) (frontmatter []byte, body []byte, err error) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return nil, content, nil
	}

	remaining := content[4:]
	if bytes.HasPrefix(remaining, []byte("---\n")) {
		return nil, remaining[4:], nil
	}

	closingIdx := bytes.Index(remaining, []byte("\n---\n"))
	if closingIdx == -1 {
		if bytes.HasSuffix(remaining, []byte("\n---")) {
			return remaining[:len(remaining)-4], nil, nil
		}
		return nil, nil, fmt.Errorf("unclosed frontmatter: missing closing '---'")
	}

	frontmatter = remaining[:closingIdx]

	bodyStart := 4 + closingIdx + 5 // len("---\n") + closingIdx + len("\n---\n")
	if bodyStart < len(content) {
		body = content[bodyStart:]
	}
	return frontmatter, body, nil
}

// ParseFrontmatter decodes criteria frontmatter
func ParseFrontmatter(data []byte) (*Frontmatter, error) {
	var fm Frontmatter
	if len(bytes.TrimSpace(data)) == 0 {
		return &fm, nil
	}
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("failed to parse criteria frontmatter: %w", err)
	}
	return &fm, nil
}
