package tags

import (
	"regexp"
	"strings"
)

// tagPattern matches a hash sign followed by Unicode letters, ASCII digits
// or underscores. Cyrillic tags like #работа are first-class citizens.
var tagPattern = regexp.MustCompile(`#[\p{L}0-9_]+`)

var spaceRun = regexp.MustCompile(`\s+`)

// Extract returns every tag found in text, lowercased, with duplicates
// removed. First-occurrence order is preserved so tag listings stay stable
// between calls on the same text.
func Extract(text string) []string {
	matches := tagPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m)
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}

// Strip removes every tag token from text and normalizes the remainder:
// runs of whitespace collapse to a single space, outer whitespace is
// trimmed. The prose of the note survives a full tag rewrite unchanged.
func Strip(text string) string {
	withoutTags := tagPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(spaceRun.ReplaceAllString(withoutTags, " "))
}

// Normalize lowercases a user-typed tag and prefixes it with '#' when the
// user omitted one, so "Работа" and "#работа" address the same tag.
func Normalize(input string) string {
	tag := strings.ToLower(strings.TrimSpace(input))
	if tag != "" && !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}
