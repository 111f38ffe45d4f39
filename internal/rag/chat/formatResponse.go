package chat

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/akolanti/DocFlowAPI/internal/config"
)

const formatPlain = "plain"

var (
	extraBlankLines = regexp.MustCompile(`\n{3,}`)
	citationMarker  = regexp.MustCompile(`\[(?:Source\s+)?(\d+)\]`)

	markdownHeading  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	markdownStrong   = regexp.MustCompile(`\*\*([^*\s](?:[^*\n]*[^*\s])?)\*\*`)
	markdownEmphasis = regexp.MustCompile(`\*([^*\s](?:[^*\n]*[^*\s])?)\*`)
	markdownCode     = regexp.MustCompile("`+([^`]*)`+")
	markdownLink     = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	// underscores only count as emphasis at word edges, never inside identifiers like max_retry_count
	underscoreStrong   = regexp.MustCompile(`(?m)(^|[^\p{L}\p{N}_])__([^_\s](?:[^_\n]*[^_\s])?)__($|[^\p{L}\p{N}_])`)
	underscoreEmphasis = regexp.MustCompile(`(?m)(^|[^\p{L}\p{N}_])_([^_\s](?:[^_\n]*[^_\s])?)_($|[^\p{L}\p{N}_])`)
)

// FormatResponse tidies the model output for the profile. The second return
// value lists the cited sources when the profile asks for citations.
func FormatResponse(output string, profile config.ProfileConfig) (answer, citations string) {
	answer = strings.TrimSpace(output)
	answer = extraBlankLines.ReplaceAllString(answer, "\n\n")

	if profile.Citations {
		citations = citationLine(answer)
	}
	if profile.ResponseFormat == formatPlain {
		answer = stripMarkdown(answer)
	}
	return answer, citations
}

// citationLine collects [Source N] and [N] markers in order of first use.
func citationLine(text string) string {
	seen := make(map[int]bool)
	var sources []string
	for _, m := range citationMarker.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		sources = append(sources, "Source "+m[1])
	}
	if len(sources) == 0 {
		return ""
	}
	return "**Citations:** " + strings.Join(sources, ", ")
}

func stripMarkdown(text string) string {
	text = markdownLink.ReplaceAllString(text, "$1 ($2)")
	text = markdownHeading.ReplaceAllString(text, "")
	text = markdownCode.ReplaceAllString(text, "$1")
	text = markdownStrong.ReplaceAllString(text, "$1")
	text = markdownEmphasis.ReplaceAllString(text, "$1")
	text = underscoreStrong.ReplaceAllString(text, "${1}${2}${3}")
	text = underscoreEmphasis.ReplaceAllString(text, "${1}${2}${3}")
	return text
}
