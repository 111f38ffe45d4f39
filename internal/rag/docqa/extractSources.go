package docqa

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
)

const (
	noSources       = "**Sources:** No document sources available"
	sourcesHeader   = "**Sources:**\n"
	sourcesNote     = "\n*Note: Citations are automatically generated based on document analysis*"
	minQuoteChars   = 20
	quotePhraseSize = 5
)

// SourcesErrorPrefix starts the report that replaces a failed sources step.
const SourcesErrorPrefix = "**Sources:** Error extracting source information: "

// ExtractSources reports which chunks ended up in the context and how many
// answer sentences look like quotes from it.
func ExtractSources(doc commonModels.ProcessedDocument, context, answer string) string {
	if len(doc.Chunks) == 0 {
		return noSources
	}

	used := UsedChunks(doc.Chunks, context)
	quotes := CountReferences(answer, context)

	var b strings.Builder
	b.WriteString(sourcesHeader)
	if len(used) > 0 {
		nums := make([]string, len(used))
		for i, n := range used {
			nums[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(&b, "• Document sections used: %s\n", strings.Join(nums, ", "))
	}
	fmt.Fprintf(&b, "• Total document length: %d characters\n", doc.Metadata.OriginalLength)
	fmt.Fprintf(&b, "• Processed into %d sections\n", doc.ChunkCount)
	if quotes > 0 {
		fmt.Fprintf(&b, "• Contains %d potential direct reference(s)\n", quotes)
	}
	b.WriteString(sourcesNote)
	return b.String()
}

// UsedChunks returns the 1-based numbers of the chunks contained in context.
func UsedChunks(chunks []string, context string) []int {
	var used []int
	for i, chunk := range chunks {
		if strings.Contains(context, strings.TrimSpace(chunk)) {
			used = append(used, i+1)
		}
	}
	return used
}

// CountReferences counts answer sentences sharing a five word phrase with the context.
func CountReferences(answer, context string) int {
	lowerContext := strings.ToLower(context)
	count := 0
	for _, part := range sentenceBoundary.Split(answer, -1) {
		sentence := strings.TrimSpace(part)
		if utf8.RuneCountInString(sentence) <= minQuoteChars {
			continue
		}
		words := strings.Fields(strings.ToLower(sentence))
		for i := 0; i+quotePhraseSize <= len(words); i++ {
			if strings.Contains(lowerContext, strings.Join(words[i:i+quotePhraseSize], " ")) {
				count++
				break
			}
		}
	}
	return count
}
