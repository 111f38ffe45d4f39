package docqa

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
)

const (
	DefaultMaxWords = 200

	statusSuccess  = "success"
	statusError    = "error"
	noContentError = "No document content provided"
)

var sentenceBoundary = regexp.MustCompile(`[.!?]+`)

// PreprocessDocument cleans the document text and packs its sentences into
// chunks of at most maxWords words. A sentence is never split, so a single
// sentence longer than maxWords becomes a chunk of its own.
// Chunking does not depend on the question.
func PreprocessDocument(content, question string, maxWords int) commonModels.ProcessedDocument {
	if strings.TrimSpace(content) == "" {
		return commonModels.ProcessedDocument{
			Chunks: []string{},
			Metadata: commonModels.DocMetadata{
				Status: statusError,
				Error:  noContentError,
			},
		}
	}
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	cleaned := strings.Join(strings.Fields(content), " ")
	sentences := splitSentences(cleaned)

	chunks := make([]string, 0, len(sentences)/4+1)
	var current []string
	currentWords := 0
	for _, sentence := range sentences {
		words := len(strings.Fields(sentence))
		if currentWords+words > maxWords && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			currentWords = 0
		}
		current = append(current, sentence)
		currentWords += words
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return commonModels.ProcessedDocument{
		Chunks:      chunks,
		TotalLength: utf8.RuneCountInString(cleaned),
		ChunkCount:  len(chunks),
		Metadata: commonModels.DocMetadata{
			OriginalLength: utf8.RuneCountInString(content),
			SentenceCount:  len(sentences),
			Status:         statusSuccess,
		},
	}
}

// splitSentences splits on runs of terminators; the terminators are dropped.
func splitSentences(text string) []string {
	parts := sentenceBoundary.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
