package docqa

import (
	"sort"
	"strings"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
)

const (
	DefaultTopChunks     = 3
	DefaultHistoryWindow = 3

	fallbackChunks   = 2
	emptyContext     = "No document content available for analysis."
	historyHeader    = "\n\nPrevious conversation context:\n"
	contextSeparator = "\n\n"
)

type ContextOptions struct {
	TopChunks     int
	HistoryWindow int
}

func (o ContextOptions) withDefaults() ContextOptions {
	if o.TopChunks <= 0 {
		o.TopChunks = DefaultTopChunks
	}
	if o.HistoryWindow <= 0 {
		o.HistoryWindow = DefaultHistoryWindow
	}
	return o
}

// ScoreChunks rates every chunk by the share of question words it contains.
// Stop words are not removed here.
func ScoreChunks(chunks []string, question string) []commonModels.ChunkScore {
	q := Tokenize(question, nil)
	scores := make([]commonModels.ChunkScore, len(chunks))
	for i, chunk := range chunks {
		scores[i] = commonModels.ChunkScore{
			Index: i,
			Text:  chunk,
			Score: Containment(q, Tokenize(chunk, nil)),
		}
	}
	return scores
}

// ExtractContext picks the chunks that best match the question and renders
// the recent conversation. history is read, never modified.
func ExtractContext(doc commonModels.ProcessedDocument, question string, history []commonModels.ChatTurn, opts ContextOptions) commonModels.ContextBundle {
	if len(doc.Chunks) == 0 {
		return commonModels.ContextBundle{
			Context: emptyContext,
			Chunks:  []commonModels.ChunkScore{},
		}
	}
	opts = opts.withDefaults()

	ranked := ScoreChunks(doc.Chunks, question)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > opts.TopChunks {
		ranked = ranked[:opts.TopChunks]
	}

	pieces := make([]string, 0, len(ranked))
	best := 0.0
	for _, c := range ranked {
		if c.Score > 0 {
			pieces = append(pieces, c.Text)
		}
		best = max(best, c.Score)
	}
	if len(pieces) == 0 {
		pieces = doc.Chunks[:min(fallbackChunks, len(doc.Chunks))]
	}

	return commonModels.ContextBundle{
		Context:          strings.Join(pieces, contextSeparator),
		Chunks:           ranked,
		FormattedHistory: FormatHistory(history, opts.HistoryWindow),
		Relevance:        best,
	}
}

// FormatHistory renders the last window turns, or "" when there are none.
func FormatHistory(history []commonModels.ChatTurn, window int) string {
	turns := commonModels.LastTurns(history, window)
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(historyHeader)
	for _, t := range turns {
		b.WriteString(t.Line())
	}
	return b.String()
}
