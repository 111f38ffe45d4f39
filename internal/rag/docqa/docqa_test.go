package docqa

import (
	"reflect"
	"strings"
	"testing"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
)

var englishStopWords = []string{"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by"}

const handbook = "Employees must follow all safety guidelines. Work hours are from 9 AM to 5 PM."

func TestPreprocessDocument(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantChunks []string
		wantErr    string
	}{
		{
			name:       "empty",
			content:    "",
			wantChunks: []string{},
			wantErr:    noContentError,
		},
		{
			name:       "whitespace only",
			content:    " \n\t  ",
			wantChunks: []string{},
			wantErr:    noContentError,
		},
		{
			name:       "short document is one chunk",
			content:    handbook,
			wantChunks: []string{"Employees must follow all safety guidelines Work hours are from 9 AM to 5 PM"},
		},
		{
			name:       "terminator runs and whitespace collapse",
			content:    "Really?!   Yes...\n\nOkay!",
			wantChunks: []string{"Really Yes Okay"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := PreprocessDocument(tt.content, "ignored", DefaultMaxWords)
			if !reflect.DeepEqual(doc.Chunks, tt.wantChunks) {
				t.Errorf("chunks = %q, want %q", doc.Chunks, tt.wantChunks)
			}
			if doc.Metadata.Error != tt.wantErr {
				t.Errorf("metadata error = %q, want %q", doc.Metadata.Error, tt.wantErr)
			}
			if doc.ChunkCount != len(doc.Chunks) {
				t.Errorf("chunk count %d does not match %d chunks", doc.ChunkCount, len(doc.Chunks))
			}
		})
	}
}

func TestPreprocessDocument_Metadata(t *testing.T) {
	doc := PreprocessDocument(handbook, "", DefaultMaxWords)
	if doc.Metadata.OriginalLength != 78 {
		t.Errorf("original length = %d, want 78", doc.Metadata.OriginalLength)
	}
	if doc.Metadata.SentenceCount != 2 {
		t.Errorf("sentence count = %d, want 2", doc.Metadata.SentenceCount)
	}
	if doc.Metadata.Status != statusSuccess {
		t.Errorf("status = %q", doc.Metadata.Status)
	}
}

func sentenceOf(words int, word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", words))
}

func TestPreprocessDocument_ChunkBounds(t *testing.T) {
	var sentences []string
	for i := 0; i < 30; i++ {
		sentences = append(sentences, sentenceOf(15+i%7, "word"))
	}
	long := sentenceOf(250, "long")
	sentences = append(sentences[:10], append([]string{long}, sentences[10:]...)...)

	content := strings.Join(sentences, ".\n  ") + "."
	doc := PreprocessDocument(content, "", DefaultMaxWords)

	// every sentence survives, in order, and none is split
	var rebuilt []string
	for _, chunk := range doc.Chunks {
		words := len(strings.Fields(chunk))
		if words > DefaultMaxWords && chunk != long {
			t.Errorf("chunk of %d words exceeds the bound and is not a single sentence", words)
		}
		rebuilt = append(rebuilt, chunk)
	}
	if got, want := strings.Join(rebuilt, " "), strings.Join(sentences, " "); got != want {
		t.Errorf("chunks do not reconstruct the sentence sequence")
	}

	found := false
	for _, chunk := range doc.Chunks {
		if chunk == long {
			found = true
		}
	}
	if !found {
		t.Error("oversized sentence should occupy its own chunk")
	}
}

func TestContainment(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"empty left side", "", "anything here", 0},
		{"only stop words", "the of and", "the of and", 0},
		{"full overlap", "work hours", "Hours of WORK", 1},
		{"half overlap", "work hours", "work shifts", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Containment(Tokenize(tt.a, englishStopWords), Tokenize(tt.b, englishStopWords))
			if got != tt.want {
				t.Errorf("Containment = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("ratio %v out of [0,1]", got)
			}
		})
	}
}

func TestCalculateRelevance(t *testing.T) {
	context := "Employees must follow all safety guidelines Work hours are from 9 AM to 5 PM"
	got := CalculateRelevance("What are the work hours?", "Work hours are from 9 AM to 5 PM.", context, englishStopWords)
	want := "**Relevance: 85.0% (High)**\nQ-A alignment: 75.0%, Context grounding: 100.0%"
	if got != want {
		t.Errorf("report =\n%s\nwant\n%s", got, want)
	}

	tests := []struct {
		name     string
		score    RelevanceScore
		category string
	}{
		{"high boundary", RelevanceScore{Overall: 0.70}, "High"},
		{"medium", RelevanceScore{Overall: 0.55}, "Medium"},
		{"medium boundary", RelevanceScore{Overall: 0.50}, "Medium"},
		{"rounds up to medium", RelevanceScore{Overall: 0.4999}, "Medium"},
		{"low", RelevanceScore{Overall: 0.49}, "Low"},
		{"zero", RelevanceScore{}, "Low"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if c := tt.score.Category(); c != tt.category {
				t.Errorf("category = %s, want %s", c, tt.category)
			}
		})
	}
}

func TestCalculateRelevance_EmptyInputs(t *testing.T) {
	got := CalculateRelevance("", "", "", englishStopWords)
	if !strings.HasPrefix(got, "**Relevance: 0.0% (Low)**") {
		t.Errorf("empty inputs should score 0, got %q", got)
	}
}

func TestExtractContext_NoChunks(t *testing.T) {
	bundle := ExtractContext(PreprocessDocument("", "", 0), "anything", nil, ContextOptions{})
	if bundle.Context != emptyContext {
		t.Errorf("context = %q", bundle.Context)
	}
	if bundle.Relevance != 0 || len(bundle.Chunks) != 0 || bundle.FormattedHistory != "" {
		t.Errorf("unexpected bundle %+v", bundle)
	}
}

func TestExtractContext_Selection(t *testing.T) {
	doc := commonModels.ProcessedDocument{
		Chunks: []string{
			"Parking is free for visitors",
			"Badges are required at the gate",
			"Lunch is served at noon",
			"Badges can be renewed online",
			"Visitors sign in at the gate",
		},
	}

	bundle := ExtractContext(doc, "Where are badges required?", nil, ContextOptions{})
	if bundle.Chunks[0].Index != 1 {
		t.Errorf("best chunk = %d, want 1", bundle.Chunks[0].Index)
	}
	if len(bundle.Chunks) != DefaultTopChunks {
		t.Errorf("kept %d chunks, want %d", len(bundle.Chunks), DefaultTopChunks)
	}
	if !strings.HasPrefix(bundle.Context, doc.Chunks[1]+"\n\n") {
		t.Errorf("context should lead with the best chunk, got %q", bundle.Context)
	}
	if bundle.Relevance != bundle.Chunks[0].Score {
		t.Errorf("relevance %v should be the best score %v", bundle.Relevance, bundle.Chunks[0].Score)
	}

	again := ExtractContext(doc, "Where are badges required?", nil, ContextOptions{})
	if !reflect.DeepEqual(bundle, again) {
		t.Error("context selection is not repeatable")
	}
}

func TestExtractContext_NoOverlapFallsBackToFirstChunks(t *testing.T) {
	doc := commonModels.ProcessedDocument{Chunks: []string{"alpha", "beta", "gamma"}}

	bundle := ExtractContext(doc, "zeta", nil, ContextOptions{})
	if bundle.Context != "alpha\n\nbeta" {
		t.Errorf("context = %q", bundle.Context)
	}
	// stable order for ties
	for i, c := range bundle.Chunks {
		if c.Index != i {
			t.Errorf("tied chunks reordered: %+v", bundle.Chunks)
		}
	}
	if bundle.Relevance != 0 {
		t.Errorf("relevance = %v, want 0", bundle.Relevance)
	}
}

func TestExtractContext_HistoryWindow(t *testing.T) {
	history := []commonModels.ChatTurn{
		{Role: commonModels.RoleUser, Content: "one"},
		{Role: commonModels.RoleAssistant, Content: "two"},
		{Role: commonModels.RoleUser, Content: "three"},
		{Role: commonModels.RoleAssistant, Content: "four"},
	}
	snapshot := append([]commonModels.ChatTurn(nil), history...)

	bundle := ExtractContext(PreprocessDocument(handbook, "", 0), "work", history, ContextOptions{})
	want := "\n\nPrevious conversation context:\nAssistant: two\nUser: three\nAssistant: four\n"
	if bundle.FormattedHistory != want {
		t.Errorf("history = %q, want %q", bundle.FormattedHistory, want)
	}
	if !reflect.DeepEqual(history, snapshot) {
		t.Error("caller history was modified")
	}
}

func TestExtractSources(t *testing.T) {
	t.Run("no chunks", func(t *testing.T) {
		if got := ExtractSources(PreprocessDocument("", "", 0), "", "answer"); got != noSources {
			t.Errorf("got %q", got)
		}
	})

	t.Run("used chunk detection", func(t *testing.T) {
		doc := commonModels.ProcessedDocument{
			Chunks:     []string{"Hours are 9 to 5.", "Policy requires badges."},
			ChunkCount: 2,
		}
		if got := UsedChunks(doc.Chunks, "Context: Hours are 9 to 5."); !reflect.DeepEqual(got, []int{1}) {
			t.Errorf("used = %v, want [1]", got)
		}
		report := ExtractSources(doc, "Hours are 9 to 5.", "Short.")
		if !strings.Contains(report, "• Document sections used: 1\n") {
			t.Errorf("report missing used sections:\n%s", report)
		}
		if strings.Contains(report, "potential direct reference") {
			t.Errorf("short answer should not count as a reference:\n%s", report)
		}
	})

	t.Run("handbook", func(t *testing.T) {
		doc := PreprocessDocument(handbook, "", DefaultMaxWords)
		bundle := ExtractContext(doc, "What are the work hours?", nil, ContextOptions{})
		got := ExtractSources(doc, bundle.Context, "Work hours are from 9 AM to 5 PM.")
		want := "**Sources:**\n" +
			"• Document sections used: 1\n" +
			"• Total document length: 78 characters\n" +
			"• Processed into 1 sections\n" +
			"• Contains 1 potential direct reference(s)\n" +
			"\n*Note: Citations are automatically generated based on document analysis*"
		if got != want {
			t.Errorf("report =\n%s\nwant\n%s", got, want)
		}
	})
}

func TestCountReferences(t *testing.T) {
	warehouse := "The warehouse opens at seven in the morning every weekday"
	tests := []struct {
		name    string
		answer  string
		context string
		want    int
	}{
		{"quoted phrase", "The warehouse opens at seven on most days.", warehouse, 1},
		{"too few words", "Warehouse opens at seven.", warehouse, 0},
		{"short sentence", "a b c d e f.", "a b c d e f", 0},
		{"no shared phrase", "Deliveries arrive after lunch on Fridays.", warehouse, 0},
		{"two quoted sentences", "The warehouse opens at seven sharp. It is at seven in the morning every day!", warehouse, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountReferences(tt.answer, tt.context); got != tt.want {
				t.Errorf("CountReferences = %d, want %d", got, tt.want)
			}
		})
	}
}
