package commonModels

import (
	"strings"
	"unicode"
)

// Document is one uploaded text, held by the caller's session.
type Document struct {
	Name    string `json:"doc_name"`
	Content string `json:"content"`
}

type DocMetadata struct {
	OriginalLength int    `json:"original_length"`
	SentenceCount  int    `json:"sentence_count"`
	Status         string `json:"processing_status"`
	Error          string `json:"error,omitempty"`
}

type ProcessedDocument struct {
	Chunks      []string    `json:"chunks"`
	TotalLength int         `json:"total_length"`
	ChunkCount  int         `json:"chunk_count"`
	Metadata    DocMetadata `json:"metadata"`
}

type ChunkScore struct {
	Index int     `json:"index"`
	Text  string  `json:"-"`
	Score float64 `json:"score"`
}

type ContextBundle struct {
	Context          string       `json:"context"`
	Chunks           []ChunkScore `json:"relevant_chunks"`
	FormattedHistory string       `json:"formatted_history"`
	Relevance        float64      `json:"relevance_score"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

// Line renders the turn the way prompts quote earlier conversation, e.g. "User: hello\n".
func (t ChatTurn) Line() string {
	role := string(t.Role)
	if role == "" {
		role = string(RoleUser)
	}
	return titleWord(role) + ": " + t.Content + "\n"
}

// LastTurns returns a copy of at most the last n turns.
func LastTurns(turns []ChatTurn, n int) []ChatTurn {
	if n <= 0 || len(turns) == 0 {
		return nil
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return append([]ChatTurn(nil), turns...)
}

func titleWord(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Prompt is one system and one user message sent as a single completion.
type Prompt struct {
	System string
	User   string
}

func (p Prompt) Messages() []ChatTurn {
	msgs := make([]ChatTurn, 0, 2)
	if p.System != "" {
		msgs = append(msgs, ChatTurn{Role: RoleSystem, Content: p.System})
	}
	return append(msgs, ChatTurn{Role: RoleUser, Content: p.User})
}
