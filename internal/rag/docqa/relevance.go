package docqa

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

const (
	qaWeight = 0.4
	acWeight = 0.4
	qcWeight = 0.2

	highThreshold   = 70.0
	mediumThreshold = 50.0
)

type TokenSet map[string]struct{}

// Tokenize lowercases text and returns its distinct words minus stop.
func Tokenize(text string, stop []string) TokenSet {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	set := make(TokenSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	for _, s := range stop {
		delete(set, s)
	}
	return set
}

// Containment is the share of a's tokens that also occur in b, 0 when a is empty.
func Containment(a, b TokenSet) float64 {
	if len(a) == 0 {
		return 0
	}
	hits := 0
	for w := range a {
		if _, ok := b[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(a))
}

type RelevanceScore struct {
	QuestionAnswer  float64
	AnswerContext   float64
	QuestionContext float64
	Overall         float64
}

// Percent is the overall score as a percentage rounded to one decimal.
func (r RelevanceScore) Percent() float64 {
	return roundPercent(r.Overall)
}

func (r RelevanceScore) Category() string {
	switch p := r.Percent(); {
	case p >= highThreshold:
		return "High"
	case p >= mediumThreshold:
		return "Medium"
	default:
		return "Low"
	}
}

func (r RelevanceScore) String() string {
	return fmt.Sprintf("**Relevance: %s%% (%s)**\nQ-A alignment: %s%%, Context grounding: %s%%",
		formatPercent(r.Overall), r.Category(),
		formatPercent(r.QuestionAnswer), formatPercent(r.AnswerContext))
}

func ScoreRelevance(question, answer, context string, stop []string) RelevanceScore {
	q := Tokenize(question, stop)
	a := Tokenize(answer, stop)
	c := Tokenize(context, stop)

	s := RelevanceScore{
		QuestionAnswer:  Containment(q, a),
		AnswerContext:   Containment(a, c),
		QuestionContext: Containment(q, c),
	}
	s.Overall = qaWeight*s.QuestionAnswer + acWeight*s.AnswerContext + qcWeight*s.QuestionContext
	return s
}

// RelevanceErrorPrefix starts the report that replaces a failed relevance step.
const RelevanceErrorPrefix = "Relevance calculation error: "

// CalculateRelevance renders the relevance report for an answer.
func CalculateRelevance(question, answer, context string, stop []string) string {
	return ScoreRelevance(question, answer, context, stop).String()
}

func roundPercent(ratio float64) float64 {
	return math.Round(ratio*1000) / 10
}

func formatPercent(ratio float64) string {
	return strconv.FormatFloat(roundPercent(ratio), 'f', 1, 64)
}
