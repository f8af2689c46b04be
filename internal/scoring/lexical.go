package scoring

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-z0-9]+(?:[+#.][a-z0-9]+)*`)

// stopWords are dropped before lexical comparison so filler vocabulary does
// not inflate the overlap.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true,
}

func tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if !stopWords[word] {
			tokens[word] = true
		}
	}
	return tokens
}

// LexicalSimilarity is the degraded semantic signal: Jaccard overlap of the
// stop-word-filtered token sets of the two texts. A job text with no usable
// tokens yields a neutral 0.5 rather than penalizing every candidate.
func LexicalSimilarity(candidateText, jobText string) float64 {
	jobTokens := tokenize(jobText)
	if len(jobTokens) == 0 {
		return 0.5
	}

	candidateTokens := tokenize(candidateText)

	intersection := 0
	for token := range candidateTokens {
		if jobTokens[token] {
			intersection++
		}
	}
	union := len(candidateTokens) + len(jobTokens) - intersection
	return float64(intersection) / float64(union)
}
