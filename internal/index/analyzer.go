package index

import "strings"

// stopWords are common English words excluded from indexing and matching.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "from": true,
	"has": true, "have": true, "in": true, "is": true, "it": true,
	"its": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "to": true, "was": true, "were": true, "will": true,
	"with": true,
}

// Token is one indexable term with its ordinal position in the text.
type Token struct {
	Term     string
	Position int
}

// Analyze splits text into normalized tokens: lowercased, punctuation
// trimmed, stop words removed, lightly stemmed. Positions count every
// word, including dropped stop words, so proximity survives analysis.
func Analyze(text string) []Token {
	words := strings.Fields(strings.ToLower(text))
	tokens := make([]Token, 0, len(words))
	for i, word := range words {
		term := normalizeWord(word)
		if term == "" {
			continue
		}
		tokens = append(tokens, Token{Term: term, Position: i})
	}
	return tokens
}

// Normalize maps a single word to its index term, or "" when the word
// carries no signal (punctuation only, stop word).
func Normalize(word string) string {
	return normalizeWord(strings.ToLower(word))
}

func normalizeWord(word string) string {
	word = strings.Trim(word, ".,!?()[]{}:;\"'`")
	if word == "" || stopWords[word] {
		return ""
	}
	return stem(word)
}

// stem strips common English suffixes. Deliberately lighter than a full
// Porter stemmer: query and document terms go through the same function,
// so only self-consistency matters.
func stem(word string) string {
	if len(word) < 4 {
		return word
	}
	switch {
	case strings.HasSuffix(word, "sses"):
		word = word[:len(word)-2]
	case strings.HasSuffix(word, "ss"):
		// keep
	case strings.HasSuffix(word, "s"):
		word = word[:len(word)-1]
	}
	if strings.HasSuffix(word, "ing") && len(word) > 5 {
		word = word[:len(word)-3]
	} else if strings.HasSuffix(word, "ed") && len(word) > 4 {
		word = word[:len(word)-2]
	}
	return word
}
