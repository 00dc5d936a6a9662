package intake

import (
	"slices"
	"strings"
	"unicode"
)

const minTokenLen = 4

// Index maps a lowercase keyword to the topic that first introduced it.
type Index map[string]string

// BuildIndex walks topics, questions and tokens in order. A token already
// claimed by an earlier topic is never reassigned.
func BuildIndex(c Catalog) Index {
	idx := make(Index)
	for _, t := range c.topics {
		for _, q := range t.Questions {
			for _, tok := range Tokenize(q) {
				if _, ok := idx[tok]; !ok {
					idx[tok] = t.Name
				}
			}
		}
	}
	return idx
}

// Lookup returns the topic owning word, if any.
func (idx Index) Lookup(word string) (string, bool) {
	topic, ok := idx[word]
	return topic, ok
}

// Keywords returns the tokens owned by topic in sorted order. An empty topic
// selects every token.
func (idx Index) Keywords(topic string) []string {
	var out []string
	for w, t := range idx {
		if topic == "" || t == topic {
			out = append(out, w)
		}
	}
	slices.Sort(out)
	return out
}

// Tokenize lowercases text and returns, left to right, every word that is
// made only of ASCII letters and is at least four characters long. Words are
// maximal runs of letters, numbers and underscores, so "abcd1", "abcd½" and
// "café" yield nothing. Combining marks end a word: "cafe\u0301" yields "cafe".
func Tokenize(text string) []string {
	text = lower(text)
	var tokens []string
	start := -1
	asciiOnly := true
	flush := func(end int) {
		if start >= 0 && asciiOnly && end-start >= minTokenLen {
			tokens = append(tokens, text[start:end])
		}
		start = -1
		asciiOnly = true
	}
	for i, r := range text {
		if !isWordRune(r) {
			flush(i)
			continue
		}
		if start < 0 {
			start = i
		}
		if !isASCIILetter(r) {
			asciiOnly = false
		}
	}
	flush(len(text))
	return tokens
}

// lower applies full lowercase mapping. U+0130 is the only rune whose
// lowercase form is two runes; the combining dot it gains splits the word.
func lower(text string) string {
	return strings.ToLower(strings.ReplaceAll(text, "\u0130", "i\u0307"))
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}
