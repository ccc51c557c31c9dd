package forumfeatures

import (
	"fmt"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/data"
)

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// ParseSentences splits text into sentences of lowercase word tokens using a
// single left-to-right scan. ASCII letters and digits accumulate into the
// current word; tab and space close a word; '?', '!', '.', and newline are
// candidate sentence terminators. All other characters are ignored.
//
// A '.' is kept inside the current word instead of terminating when the
// preceding character was an uppercase letter or a digit, or when the next
// character is a letter. This defers termination across acronyms, decimal
// numbers, and URLs ("U.S.A.", "3.14", "example.com").
//
// A newline that closes a word ending in '.' is tagged as a '.' sentence
// rather than the "other" class. A trailing fragment with no terminator is
// emitted with an empty End tag.
func ParseSentences(text string) []Sentence {
	var sentences []Sentence
	var sent Sentence
	var word []byte
	var lastRaw byte // last character appended to word, original case
	sawTerminator := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case isASCIILetter(c) || isASCIIDigit(c):
			word = append(word, toLowerASCII(c))
			lastRaw = c

		case (c == '\t' || c == ' ') && len(word) > 0:
			sent.Tokens = append(sent.Tokens, string(word))
			word = word[:0]

		case c == '?' || c == '!' || c == '\n' || c == '.':
			if c == '.' {
				acronym := len(word) > 0 && (lastRaw >= 'A' && lastRaw <= 'Z' || isASCIIDigit(lastRaw))
				if acronym || (i+1 < len(text) && isASCIILetter(text[i+1])) {
					word = append(word, '.')
					lastRaw = '.'
					continue
				}
			}
			end := string(c)
			if len(word) > 0 {
				sent.Tokens = append(sent.Tokens, string(word))
				if c == '\n' && word[len(word)-1] == '.' {
					end = EndPeriod
				}
				word = word[:0]
			}
			if len(sent.Tokens) > 0 || !sawTerminator {
				sent.End = end
				sentences = append(sentences, sent)
				sent = Sentence{}
			}
			sawTerminator = true
		}
	}

	if len(word) > 0 {
		sent.Tokens = append(sent.Tokens, string(word))
	}
	if len(sent.Tokens) > 0 {
		sentences = append(sentences, sent)
	}
	return sentences
}

// RBPTokenize returns the flattened word sequence of ParseSentences: every
// sentence's tokens concatenated in order. It is the default Tokenizer.
func RBPTokenize(text string) []string {
	var words []string
	for _, s := range ParseSentences(text) {
		words = append(words, s.Tokens...)
	}
	return words
}

// NewPunktTokenizer builds an alternative Tokenizer that segments sentences
// with the Punkt model (English training data) before running the word
// scanner on each sentence. Useful for corpora where newline placement makes
// the terminator heuristics unreliable.
func NewPunktTokenizer() (Tokenizer, error) {
	raw, err := data.Asset("data/english.json")
	if err != nil {
		return nil, fmt.Errorf("load punkt training data: %w", err)
	}
	training, err := sentences.LoadTraining(raw)
	if err != nil {
		return nil, fmt.Errorf("parse punkt training data: %w", err)
	}
	segmenter := sentences.NewSentenceTokenizer(training)

	return func(text string) []string {
		var words []string
		for _, s := range segmenter.Tokenize(text) {
			for _, parsed := range ParseSentences(s.Text) {
				words = append(words, parsed.Tokens...)
			}
		}
		return words
	}, nil
}

// tokenIndexOf counts tokens into a fresh TokenIndex.
func tokenIndexOf(tokens []string) TokenIndex {
	idx := make(TokenIndex, len(tokens))
	for _, tok := range tokens {
		idx[tok]++
	}
	return idx
}
