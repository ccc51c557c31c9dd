package forumfeatures

import "errors"

// Sentinel errors for corpus, feature, and cache operations.
var (
	// ErrNotTokenized indicates a feature was requested before the required
	// token index was computed. Run RunTokenizer (or opt into lazy
	// tokenization via WithLazyTokenization) first.
	ErrNotTokenized = errors.New("forumfeatures: token index not computed")

	// ErrEmptyThread indicates an operation that needs at least one post was
	// given a thread with none.
	ErrEmptyThread = errors.New("forumfeatures: thread has no posts")

	// ErrZeroTotal indicates a thread-wide total required as a denominator
	// was zero. This marks a degenerate corpus and is never coerced to 0.0.
	ErrZeroTotal = errors.New("forumfeatures: zero thread-wide total")

	// ErrEmptySequence indicates a distribution was requested over no values.
	ErrEmptySequence = errors.New("forumfeatures: empty sequence")

	// ErrDuplicateID indicates a thread or post id that already exists in
	// its owner.
	ErrDuplicateID = errors.New("forumfeatures: duplicate id")

	// ErrThreadNotFound indicates a post referenced a thread id that has not
	// been added to the forum.
	ErrThreadNotFound = errors.New("forumfeatures: thread not found")

	// ErrNotEnoughThreads indicates a sample size exceeding the forum size.
	ErrNotEnoughThreads = errors.New("forumfeatures: not enough threads to sample")

	// ErrCacheReadOnly indicates a write was attempted on a read-only cache.
	ErrCacheReadOnly = errors.New("forumfeatures: cache is read-only")

	// ErrCacheMiss indicates the requested key is not present in the cache.
	ErrCacheMiss = errors.New("forumfeatures: cache miss")
)

// A Tokenizer turns raw text into an ordered word sequence. RBPTokenize is
// the default; any function with this signature may substitute.
type Tokenizer func(text string) []string

// A TokenIndex maps a token to its occurrence count within some unit of
// text (a post, a thread, or a whole forum).
type TokenIndex map[string]int

// add merges other into idx key-wise.
func (idx TokenIndex) add(other TokenIndex) {
	for tok, n := range other {
		idx[tok] += n
	}
}

// Total returns the sum of all token counts.
func (idx TokenIndex) Total() int {
	total := 0
	for _, n := range idx {
		total += n
	}
	return total
}

// Sentence terminal classes. A sentence is tagged with the character that
// closed it; newline marks the "other" class and the empty string an
// unterminated trailing fragment.
const (
	EndQuestion = "?"
	EndExclaim  = "!"
	EndPeriod   = "."
	EndOther    = "\n"
	EndNone     = ""
)

// A Sentence is an ordered run of lowercase word tokens plus the terminal
// class that closed it.
type Sentence struct {
	Tokens []string
	End    string
}

// String renders the sentence the way it was parsed: tokens joined by
// single spaces, followed by the terminal character (if any).
func (s Sentence) String() string {
	out := ""
	for i, tok := range s.Tokens {
		if i > 0 {
			out += " "
		}
		out += tok
	}
	return out + s.End
}

// A FeatureMap maps a feature name to its scalar value. Boolean features
// are encoded as 0 or 1.
type FeatureMap map[string]float64

// extractorConfig carries the settings shared by all feature extractors.
type extractorConfig struct {
	tokenizer Tokenizer
	lazy      bool
}

// An ExtractorOpt adjusts how a feature extractor resolves token indices.
type ExtractorOpt func(*extractorConfig)

// WithTokenizer sets the tokenizer used when lazy tokenization runs.
func WithTokenizer(tok Tokenizer) ExtractorOpt {
	return func(cfg *extractorConfig) {
		cfg.tokenizer = tok
	}
}

// WithLazyTokenization allows the extractor to populate missing token
// indices itself instead of failing with ErrNotTokenized.
func WithLazyTokenization(lazy bool) ExtractorOpt {
	return func(cfg *extractorConfig) {
		cfg.lazy = lazy
	}
}

func newExtractorConfig(opts []ExtractorOpt) extractorConfig {
	cfg := extractorConfig{tokenizer: RBPTokenize}
	for _, applyOpt := range opts {
		applyOpt(&cfg)
	}
	return cfg
}
