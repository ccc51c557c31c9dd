package forumfeatures

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reQuestionMark = regexp.MustCompile(`\?`)
	reExclaimMark  = regexp.MustCompile(`!`)
	reHTTPScheme   = regexp.MustCompile(`http://`)
)

// StructuralExtractor computes the CoNLL-2010 style structural and semantic
// post features. Lexical and post-context features from that methodology
// need a tagger or on-line label feedback and are out of scope here.
type StructuralExtractor struct {
	cfg extractorConfig
}

// NewStructuralExtractor builds a structural feature extractor.
func NewStructuralExtractor(opts ...ExtractorOpt) *StructuralExtractor {
	return &StructuralExtractor{cfg: newExtractorConfig(opts)}
}

func (e *StructuralExtractor) ensureThread(t *Thread) error {
	if t.Tokenized() {
		return nil
	}
	if !e.cfg.lazy {
		return fmt.Errorf("thread %q: %w", t.ID(), ErrNotTokenized)
	}
	t.EnsureTokenized(e.cfg.tokenizer)
	return nil
}

// IsThreadInitiator reports whether the post's author is the thread's
// recorded author. This uses the thread metadata, not the chronologically
// first post.
func IsThreadInitiator(p *Post) bool {
	return p.Author() == p.Thread().Author()
}

// PositionRelative is the post's insertion position as a fraction of the
// thread length.
func PositionRelative(p *Post) float64 {
	return float64(p.Position()) / float64(p.Thread().Len())
}

// fieldIndexOf builds a token index from whitespace-split raw text, without
// tokenizer normalization. Title similarity works on raw titles.
func fieldIndexOf(text string) TokenIndex {
	return tokenIndexOf(strings.Fields(text))
}

// mostSimilarBack returns the distance from position pos back to the
// earlier index maximizing score. Ties resolve to the earliest candidate.
func mostSimilarBack(pos int, score func(i int) float64) float64 {
	best, bestScore := 0, score(0)
	for i := 1; i < pos; i++ {
		if s := score(i); s > bestScore {
			best, bestScore = i, s
		}
	}
	return float64(pos - best)
}

// MostSimilarTitleRelative is the distance back to the earlier post whose
// title is most cosine-similar to this post's title, or 0 for the leading
// post.
func MostSimilarTitleRelative(p *Post) float64 {
	if p.Position() == 0 {
		return 0
	}
	this := fieldIndexOf(p.Title())
	prior := p.Thread().Posts()[:p.Position()]
	return mostSimilarBack(p.Position(), func(i int) float64 {
		return CosineSimilarity(this, fieldIndexOf(prior[i].Title()))
	})
}

// MostSimilarTextRelative is the distance back to the earlier post whose
// body is most cosine-similar to this post's body, or 0 for the leading
// post. The thread must be tokenized unless the extractor is lazy.
func (e *StructuralExtractor) MostSimilarTextRelative(p *Post) (float64, error) {
	if err := e.ensureThread(p.Thread()); err != nil {
		return 0, err
	}
	if p.Position() == 0 {
		return 0, nil
	}
	this := p.TokenIndex()
	prior := p.Thread().Posts()[:p.Position()]
	return mostSimilarBack(p.Position(), func(i int) float64 {
		return CosineSimilarity(this, prior[i].TokenIndex())
	}), nil
}

// QuestionCount counts question marks in the post body.
func QuestionCount(p *Post) float64 {
	return float64(len(reQuestionMark.FindAllStringIndex(p.Text(), -1)))
}

// ExclamationCount counts exclamation marks in the post body.
func ExclamationCount(p *Post) float64 {
	return float64(len(reExclaimMark.FindAllStringIndex(p.Text(), -1)))
}

// URLCount counts http:// occurrences in the post body.
func URLCount(p *Post) float64 {
	return float64(len(reHTTPScheme.FindAllStringIndex(p.Text(), -1)))
}

// StructuralFeatures extracts the structural vector for a post.
func (e *StructuralExtractor) StructuralFeatures(p *Post) (FeatureMap, error) {
	if err := e.ensureThread(p.Thread()); err != nil {
		return nil, err
	}
	initiator := 0.0
	if IsThreadInitiator(p) {
		initiator = 1.0
	}
	return FeatureMap{
		"isThreadInitiator": initiator,
		"positionRelative":  PositionRelative(p),
	}, nil
}

// SemanticFeatures extracts the semantic vector for a post.
func (e *StructuralExtractor) SemanticFeatures(p *Post) (FeatureMap, error) {
	mstr, err := e.MostSimilarTextRelative(p)
	if err != nil {
		return nil, err
	}
	return FeatureMap{
		"mostSimilarTitleRelative": MostSimilarTitleRelative(p),
		"mostSimilarTextRelative":  mstr,
		"questionCount":            QuestionCount(p),
		"exclamationCount":         ExclamationCount(p),
		"urlCount":                 URLCount(p),
	}, nil
}
