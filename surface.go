package forumfeatures

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bbalet/stopwords"
)

// Messenger-style emoticons counted by FormatEmoticons.
var messengerEmoticons = []string{
	":)", ":D", ";)", ":-O", ":P", "(H)", ":(", ":'(", ":|", "(brb)",
	":$", ":S", ":^)", "*-)", "|-)", ":-#", "*o|", "<:o)",
	"+o(", ":@", "(6)", "(A)", "8-|", "^o)", ":-*", "(Y)", "(N)",
	"(h5)", "(yn)", "({)", "(})", "(Z)", "(X)", "(M)", "(L)", "(U)",
	"(F)", "(W)", "(K)", "(G)", "(^)", "(ci)", "(%)", "(B)",
	"(D)", "(S)", "(*)", "(#)", "(R)", "(um)", "(ip)", "(st)", "(li)",
	"(pl)", "(ll)", "(pi)", "(C)", "(@)", "(&)", ":[", "(nah)",
	"(sn)", "(tu)", "(bah)", "(~)", "(8)", "(E)", "(P)", "(I)", "(O)",
	"(T)", "(co)", "(mp)", "(xx)", "(so)", "(au)", "(ap)", "(mo)",
}

var reAnchorTag = regexp.MustCompile(`(?i)a href=`)

// SurfaceExtractor computes the Wanas-style post-scoring surface features:
// relevance, originality, timing, and formatting signals.
type SurfaceExtractor struct {
	cfg extractorConfig
}

// NewSurfaceExtractor builds a surface feature extractor.
func NewSurfaceExtractor(opts ...ExtractorOpt) *SurfaceExtractor {
	return &SurfaceExtractor{cfg: newExtractorConfig(opts)}
}

func (e *SurfaceExtractor) ensureThread(t *Thread) error {
	if t.Tokenized() {
		return nil
	}
	if !e.cfg.lazy {
		return fmt.Errorf("thread %q: %w", t.ID(), ErrNotTokenized)
	}
	t.EnsureTokenized(e.cfg.tokenizer)
	return nil
}

// OnThreadTopic measures how much of the post's token mass overlaps the
// thread topic. The leading post is compared against the tokenized thread
// title; every other post is compared against the leading post.
func (e *SurfaceExtractor) OnThreadTopic(p *Post) (float64, error) {
	if err := e.ensureThread(p.Thread()); err != nil {
		return 0, err
	}
	first := p.Thread().Posts()[0]
	if p == first {
		title := tokenIndexOf(e.cfg.tokenizer(p.Thread().Title()))
		return Overlap(p.TokenIndex(), title), nil
	}
	return Overlap(p.TokenIndex(), first.TokenIndex()), nil
}

// priorOverlaps computes the overlap of p against each earlier post in
// insertion order.
func priorOverlaps(p *Post) []float64 {
	overlaps := make([]float64, 0, p.Position())
	for _, other := range p.Thread().Posts()[:p.Position()] {
		overlaps = append(overlaps, Overlap(p.TokenIndex(), other.TokenIndex()))
	}
	return overlaps
}

// OverlapPrevious returns the maximum overlap between the post and any
// earlier post in the thread, or 0.0 for the leading post.
func (e *SurfaceExtractor) OverlapPrevious(p *Post) (float64, error) {
	if err := e.ensureThread(p.Thread()); err != nil {
		return 0, err
	}
	best := 0.0
	for _, v := range priorOverlaps(p) {
		if v > best {
			best = v
		}
	}
	return best, nil
}

// OverlapDistance returns how many posts back the most-overlapping earlier
// post sits. Ties resolve to the earliest candidate. The leading post
// yields 0.
func (e *SurfaceExtractor) OverlapDistance(p *Post) (float64, error) {
	if err := e.ensureThread(p.Thread()); err != nil {
		return 0, err
	}
	overlaps := priorOverlaps(p)
	if len(overlaps) == 0 {
		return 0, nil
	}
	bestIdx := 0
	for i, v := range overlaps {
		if v > overlaps[bestIdx] {
			bestIdx = i
		}
	}
	return float64(p.Position() - bestIdx), nil
}

// Timeliness compares the gap before this post with the thread's mean
// inter-post gap. A zero mean gap or negative ratio indicates unreliable
// timing data and yields 0.0.
func (e *SurfaceExtractor) Timeliness(p *Post) float64 {
	posts := p.Thread().Posts()
	if p == posts[0] {
		return 0.0
	}
	meanGap := 0.0
	for i := 1; i < len(posts); i++ {
		meanGap += posts[i].Date().Sub(posts[i-1].Date()).Seconds()
	}
	meanGap /= float64(len(posts) - 1)
	if meanGap == 0 {
		return 0.0
	}
	gap := p.Date().Sub(posts[p.Position()-1].Date()).Seconds()
	r := gap / meanGap
	if r < 0 {
		return 0.0
	}
	return r
}

// Lengthiness is the post's character length relative to the thread's mean
// post length, with 0.0 for a zero mean.
func (e *SurfaceExtractor) Lengthiness(p *Post) float64 {
	total := 0
	for _, other := range p.Thread().Posts() {
		total += other.Len()
	}
	mean := float64(total) / float64(p.Thread().Len())
	if mean == 0 {
		return 0.0
	}
	return float64(p.Len()) / mean
}

// FormatEmoticons is the count of messenger emoticons per sentence, 0.0
// when the post has no sentences.
func (e *SurfaceExtractor) FormatEmoticons(p *Post) float64 {
	numSent := len(p.Sentences())
	if numSent == 0 {
		return 0.0
	}
	count := 0
	for _, emo := range messengerEmoticons {
		if strings.Contains(p.Text(), emo) {
			count++
		}
	}
	return float64(count) / float64(numSent)
}

// FormatCapitals is the count of all-capital character runs per sentence,
// 0.0 when the post has no sentences.
func (e *SurfaceExtractor) FormatCapitals(p *Post) float64 {
	numSent := len(p.Sentences())
	if numSent == 0 {
		return 0.0
	}
	runs := 0
	inRun := false
	for i := 0; i < len(p.Text()); i++ {
		c := p.Text()[i]
		upper := c >= 'A' && c <= 'Z'
		if upper && !inRun {
			runs++
		}
		inRun = upper
	}
	return float64(runs) / float64(numSent)
}

// Weblinks is the count of anchor tags per sentence, 0.0 when the post
// has no sentences.
func (e *SurfaceExtractor) Weblinks(p *Post) float64 {
	numSent := len(p.Sentences())
	if numSent == 0 {
		return 0.0
	}
	links := len(reAnchorTag.FindAllStringIndex(p.Text(), -1))
	return float64(links) / float64(numSent)
}

// StopwordDensity is the fraction of the post's token mass made up of
// English stop words, 0.0 for an empty index.
func (e *SurfaceExtractor) StopwordDensity(p *Post) (float64, error) {
	if err := e.ensureThread(p.Thread()); err != nil {
		return 0, err
	}
	idx := p.TokenIndex()
	total := idx.Total()
	if total == 0 {
		return 0.0, nil
	}
	stopped := 0
	for tok, n := range idx {
		if strings.TrimSpace(stopwords.CleanString(tok, "en", false)) == "" {
			stopped += n
		}
	}
	return float64(stopped) / float64(total), nil
}

// Features extracts the full surface vector for a post.
func (e *SurfaceExtractor) Features(p *Post) (FeatureMap, error) {
	if err := e.ensureThread(p.Thread()); err != nil {
		return nil, err
	}
	onTopic, err := e.OnThreadTopic(p)
	if err != nil {
		return nil, err
	}
	overlapPrev, err := e.OverlapPrevious(p)
	if err != nil {
		return nil, err
	}
	overlapDist, err := e.OverlapDistance(p)
	if err != nil {
		return nil, err
	}
	stopDensity, err := e.StopwordDensity(p)
	if err != nil {
		return nil, err
	}
	return FeatureMap{
		"onThreadTopic":   onTopic,
		"overlapPrevious": overlapPrev,
		"overlapDistance": overlapDist,
		"timeliness":      e.Timeliness(p),
		"lengthiness":     e.Lengthiness(p),
		"formatEmoticons": e.FormatEmoticons(p),
		"formatCapitals":  e.FormatCapitals(p),
		"weblinks":        e.Weblinks(p),
		"stopwordDensity": stopDensity,
	}, nil
}
