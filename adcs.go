package forumfeatures

import (
	"fmt"
	"regexp"

	"gonum.org/v1/gonum/stat"
)

// Feature name groups of the ADCS thread vector. Additive features are
// summed across a section's posts; proportion features are ratios of
// section totals; positional features locate a section within the thread.
var (
	additiveFeatures = []string{
		"distribution",
		"beginner",
		"emoticons",
		"version_numbers",
		"urls",
	}

	postProportionFeatures = []string{
		"question_sentence",
		"exclaim_sentence",
		"period_sentence",
		"other_sentence",
	}

	partProportionFeatures = []string{
		"word_prop",
		"sentence_prop",
		"first_question_ratio",
	}

	positionalFeatures = []string{
		"first_post_prop",
		"last_post_prop",
	}
)

var distributionWords = []string{
	"redhat", "rh", "fc", "fedora", "ubuntu", "debian", "suse", "gentoo", "slackware",
}

var beginnerWords = []string{
	"noob", "noobie", "newb", "newbie", "n00b", "n00bie",
}

var (
	reEmoticonImg   = regexp.MustCompile(`(?i)img src=`)
	reVersionNumber = regexp.MustCompile(`\d+\.\d?`)
	reURL           = regexp.MustCompile(`(http|www\.)\S+\.\S+`)
)

// ADCSExtractor computes the post, post-group, and thread feature vectors
// of the ADCS methodology.
type ADCSExtractor struct {
	cfg extractorConfig
}

// NewADCSExtractor builds an extractor. By default a missing token index
// is an error; pass WithLazyTokenization(true) to have the extractor
// populate indices itself.
func NewADCSExtractor(opts ...ExtractorOpt) *ADCSExtractor {
	return &ADCSExtractor{cfg: newExtractorConfig(opts)}
}

func (e *ADCSExtractor) ensurePost(p *Post) error {
	if p.Tokenized() {
		return nil
	}
	if !e.cfg.lazy {
		return fmt.Errorf("post %q: %w", p.ID(), ErrNotTokenized)
	}
	p.EnsureTokenized(e.cfg.tokenizer)
	return nil
}

// PostFeatures extracts the ADCS post-level vector: topic keyword flags,
// surface regex flags, and sentence-type counts.
func (e *ADCSExtractor) PostFeatures(p *Post) (FeatureMap, error) {
	if err := e.ensurePost(p); err != nil {
		return nil, err
	}
	idx := p.TokenIndex()

	features := FeatureMap{
		"distribution":    0,
		"beginner":        0,
		"emoticons":       0,
		"version_numbers": 0,
		"urls":            0,
	}
	for _, w := range distributionWords {
		if _, ok := idx[w]; ok {
			features["distribution"] = 1
			break
		}
	}
	for _, w := range beginnerWords {
		if _, ok := idx[w]; ok {
			features["beginner"] = 1
			break
		}
	}
	if reEmoticonImg.MatchString(p.Text()) {
		features["emoticons"] = 1
	}
	if reVersionNumber.MatchString(p.Text()) {
		features["version_numbers"] = 1
	}
	if reURL.MatchString(p.Text()) {
		features["urls"] = 1
	}

	features["words"] = 0
	features["sentence"] = 0
	features["question_sentence"] = 0
	features["exclaim_sentence"] = 0
	features["period_sentence"] = 0
	features["other_sentence"] = 0
	for _, s := range p.Sentences() {
		features["words"] += float64(len(s.Tokens))
		features["sentence"]++
		switch s.End {
		case EndQuestion:
			features["question_sentence"]++
		case EndExclaim:
			features["exclaim_sentence"]++
		case EndPeriod:
			features["period_sentence"]++
		default:
			features["other_sentence"]++
		}
	}
	return features, nil
}

// GroupFeatures aggregates post features over an ordered post group:
// additive sums, sentence-type proportions, and mean sentence/word
// lengths. Proportions over an empty group fall back to 0.0; that is the
// group-level policy, not a framework default.
func (e *ADCSExtractor) GroupFeatures(posts []*Post) (FeatureMap, error) {
	features := FeatureMap{"posts": float64(len(posts))}

	postFeats := make([]FeatureMap, 0, len(posts))
	for _, p := range posts {
		pf, err := e.PostFeatures(p)
		if err != nil {
			return nil, err
		}
		postFeats = append(postFeats, pf)
	}

	for _, name := range additiveFeatures {
		features[name] = SumFeature(postFeats, name)
	}
	features["words"] = SumFeature(postFeats, "words")
	features["sentence"] = SumFeature(postFeats, "sentence")

	for _, name := range postProportionFeatures {
		total := SumFeature(postFeats, name)
		if features["sentence"] != 0 {
			features[name] = total / features["sentence"]
		} else {
			features[name] = 0.0
		}
	}

	var sentenceLengths, wordLengths []float64
	for _, p := range posts {
		for _, s := range p.Sentences() {
			sentenceLengths = append(sentenceLengths, float64(len(s.Tokens)))
			for _, w := range s.Tokens {
				wordLengths = append(wordLengths, float64(len(w)))
			}
		}
	}
	features["avg_sentence"] = 0.0
	features["avg_word"] = 0.0
	if len(sentenceLengths) > 0 {
		features["avg_sentence"] = stat.Mean(sentenceLengths, nil)
	}
	if len(wordLengths) > 0 {
		features["avg_word"] = stat.Mean(wordLengths, nil)
	}
	return features, nil
}

// ThreadFeatures computes the composite ADCS thread vector: the thread is
// tokenized, partitioned into its four sections, and each section's group
// features are extended with cross-section proportions and positional
// features, flattened under "<section>_<feature>" keys.
//
// Zero thread-wide word or sentence totals, or an initialPost section with
// no sentences, mark a degenerate corpus and fail with ErrZeroTotal.
func (e *ADCSExtractor) ThreadFeatures(t *Thread) (FeatureMap, error) {
	if !t.Tokenized() {
		if !e.cfg.lazy {
			return nil, fmt.Errorf("thread %q: %w", t.ID(), ErrNotTokenized)
		}
		t.EnsureTokenized(e.cfg.tokenizer)
	}

	part, err := PartitionThread(t)
	if err != nil {
		return nil, err
	}
	sections := part.Sections()

	sectionFeats := make(map[string]FeatureMap, len(sections))
	totalWords, totalSentences, totalPosts := 0.0, 0.0, 0.0
	for _, sec := range sections {
		gf, err := e.GroupFeatures(sec.Posts)
		if err != nil {
			return nil, err
		}
		sectionFeats[sec.Name] = gf
		totalWords += gf["words"]
		totalSentences += gf["sentence"]
		totalPosts += gf["posts"]
	}

	if totalWords == 0 || totalSentences == 0 {
		return nil, fmt.Errorf("thread %q: %w", t.ID(), ErrZeroTotal)
	}
	initialSentences := sectionFeats[SectionInitialPost]["sentence"]
	if initialSentences == 0 {
		return nil, fmt.Errorf("thread %q initialPost sentences: %w", t.ID(), ErrZeroTotal)
	}

	lastPost := 0.0
	for _, sec := range sections {
		sf := sectionFeats[sec.Name]
		sf["word_prop"] = sf["words"] / totalWords
		sf["sentence_prop"] = sf["sentence"] / totalSentences
		sf["first_question_ratio"] = sf["sentence"] / initialSentences

		// Running fraction of the thread's posts consumed when this
		// section starts and ends.
		sf["first_post_prop"] = (lastPost + 1) / totalPosts
		lastPost += sf["posts"]
		sf["last_post_prop"] = lastPost / totalPosts
	}

	fv := FeatureMap{}
	var names []string
	names = append(names, additiveFeatures...)
	names = append(names, postProportionFeatures...)
	names = append(names, partProportionFeatures...)
	names = append(names, positionalFeatures...)
	for _, sec := range sections {
		for _, name := range names {
			fv[sec.Name+"_"+name] = sectionFeats[sec.Name][name]
		}
	}
	return fv, nil
}
