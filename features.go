package forumfeatures

import "gonum.org/v1/gonum/stat"

// A PostExtractor maps a post to a feature vector.
type PostExtractor func(*Post) (FeatureMap, error)

// A UserExtractor maps an author to a feature vector.
type UserExtractor func(*Author) (FeatureMap, error)

// An Aggregator combines per-item feature vectors into one.
type Aggregator func([]FeatureMap) FeatureMap

// FeatureMean averages a list of feature maps key-wise. The result's key
// set is the union of the inputs' keys; each key is averaged only over the
// inputs that contain it. An input missing a key is excluded from both
// numerator and denominator for that key, not treated as zero.
func FeatureMean(list []FeatureMap) FeatureMap {
	values := make(map[string][]float64)
	for _, fm := range list {
		for name, v := range fm {
			values[name] = append(values[name], v)
		}
	}
	agg := make(FeatureMap, len(values))
	for name, vs := range values {
		agg[name] = stat.Mean(vs, nil)
	}
	return agg
}

// SumFeature sums the named feature across the given maps. Maps without
// the key contribute zero.
func SumFeature(list []FeatureMap, name string) float64 {
	total := 0.0
	for _, fm := range list {
		total += fm[name]
	}
	return total
}

// RelDistribution returns the relative frequency of each distinct value in
// seq. An empty sequence is an error, not an empty map.
func RelDistribution[T comparable](seq []T) (map[T]float64, error) {
	if len(seq) == 0 {
		return nil, ErrEmptySequence
	}
	counts := make(map[T]int)
	for _, v := range seq {
		counts[v]++
	}
	total := float64(len(seq))
	out := make(map[T]float64, len(counts))
	for v, n := range counts {
		out[v] = float64(n) / total
	}
	return out, nil
}

// An AuthorRun is a maximal run of consecutive posts by one author, in
// thread insertion order.
type AuthorRun struct {
	Author string
	Posts  []*Post
}

// PartitionByAuthor groups a thread's posts into consecutive same-author
// runs, in insertion order.
func PartitionByAuthor(t *Thread) []AuthorRun {
	var runs []AuthorRun
	for _, p := range t.Posts() {
		if len(runs) == 0 || runs[len(runs)-1].Author != p.Author() {
			runs = append(runs, AuthorRun{Author: p.Author()})
		}
		runs[len(runs)-1].Posts = append(runs[len(runs)-1].Posts, p)
	}
	return runs
}

// A RoleSelector picks a distinguished author from a thread, or nil when
// the role does not exist there.
type RoleSelector func(*Thread) *Author

// Initiator selects the author of the thread's first post run.
func Initiator(t *Thread) *Author {
	runs := PartitionByAuthor(t)
	if len(runs) == 0 {
		return nil
	}
	a, _ := t.Forum().Author(runs[0].Author)
	return a
}

// FirstResponder selects the author of the second post run, or nil when
// the thread has a single run.
func FirstResponder(t *Thread) *Author {
	runs := PartitionByAuthor(t)
	if len(runs) < 2 {
		return nil
	}
	a, _ := t.Forum().Author(runs[1].Author)
	return a
}

// FinalResponder selects the author of the last post run. For a thread
// with one run this is the initiator.
func FinalResponder(t *Thread) *Author {
	runs := PartitionByAuthor(t)
	if len(runs) == 0 {
		return nil
	}
	a, _ := t.Forum().Author(runs[len(runs)-1].Author)
	return a
}

// SingleUserThreadFeatures extracts thread features by selecting one
// distinguished user and extracting that user's features. A missing role
// yields an empty feature map, not an error.
func SingleUserThreadFeatures(t *Thread, sel RoleSelector, extract UserExtractor) (FeatureMap, error) {
	user := sel(t)
	if user == nil {
		return FeatureMap{}, nil
	}
	return extract(user)
}

// UserPostAggregate maps a post extractor over all of the user's posts and
// combines the results with agg (FeatureMean when agg is nil).
func UserPostAggregate(a *Author, extract PostExtractor, agg Aggregator) (FeatureMap, error) {
	if agg == nil {
		agg = FeatureMean
	}
	maps := make([]FeatureMap, 0, len(a.Posts()))
	for _, p := range a.Posts() {
		fm, err := extract(p)
		if err != nil {
			return nil, err
		}
		maps = append(maps, fm)
	}
	return agg(maps), nil
}

// ForumUserFeatures aggregates post-level features per author across the
// whole forum, keyed by display name.
func ForumUserFeatures(f *Forum, extract PostExtractor, agg Aggregator) (map[string]FeatureMap, error) {
	out := make(map[string]FeatureMap)
	for _, a := range f.Authors() {
		fm, err := UserPostAggregate(a, extract, agg)
		if err != nil {
			return nil, err
		}
		out[a.Name()] = fm
	}
	return out, nil
}

// ThreadPostFeatures maps a post extractor over a thread's posts and
// combines the results with agg (FeatureMean when agg is nil).
func ThreadPostFeatures(t *Thread, extract PostExtractor, agg Aggregator) (FeatureMap, error) {
	if agg == nil {
		agg = FeatureMean
	}
	maps := make([]FeatureMap, 0, t.Len())
	for _, p := range t.Posts() {
		fm, err := extract(p)
		if err != nil {
			return nil, err
		}
		maps = append(maps, fm)
	}
	return agg(maps), nil
}
