package forumfeatures

import "gonum.org/v1/gonum/floats"

// A SimilarityFn scores the similarity of two token indices.
type SimilarityFn func(a, b TokenIndex) float64

// CosineSimilarity computes the vector-space cosine of two token indices:
// the dot product over the product of Euclidean norms. It returns 0 when
// either index is empty.
func CosineSimilarity(a, b TokenIndex) float64 {
	keys := make(map[string]struct{}, len(a)+len(b))
	for tok := range a {
		keys[tok] = struct{}{}
	}
	for tok := range b {
		keys[tok] = struct{}{}
	}

	va := make([]float64, 0, len(keys))
	vb := make([]float64, 0, len(keys))
	for tok := range keys {
		va = append(va, float64(a[tok]))
		vb = append(vb, float64(b[tok]))
	}

	norm := floats.Norm(va, 2) * floats.Norm(vb, 2)
	if norm == 0 {
		return 0
	}
	return floats.Dot(va, vb) / norm
}

// Overlap computes the Wanas overlap of child against parent: the fraction
// of the child's token mass whose tokens also occur in the parent. An
// empty child yields 0.0.
func Overlap(child, parent TokenIndex) float64 {
	common := 0
	for tok, n := range child {
		if _, ok := parent[tok]; ok {
			common += n
		}
	}
	total := child.Total()
	if total == 0 {
		return 0.0
	}
	return float64(common) / float64(total)
}
