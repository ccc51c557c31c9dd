package forumfeatures

import (
	"fmt"
	"sort"
	"strings"

	"github.com/katalvlaran/lvlath/core"
)

// NodeKind says what a network's node keys identify.
type NodeKind string

const (
	// AuthorNodes keys nodes by author display name.
	AuthorNodes NodeKind = "author"
	// ThreadNodes keys nodes by thread id.
	ThreadNodes NodeKind = "thread"
)

// A ThreadPredicate decides whether two threads are linked.
type ThreadPredicate interface {
	HasEdge(a, b *Thread) (bool, error)
}

// An AuthorPredicate decides whether two authors are linked. For directed
// networks the argument order is the edge direction.
type AuthorPredicate interface {
	HasEdge(a, b *Author) (bool, error)
}

// A SocialNetwork is a graph over a forum's authors or threads, built by
// testing an edge predicate over node pairs.
type SocialNetwork struct {
	kind     NodeKind
	directed bool
	nodes    []string
	graph    *core.Graph
}

// Kind returns what the node keys identify.
func (n *SocialNetwork) Kind() NodeKind { return n.kind }

// Directed reports whether edges have direction.
func (n *SocialNetwork) Directed() bool { return n.directed }

// Nodes returns all node keys in sorted order, including isolated nodes.
func (n *SocialNetwork) Nodes() []string {
	out := make([]string, len(n.nodes))
	copy(out, n.nodes)
	return out
}

// HasEdge reports whether an edge from a to b exists.
func (n *SocialNetwork) HasEdge(a, b string) bool {
	return n.graph.HasEdge(a, b)
}

// EdgeCount returns the number of stored edges.
func (n *SocialNetwork) EdgeCount() int { return n.graph.EdgeCount() }

func (n *SocialNetwork) String() string {
	return fmt.Sprintf("<%s network with %d nodes, %d edges>",
		n.kind, len(n.nodes), n.graph.EdgeCount())
}

func newSocialNetwork(kind NodeKind, directed bool, nodes []string) (*SocialNetwork, error) {
	g := core.NewGraph(core.WithDirected(directed))
	for _, id := range nodes {
		if err := g.AddVertex(id); err != nil {
			return nil, fmt.Errorf("add node %q: %w", id, err)
		}
	}
	return &SocialNetwork{kind: kind, directed: directed, nodes: nodes, graph: g}, nil
}

func (n *SocialNetwork) addEdge(a, b string) error {
	if _, err := n.graph.AddEdge(a, b, 0); err != nil {
		return fmt.Errorf("add edge %q-%q: %w", a, b, err)
	}
	return nil
}

// NewThreadNetwork links threads of the forum under pred. Edges are
// undirected; each unordered pair of distinct threads, taken in id order,
// is tested once.
func NewThreadNetwork(f *Forum, pred ThreadPredicate) (*SocialNetwork, error) {
	threads := make([]*Thread, len(f.Threads()))
	copy(threads, f.Threads())
	sort.Slice(threads, func(i, j int) bool { return threads[i].ID() < threads[j].ID() })

	ids := make([]string, len(threads))
	for i, t := range threads {
		ids[i] = t.ID()
	}
	n, err := newSocialNetwork(ThreadNodes, false, ids)
	if err != nil {
		return nil, err
	}
	for i, a := range threads {
		for _, b := range threads[i+1:] {
			ok, err := pred.HasEdge(a, b)
			if err != nil {
				return nil, err
			}
			if ok {
				if err := n.addEdge(a.ID(), b.ID()); err != nil {
					return nil, err
				}
			}
		}
	}
	return n, nil
}

func sortedAuthors(f *Forum) []*Author {
	return f.Authors()
}

// NewAuthorNetwork links authors of the forum under pred. Edges are
// undirected; each unordered pair of distinct authors, taken in name order,
// is tested once.
func NewAuthorNetwork(f *Forum, pred AuthorPredicate) (*SocialNetwork, error) {
	authors := sortedAuthors(f)
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Name()
	}
	n, err := newSocialNetwork(AuthorNodes, false, names)
	if err != nil {
		return nil, err
	}
	for i, a := range authors {
		for _, b := range authors[i+1:] {
			ok, err := pred.HasEdge(a, b)
			if err != nil {
				return nil, err
			}
			if ok {
				if err := n.addEdge(a.Name(), b.Name()); err != nil {
					return nil, err
				}
			}
		}
	}
	return n, nil
}

// NewDirectedAuthorNetwork links authors of the forum under pred, testing
// both orientations of every distinct pair.
func NewDirectedAuthorNetwork(f *Forum, pred AuthorPredicate) (*SocialNetwork, error) {
	authors := sortedAuthors(f)
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Name()
	}
	n, err := newSocialNetwork(AuthorNodes, true, names)
	if err != nil {
		return nil, err
	}
	for i, a := range authors {
		for _, b := range authors[i+1:] {
			ok, err := pred.HasEdge(a, b)
			if err != nil {
				return nil, err
			}
			if ok {
				if err := n.addEdge(a.Name(), b.Name()); err != nil {
					return nil, err
				}
			}
			ok, err = pred.HasEdge(b, a)
			if err != nil {
				return nil, err
			}
			if ok {
				if err := n.addEdge(b.Name(), a.Name()); err != nil {
					return nil, err
				}
			}
		}
	}
	return n, nil
}

// FeatureVector builds the Fortuna-style two-hop adjacency vector for a
// node: its neighbors score 1.0 and their neighbors score 0.5, with the
// direct score never downgraded. The node itself gets no entry, and an
// unknown node yields an empty map. In directed networks only outgoing
// edges are followed.
func (n *SocialNetwork) FeatureVector(node string) FeatureMap {
	fv := FeatureMap{}
	direct, err := n.graph.NeighborIDs(node)
	if err != nil {
		return fv
	}
	for _, b := range direct {
		fv[b] = 1.0
	}
	for _, b := range direct {
		second, err := n.graph.NeighborIDs(b)
		if err != nil {
			continue
		}
		for _, c := range second {
			if c == node {
				continue
			}
			if _, seen := fv[c]; !seen {
				fv[c] = 0.5
			}
		}
	}
	return fv
}

// CommonAuthors links two threads that share at least Min posting authors.
type CommonAuthors struct {
	Min int
}

func (p CommonAuthors) HasEdge(a, b *Thread) (bool, error) {
	// Probe the smaller author set against the larger.
	if len(a.PostAuthors()) > len(b.PostAuthors()) {
		a, b = b, a
	}
	common := 0
	for _, name := range a.PostAuthors() {
		if b.HasAuthor(name) {
			common++
		}
	}
	return common >= p.Min, nil
}

// TextSimilarity links two threads whose token indices score at least
// Threshold under Sim (CosineSimilarity when nil). Both threads must be
// tokenized.
type TextSimilarity struct {
	Threshold float64
	Sim       SimilarityFn
}

func (p TextSimilarity) HasEdge(a, b *Thread) (bool, error) {
	if !a.Tokenized() {
		return false, fmt.Errorf("thread %q: %w", a.ID(), ErrNotTokenized)
	}
	if !b.Tokenized() {
		return false, fmt.Errorf("thread %q: %w", b.ID(), ErrNotTokenized)
	}
	sim := p.Sim
	if sim == nil {
		sim = CosineSimilarity
	}
	return sim(a.TokenIndex(), b.TokenIndex()) >= p.Threshold, nil
}

// PostAfter links author A to author B when A posted within Dist posts
// after one of B's posts on at least Count occasions. Occasions may all
// fall in one thread.
type PostAfter struct {
	Dist  int
	Count int
}

func (p PostAfter) HasEdge(a, b *Author) (bool, error) {
	count := 0
	for _, post := range b.Posts() {
		curr := post
		for i := 0; i < p.Dist; i++ {
			curr = curr.NextInThread()
			if curr == nil {
				break
			}
			if curr.Author() == a.Name() {
				count++
			}
		}
	}
	return count >= p.Count, nil
}

// ThreadParticipation links two authors who co-occur in at least Min
// threads.
type ThreadParticipation struct {
	Min int
}

func (p ThreadParticipation) HasEdge(a, b *Author) (bool, error) {
	// Probe the author with fewer threads.
	if len(a.AllThreads()) > len(b.AllThreads()) {
		a, b = b, a
	}
	count := 0
	for _, t := range a.AllThreads() {
		if t.HasAuthor(b.Name()) {
			count++
		}
	}
	return count >= p.Min, nil
}

// CommonAuthorsNetwork builds the undirected thread network linking threads
// with at least m shared authors.
func CommonAuthorsNetwork(f *Forum, m int) (*SocialNetwork, error) {
	return NewThreadNetwork(f, CommonAuthors{Min: m})
}

// TextSimilarityNetwork builds the undirected thread network linking
// threads with cosine similarity of at least threshold.
func TextSimilarityNetwork(f *Forum, threshold float64) (*SocialNetwork, error) {
	return NewThreadNetwork(f, TextSimilarity{Threshold: threshold})
}

// PostAfterNetwork builds the directed author reply network under
// PostAfter(dist, count).
func PostAfterNetwork(f *Forum, dist, count int) (*SocialNetwork, error) {
	return NewDirectedAuthorNetwork(f, PostAfter{Dist: dist, Count: count})
}

// ThreadParticipationNetwork builds the undirected author co-participation
// network under ThreadParticipation(k).
func ThreadParticipationNetwork(f *Forum, k int) (*SocialNetwork, error) {
	return NewAuthorNetwork(f, ThreadParticipation{Min: k})
}

// A NetworkArtifact is the persistable form of a SocialNetwork: node and
// edge lists, ready for gob.
type NetworkArtifact struct {
	Kind     NodeKind
	Directed bool
	Nodes    []string
	Edges    [][2]string
}

// Artifact extracts the network's persistable form.
func (n *SocialNetwork) Artifact() NetworkArtifact {
	art := NetworkArtifact{
		Kind:     n.kind,
		Directed: n.directed,
		Nodes:    append([]string(nil), n.nodes...),
	}
	for _, e := range n.graph.Edges() {
		art.Edges = append(art.Edges, [2]string{e.From, e.To})
	}
	return art
}

// networkFromArtifact rebuilds a SocialNetwork from its persisted form.
func networkFromArtifact(art NetworkArtifact) (*SocialNetwork, error) {
	n, err := newSocialNetwork(art.Kind, art.Directed, art.Nodes)
	if err != nil {
		return nil, err
	}
	for _, e := range art.Edges {
		if err := n.addEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// A NetworkSpec identifies a network build for caching: the build name, the
// forum it derives from (by title; forum data is assumed static), and the
// build parameters.
type NetworkSpec struct {
	Name   string
	Forum  *Forum
	Params map[string]string
}

// Key renders the spec as a canonical cache key, with parameters in sorted
// order.
func (s NetworkSpec) Key() string {
	params := make([]string, 0, len(s.Params))
	for k, v := range s.Params {
		params = append(params, k+"="+v)
	}
	sort.Strings(params)
	return fmt.Sprintf("%s(%s){%s}", s.Name, s.Forum.Title, strings.Join(params, ","))
}

// ComputeNetwork returns the network for spec, building it with build on a
// cache miss and persisting the result as an edge-list artifact.
func ComputeNetwork(cache *NetworkCache, spec NetworkSpec, build func(*Forum) (*SocialNetwork, error)) (*SocialNetwork, error) {
	art, err := GetOrCompute(cache, spec.Key(), func() (NetworkArtifact, error) {
		n, err := build(spec.Forum)
		if err != nil {
			return NetworkArtifact{}, err
		}
		return n.Artifact(), nil
	})
	if err != nil {
		return nil, err
	}
	return networkFromArtifact(art)
}
