package forumfeatures

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"
)

// cleanString drops control characters (C0 except newline, DEL, and the
// C1 range) from titles, author names, and post text at load time.
func cleanString(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' {
			return -1
		}
		if r >= 0x7f && r <= 0x9f {
			return -1
		}
		return r
	}, s)
}

// A Forum owns an ordered collection of threads, the registry of authors
// seen in them, and an optional aggregate token index.
type Forum struct {
	Title string

	threads    []*Thread
	threadByID map[string]*Thread
	posts      []*Post
	authors    map[string]*Author

	tokens    TokenIndex
	tokenizer Tokenizer
}

// NewForum creates an empty forum with the given title.
func NewForum(title string) *Forum {
	return &Forum{
		Title:      title,
		threadByID: make(map[string]*Thread),
		authors:    make(map[string]*Author),
	}
}

func (f *Forum) String() string {
	return fmt.Sprintf("<forum %s, %d threads, %d posts, %d authors>",
		f.Title, len(f.threads), len(f.posts), len(f.authors))
}

// Threads returns the forum's threads in load order.
func (f *Forum) Threads() []*Thread { return f.threads }

// Thread looks up a thread by id.
func (f *Forum) Thread(id string) (*Thread, bool) {
	t, ok := f.threadByID[id]
	return t, ok
}

// Posts returns every post in the forum in load order.
func (f *Forum) Posts() []*Post { return f.posts }

// Author looks up an author by display name. Authors are identified solely
// by display name: two users sharing a display string are one Author. All
// lookups go through this method so a stable-id scheme can replace the
// name keying without touching feature code.
func (f *Forum) Author(name string) (*Author, bool) {
	a, ok := f.authors[name]
	return a, ok
}

// Authors returns all authors sorted by display name.
func (f *Forum) Authors() []*Author {
	names := make([]string, 0, len(f.authors))
	for name := range f.authors {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Author, len(names))
	for i, name := range names {
		out[i] = f.authors[name]
	}
	return out
}

func (f *Forum) ensureAuthor(name string) *Author {
	a, ok := f.authors[name]
	if !ok {
		a = &Author{name: name}
		f.authors[name] = a
	}
	return a
}

// AddThread appends a thread to the forum and registers its initiating
// author. Thread ids must be unique within the forum.
func (f *Forum) AddThread(id, title, author string, date time.Time) (*Thread, error) {
	if _, ok := f.threadByID[id]; ok {
		return nil, fmt.Errorf("thread %q: %w", id, ErrDuplicateID)
	}
	t := &Thread{
		id:          id,
		title:       cleanString(title),
		author:      cleanString(author),
		date:        date,
		forum:       f,
		postByID:    make(map[string]*Post),
		postAuthors: make(map[string]struct{}),
	}
	f.threads = append(f.threads, t)
	f.threadByID[id] = t
	a := f.ensureAuthor(t.author)
	a.threads = append(a.threads, t)
	return t, nil
}

// AddPost appends a post to the identified thread and registers its author.
// Post ids must be unique within their thread.
func (f *Forum) AddPost(threadID, postID, title, author string, date time.Time, text string) (*Post, error) {
	t, ok := f.threadByID[threadID]
	if !ok {
		return nil, fmt.Errorf("thread %q: %w", threadID, ErrThreadNotFound)
	}
	p, err := t.addPost(postID, cleanString(title), cleanString(author), date, cleanString(text))
	if err != nil {
		return nil, err
	}
	a := f.ensureAuthor(p.author)
	a.posts = append(a.posts, p)
	f.posts = append(f.posts, p)
	return p, nil
}

// RunTokenizer recomputes the token index of every thread and post from
// scratch with tok, then sums the thread indices into the forum index.
func (f *Forum) RunTokenizer(tok Tokenizer) {
	f.tokenizer = tok
	f.tokens = make(TokenIndex)
	for _, t := range f.threads {
		t.RunTokenizer(tok)
		f.tokens.add(t.tokens)
	}
}

// EnsureTokenized runs the tokenizer only if the forum has no token index
// yet. It is idempotent; repeated calls are no-ops.
func (f *Forum) EnsureTokenized(tok Tokenizer) {
	if f.tokens == nil {
		f.RunTokenizer(tok)
	}
}

// Tokenized reports whether the forum-wide token index has been computed.
func (f *Forum) Tokenized() bool { return f.tokens != nil }

// TokenIndex returns the aggregate token index, or nil before tokenization.
// Callers must treat the returned map as read-only.
func (f *Forum) TokenIndex() TokenIndex { return f.tokens }

// Equal reports whether two forums hold the same thread sequence by id.
func (f *Forum) Equal(other *Forum) bool {
	if len(f.threads) != len(other.threads) {
		return false
	}
	for i, t := range f.threads {
		if t.id != other.threads[i].id {
			return false
		}
	}
	return true
}

// Sample builds a new forum from k threads drawn without replacement using
// the given seed. Posts are copied thread by thread.
func (f *Forum) Sample(k int, seed int64) (*Forum, error) {
	if k > len(f.threads) {
		return nil, fmt.Errorf("sample %d of %d: %w", k, len(f.threads), ErrNotEnoughThreads)
	}
	rng := rand.New(rand.NewSource(seed))
	sub := NewForum(fmt.Sprintf("%s_(k:%d,seed:%d)", f.Title, k, seed))
	for _, i := range rng.Perm(len(f.threads))[:k] {
		t := f.threads[i]
		if _, err := sub.AddThread(t.id, t.title, t.author, t.date); err != nil {
			return nil, err
		}
		for _, p := range t.posts {
			if _, err := sub.AddPost(t.id, p.id, p.title, p.author, p.date, p.text); err != nil {
				return nil, err
			}
		}
	}
	return sub, nil
}

// A Thread is an ordered collection of posts sharing a topic. Insertion
// order is load order and is not guaranteed chronological; PostsByDate
// derives the chronological view.
type Thread struct {
	id     string
	title  string
	author string
	date   time.Time
	forum  *Forum

	posts       []*Post
	postByID    map[string]*Post
	postAuthors map[string]struct{}

	tokens    TokenIndex
	tokenizer Tokenizer
}

func (t *Thread) String() string {
	return fmt.Sprintf("<thread %s by %s, %d posts>", t.id, t.author, len(t.posts))
}

// ID returns the thread id, unique within its forum.
func (t *Thread) ID() string { return t.id }

// Title returns the thread title.
func (t *Thread) Title() string { return t.title }

// Author returns the recorded initiating author. This may differ from the
// author of the chronologically first post; the partitioner always uses
// the chronological one.
func (t *Thread) Author() string { return t.author }

// Date returns the thread creation timestamp.
func (t *Thread) Date() time.Time { return t.date }

// Forum returns the owning forum.
func (t *Thread) Forum() *Forum { return t.forum }

// Len returns the number of posts.
func (t *Thread) Len() int { return len(t.posts) }

// Posts returns the posts in insertion order.
func (t *Thread) Posts() []*Post { return t.posts }

// Post looks up a post by id.
func (t *Thread) Post(id string) (*Post, bool) {
	p, ok := t.postByID[id]
	return p, ok
}

// PostsByDate returns the posts sorted ascending by timestamp. The sort is
// stable: ties keep insertion order, which keeps downstream features
// reproducible.
func (t *Thread) PostsByDate() []*Post {
	out := make([]*Post, len(t.posts))
	copy(out, t.posts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].date.Before(out[j].date)
	})
	return out
}

// PostAuthors returns the distinct display names that have posted in the
// thread, sorted.
func (t *Thread) PostAuthors() []string {
	names := make([]string, 0, len(t.postAuthors))
	for name := range t.postAuthors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasAuthor reports whether the named author has posted in the thread.
func (t *Thread) HasAuthor(name string) bool {
	_, ok := t.postAuthors[name]
	return ok
}

func (t *Thread) addPost(id, title, author string, date time.Time, text string) (*Post, error) {
	if _, ok := t.postByID[id]; ok {
		return nil, fmt.Errorf("post %q in thread %q: %w", id, t.id, ErrDuplicateID)
	}
	p := &Post{
		id:     id,
		title:  title,
		author: author,
		date:   date,
		text:   text,
		pos:    len(t.posts),
		thread: t,
	}
	t.posts = append(t.posts, p)
	t.postByID[id] = p
	t.postAuthors[author] = struct{}{}
	return p, nil
}

// RunTokenizer recomputes every post's token index from scratch with tok
// and sums them into the thread index.
func (t *Thread) RunTokenizer(tok Tokenizer) {
	t.tokenizer = tok
	t.tokens = make(TokenIndex)
	for _, p := range t.posts {
		p.RunTokenizer(tok)
		t.tokens.add(p.tokens)
	}
}

// EnsureTokenized runs the tokenizer only if the thread has no token index
// yet.
func (t *Thread) EnsureTokenized(tok Tokenizer) {
	if t.tokens == nil {
		t.RunTokenizer(tok)
	}
}

// Tokenized reports whether the thread token index has been computed.
func (t *Thread) Tokenized() bool { return t.tokens != nil }

// TokenIndex returns the thread token index, or nil before tokenization.
func (t *Thread) TokenIndex() TokenIndex { return t.tokens }

// A Post is a single authored message within a thread.
type Post struct {
	id     string
	title  string
	author string
	date   time.Time
	text   string
	pos    int
	thread *Thread

	tokens    TokenIndex
	tokenizer Tokenizer
}

func (p *Post) String() string {
	return fmt.Sprintf("<post %s by '%s'>", p.id, p.author)
}

// ID returns the post id, unique within its thread.
func (p *Post) ID() string { return p.id }

// Title returns the post title.
func (p *Post) Title() string { return p.title }

// Author returns the author display name.
func (p *Post) Author() string { return p.author }

// Date returns the post timestamp.
func (p *Post) Date() time.Time { return p.date }

// Text returns the cleaned post text.
func (p *Post) Text() string { return p.text }

// Thread returns the owning thread.
func (p *Post) Thread() *Thread { return p.thread }

// Position returns the post's index in thread insertion order.
func (p *Post) Position() int { return p.pos }

// Len returns the character count of the post text. Length-based features
// use this, not the token count.
func (p *Post) Len() int { return len(p.text) }

// Sentences parses the post text into sentences on demand.
func (p *Post) Sentences() []Sentence {
	return ParseSentences(p.text)
}

// PrevInThread returns the preceding post in insertion order, or nil for
// the first post.
func (p *Post) PrevInThread() *Post {
	if p.pos == 0 {
		return nil
	}
	return p.thread.posts[p.pos-1]
}

// NextInThread returns the following post in insertion order, or nil for
// the last post.
func (p *Post) NextInThread() *Post {
	if p.pos == len(p.thread.posts)-1 {
		return nil
	}
	return p.thread.posts[p.pos+1]
}

// RunTokenizer recomputes the post token index from scratch with tok. The
// operation is deterministic and idempotent for a fixed tokenizer: it
// always rebuilds the whole index, never patches it.
func (p *Post) RunTokenizer(tok Tokenizer) {
	p.tokenizer = tok
	p.tokens = tokenIndexOf(tok(p.text))
}

// EnsureTokenized runs the tokenizer only if the post has no token index
// yet.
func (p *Post) EnsureTokenized(tok Tokenizer) {
	if p.tokens == nil {
		p.RunTokenizer(tok)
	}
}

// Tokenized reports whether the post token index has been computed.
func (p *Post) Tokenized() bool { return p.tokens != nil }

// TokenIndex returns the post token index, or nil before tokenization.
func (p *Post) TokenIndex() TokenIndex { return p.tokens }

// An Author aggregates the posts written and threads initiated under one
// display name.
type Author struct {
	name    string
	posts   []*Post
	threads []*Thread
}

func (a *Author) String() string {
	return fmt.Sprintf("<author '%s' (%d posts in %d threads, initiated %d)>",
		a.name, len(a.posts), len(a.AllThreads()), len(a.threads))
}

// Name returns the display name.
func (a *Author) Name() string { return a.name }

// Posts returns the author's posts in load order.
func (a *Author) Posts() []*Post { return a.posts }

// Threads returns the threads the author initiated, in load order.
func (a *Author) Threads() []*Thread { return a.threads }

// AllThreads returns the distinct threads the author has posted in, in
// first-posted order. The set is derived from the author's posts, not
// materialized eagerly.
func (a *Author) AllThreads() []*Thread {
	seen := make(map[*Thread]struct{}, len(a.posts))
	var out []*Thread
	for _, p := range a.posts {
		if _, ok := seen[p.thread]; !ok {
			seen[p.thread] = struct{}{}
			out = append(out, p.thread)
		}
	}
	return out
}
