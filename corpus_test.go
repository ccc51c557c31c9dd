package forumfeatures

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2009, 6, 1, 12, 0, 0, 0, time.UTC)

func mustAddThread(t *testing.T, f *Forum, id, title, author string, date time.Time) *Thread {
	t.Helper()
	th, err := f.AddThread(id, title, author, date)
	if err != nil {
		t.Fatalf("AddThread(%q): %v", id, err)
	}
	return th
}

func mustAddPost(t *testing.T, f *Forum, threadID, postID, title, author string, date time.Time, text string) *Post {
	t.Helper()
	p, err := f.AddPost(threadID, postID, title, author, date, text)
	if err != nil {
		t.Fatalf("AddPost(%q): %v", postID, err)
	}
	return p
}

// buildTestForum constructs a small two-thread forum used across the
// feature tests. Thread t1 is initiated by alice with a reply from bob and
// a follow-up from alice; thread t2 is a bob/carol exchange.
func buildTestForum(t *testing.T) *Forum {
	t.Helper()
	f := NewForum("testforum")

	mustAddThread(t, f, "t1", "Installing Fedora", "alice", testEpoch)
	mustAddPost(t, f, "t1", "p1", "Installing Fedora", "alice", testEpoch,
		"How do I install fedora? I am a newbie.")
	mustAddPost(t, f, "t1", "p2", "Re: Installing Fedora", "bob", testEpoch.Add(time.Hour),
		"Download version 9.1 from http://example.com and burn it. Good luck!")
	mustAddPost(t, f, "t1", "p3", "Re: Installing Fedora", "alice", testEpoch.Add(2*time.Hour),
		"Thanks! It worked.")

	mustAddThread(t, f, "t2", "Ubuntu sound problem", "bob", testEpoch.Add(time.Hour))
	mustAddPost(t, f, "t2", "p4", "Ubuntu sound problem", "bob", testEpoch.Add(time.Hour),
		"My ubuntu machine has no sound. Any ideas?")
	mustAddPost(t, f, "t2", "p5", "Re: Ubuntu sound problem", "carol", testEpoch.Add(3*time.Hour),
		"Check the mixer settings first.")

	return f
}

func TestForumConstruction(t *testing.T) {
	f := buildTestForum(t)

	if got := len(f.Threads()); got != 2 {
		t.Fatalf("Expected 2 threads, got %d", got)
	}
	if got := len(f.Posts()); got != 5 {
		t.Fatalf("Expected 5 posts, got %d", got)
	}

	th, ok := f.Thread("t1")
	if !ok {
		t.Fatal("Thread t1 not found")
	}
	if th.Len() != 3 {
		t.Errorf("Expected thread t1 to have 3 posts, got %d", th.Len())
	}
	if th.Author() != "alice" {
		t.Errorf("Expected thread author alice, got %q", th.Author())
	}

	p := th.Posts()[1]
	if p.ID() != "p2" || p.Position() != 1 || p.Author() != "bob" {
		t.Errorf("Unexpected second post: id=%q pos=%d author=%q", p.ID(), p.Position(), p.Author())
	}
	if p.PrevInThread().ID() != "p1" {
		t.Errorf("Expected p2's predecessor to be p1, got %q", p.PrevInThread().ID())
	}
	if p.NextInThread().ID() != "p3" {
		t.Errorf("Expected p2's successor to be p3, got %q", p.NextInThread().ID())
	}
	if last := th.Posts()[2]; last.NextInThread() != nil {
		t.Error("Expected final post to have no successor")
	}
}

func TestForumDuplicateIDs(t *testing.T) {
	f := buildTestForum(t)

	if _, err := f.AddThread("t1", "dup", "alice", testEpoch); err == nil {
		t.Error("Expected duplicate thread id to fail")
	}
	if _, err := f.AddPost("t1", "p1", "dup", "alice", testEpoch, "text"); err == nil {
		t.Error("Expected duplicate post id to fail")
	}
	if _, err := f.AddPost("nosuch", "p9", "x", "alice", testEpoch, "text"); err == nil {
		t.Error("Expected post into unknown thread to fail")
	}
}

func TestAuthorRegistry(t *testing.T) {
	f := buildTestForum(t)

	authors := f.Authors()
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = a.Name()
	}
	expected := []string{"alice", "bob", "carol"}
	if len(names) != len(expected) {
		t.Fatalf("Expected authors %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("Expected authors %v in name order, got %v", expected, names)
		}
	}

	bob, ok := f.Author("bob")
	if !ok {
		t.Fatal("Author bob not found")
	}
	if got := len(bob.Posts()); got != 2 {
		t.Errorf("Expected bob to have 2 posts, got %d", got)
	}
	// bob initiated t2 and posted in both threads.
	if got := len(bob.Threads()); got != 1 {
		t.Errorf("Expected bob to have initiated 1 thread, got %d", got)
	}
	if got := len(bob.AllThreads()); got != 2 {
		t.Errorf("Expected bob to participate in 2 threads, got %d", got)
	}

	th, _ := f.Thread("t1")
	if !th.HasAuthor("bob") || th.HasAuthor("carol") {
		t.Error("Unexpected post-author membership for t1")
	}
}

func TestTokenizationLifecycle(t *testing.T) {
	f := buildTestForum(t)
	th, _ := f.Thread("t1")
	p := th.Posts()[0]

	if f.Tokenized() || th.Tokenized() || p.Tokenized() {
		t.Fatal("Expected everything untokenized before RunTokenizer")
	}

	f.RunTokenizer(RBPTokenize)

	if !f.Tokenized() || !th.Tokenized() || !p.Tokenized() {
		t.Fatal("Expected everything tokenized after RunTokenizer")
	}
	if p.TokenIndex()["fedora"] != 1 {
		t.Errorf("Expected one 'fedora' in p1's index, got %d", p.TokenIndex()["fedora"])
	}
	if th.TokenIndex()["fedora"] != 1 {
		t.Errorf("Expected one 'fedora' in t1's index, got %d", th.TokenIndex()["fedora"])
	}

	// The forum index is the sum of the thread indices.
	total := 0
	for _, th := range f.Threads() {
		total += th.TokenIndex().Total()
	}
	if f.TokenIndex().Total() != total {
		t.Errorf("Forum token total %d != sum of thread totals %d", f.TokenIndex().Total(), total)
	}

	// EnsureTokenized is idempotent: the index stays the same object.
	before := p.TokenIndex().Total()
	f.EnsureTokenized(RBPTokenize)
	if p.TokenIndex().Total() != before {
		t.Error("EnsureTokenized changed an existing index")
	}
}

func TestPostsByDate(t *testing.T) {
	f := NewForum("order")
	mustAddThread(t, f, "t1", "x", "a", testEpoch)
	// Inserted out of chronological order.
	mustAddPost(t, f, "t1", "late", "x", "b", testEpoch.Add(2*time.Hour), "late")
	mustAddPost(t, f, "t1", "early", "x", "a", testEpoch, "early")
	mustAddPost(t, f, "t1", "mid", "x", "b", testEpoch.Add(time.Hour), "mid")

	th, _ := f.Thread("t1")
	ordered := th.PostsByDate()
	want := []string{"early", "mid", "late"}
	for i, p := range ordered {
		if p.ID() != want[i] {
			t.Fatalf("Expected chronological order %v, got %q at %d", want, p.ID(), i)
		}
	}
	// Insertion order is untouched.
	if th.Posts()[0].ID() != "late" {
		t.Error("PostsByDate modified insertion order")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	f := buildTestForum(t)

	restored, err := LoadForum(f.Snapshot())
	if err != nil {
		t.Fatalf("LoadForum: %v", err)
	}
	if !f.Equal(restored) {
		t.Error("Restored forum differs from original")
	}

	th, _ := restored.Thread("t1")
	p := th.Posts()[1]
	if p.Author() != "bob" || p.Text() == "" {
		t.Errorf("Restored post lost fields: author=%q", p.Author())
	}
	if !p.Date().Equal(testEpoch.Add(time.Hour)) {
		t.Errorf("Restored post date %v, expected %v", p.Date(), testEpoch.Add(time.Hour))
	}
}

func TestForumSample(t *testing.T) {
	f := buildTestForum(t)

	s1, err := f.Sample(1, 42)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(s1.Threads()) != 1 {
		t.Fatalf("Expected 1 sampled thread, got %d", len(s1.Threads()))
	}

	// Same seed, same sample.
	s2, err := f.Sample(1, 42)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if !s1.Equal(s2) {
		t.Error("Same-seed samples differ")
	}

	if _, err := f.Sample(3, 1); err == nil {
		t.Error("Expected oversized sample to fail")
	}
}

func TestCleanString(t *testing.T) {
	got := cleanString("a\x01b\ncde")
	if got != "ab\ncde" {
		t.Errorf("Expected control characters stripped, got %q", got)
	}
}
