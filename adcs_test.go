package forumfeatures

import (
	"errors"
	"math"
	"testing"
)

func TestADCSPostFeatures(t *testing.T) {
	f := buildTestForum(t)
	f.RunTokenizer(RBPTokenize)
	ext := NewADCSExtractor()

	th, _ := f.Thread("t1")
	p1 := th.Posts()[0] // "How do I install fedora? I am a newbie."
	p2 := th.Posts()[1] // version number, url, exclamation

	fm, err := ext.PostFeatures(p1)
	if err != nil {
		t.Fatalf("PostFeatures: %v", err)
	}
	checks := []struct {
		name     string
		expected float64
	}{
		{"distribution", 1},
		{"beginner", 1},
		{"emoticons", 0},
		{"version_numbers", 0},
		{"urls", 0},
		{"words", 9},
		{"sentence", 2},
		{"question_sentence", 1},
		{"period_sentence", 1},
		{"exclaim_sentence", 0},
		{"other_sentence", 0},
	}
	for _, c := range checks {
		if fm[c.name] != c.expected {
			t.Errorf("p1 %s: expected %v, got %v", c.name, c.expected, fm[c.name])
		}
	}

	fm2, err := ext.PostFeatures(p2)
	if err != nil {
		t.Fatalf("PostFeatures: %v", err)
	}
	if fm2["version_numbers"] != 1 {
		t.Errorf("p2 version_numbers: expected 1, got %v", fm2["version_numbers"])
	}
	if fm2["urls"] != 1 {
		t.Errorf("p2 urls: expected 1, got %v", fm2["urls"])
	}
	if fm2["distribution"] != 0 || fm2["beginner"] != 0 {
		t.Errorf("p2 keyword flags: expected 0/0, got %v/%v", fm2["distribution"], fm2["beginner"])
	}
	if fm2["exclaim_sentence"] != 1 {
		t.Errorf("p2 exclaim_sentence: expected 1, got %v", fm2["exclaim_sentence"])
	}
}

func TestADCSRequiresTokenIndex(t *testing.T) {
	f := buildTestForum(t)
	th, _ := f.Thread("t1")

	ext := NewADCSExtractor()
	if _, err := ext.PostFeatures(th.Posts()[0]); !errors.Is(err, ErrNotTokenized) {
		t.Errorf("Expected ErrNotTokenized, got %v", err)
	}
	if _, err := ext.ThreadFeatures(th); !errors.Is(err, ErrNotTokenized) {
		t.Errorf("Expected ErrNotTokenized, got %v", err)
	}

	lazy := NewADCSExtractor(WithLazyTokenization(true))
	if _, err := lazy.ThreadFeatures(th); err != nil {
		t.Errorf("Expected lazy extraction to succeed, got %v", err)
	}
	if !th.Tokenized() {
		t.Error("Expected lazy extraction to leave the thread tokenized")
	}
}

func TestADCSThreadFeatures(t *testing.T) {
	f := buildTestForum(t)
	f.RunTokenizer(RBPTokenize)
	ext := NewADCSExtractor()

	th, _ := f.Thread("t1")
	fm, err := ext.ThreadFeatures(th)
	if err != nil {
		t.Fatalf("ThreadFeatures: %v", err)
	}

	// t1 partitions into initialPost=[p1], firstResponse=[p2],
	// allResponses=[], finalPostInit=[p3]; 22 words and 6 sentences total.
	approx := []struct {
		name     string
		expected float64
	}{
		{"initialPost_word_prop", 9.0 / 22.0},
		{"initialPost_question_sentence", 0.5},
		{"initialPost_distribution", 1},
		{"initialPost_beginner", 1},
		{"firstResponse_version_numbers", 1},
		{"firstResponse_urls", 1},
		{"firstResponse_first_question_ratio", 1},
		{"allResponses_word_prop", 0},
		{"allResponses_question_sentence", 0},
		{"initialPost_first_post_prop", 1.0 / 3.0},
		{"initialPost_last_post_prop", 1.0 / 3.0},
		{"firstResponse_first_post_prop", 2.0 / 3.0},
		{"firstResponse_last_post_prop", 2.0 / 3.0},
		{"finalPostInit_first_post_prop", 1},
		{"finalPostInit_last_post_prop", 1},
	}
	for _, c := range approx {
		got, ok := fm[c.name]
		if !ok {
			t.Errorf("Missing feature %s", c.name)
			continue
		}
		if math.Abs(got-c.expected) > 1e-12 {
			t.Errorf("%s: expected %v, got %v", c.name, c.expected, got)
		}
	}
}

func TestADCSGroupFeaturesEmptyGroup(t *testing.T) {
	ext := NewADCSExtractor()
	fm, err := ext.GroupFeatures(nil)
	if err != nil {
		t.Fatalf("GroupFeatures: %v", err)
	}
	// An empty group yields the 0.0 local defaults, not an error.
	for _, name := range []string{"question_sentence", "avg_sentence", "avg_word"} {
		if fm[name] != 0.0 {
			t.Errorf("%s: expected 0.0 for an empty group, got %v", name, fm[name])
		}
	}
	if fm["posts"] != 0 {
		t.Errorf("posts: expected 0, got %v", fm["posts"])
	}
}

func TestADCSZeroTotals(t *testing.T) {
	f := NewForum("degenerate")
	mustAddThread(t, f, "t1", "x", "alice", testEpoch)
	mustAddPost(t, f, "t1", "p1", "x", "alice", testEpoch, "")
	f.RunTokenizer(RBPTokenize)

	ext := NewADCSExtractor()
	th, _ := f.Thread("t1")
	if _, err := ext.ThreadFeatures(th); !errors.Is(err, ErrZeroTotal) {
		t.Errorf("Expected ErrZeroTotal for an empty-text thread, got %v", err)
	}
}
