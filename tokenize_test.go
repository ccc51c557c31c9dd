package forumfeatures

import (
	"reflect"
	"testing"
)

func TestParseSentences(t *testing.T) {
	tests := []struct {
		text     string
		expected []Sentence
		desc     string
	}{
		{
			"Is this a test? Yes!",
			[]Sentence{
				{Tokens: []string{"is", "this", "a", "test"}, End: EndQuestion},
				{Tokens: []string{"yes"}, End: EndExclaim},
			},
			"Question then exclamation",
		},
		{
			"U.S.A. is big.",
			[]Sentence{
				{Tokens: []string{"u.s.a.", "is", "big"}, End: EndPeriod},
			},
			"Acronym periods deferred, final period terminates",
		},
		{
			"Pi is 3.14 here.",
			[]Sentence{
				{Tokens: []string{"pi", "is", "3.14", "here"}, End: EndPeriod},
			},
			"Decimal point deferred",
		},
		{
			"See example.com for more.",
			[]Sentence{
				{Tokens: []string{"see", "example.com", "for", "more"}, End: EndPeriod},
			},
			"Period before a letter deferred",
		},
		{
			"U.S.A.\nYes",
			[]Sentence{
				{Tokens: []string{"u.s.a."}, End: EndPeriod},
				{Tokens: []string{"yes"}, End: EndNone},
			},
			"Newline after deferred period tagged as period",
		},
		{
			"One line\nanother line\n",
			[]Sentence{
				{Tokens: []string{"one", "line"}, End: EndOther},
				{Tokens: []string{"another", "line"}, End: EndOther},
			},
			"Newlines terminate",
		},
		{
			"No terminator here",
			[]Sentence{
				{Tokens: []string{"no", "terminator", "here"}, End: EndNone},
			},
			"Trailing fragment keeps empty end",
		},
		{
			"? Leading terminator.",
			[]Sentence{
				{Tokens: nil, End: EndQuestion},
				{Tokens: []string{"leading", "terminator"}, End: EndPeriod},
			},
			"Very first terminator emits even with no tokens",
		},
		{
			"Wow!!! Three marks.",
			[]Sentence{
				{Tokens: []string{"wow"}, End: EndExclaim},
				{Tokens: []string{"three", "marks"}, End: EndPeriod},
			},
			"Repeated empty terminators collapse after the first",
		},
		{
			"MiXeD CaSe WORDS.",
			[]Sentence{
				{Tokens: []string{"mixed", "case", "words"}, End: EndPeriod},
			},
			"Tokens are lowercased",
		},
		{
			"",
			nil,
			"Empty text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := ParseSentences(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Text: %q\nExpected: %v\nGot: %v", tt.text, tt.expected, got)
			}
		})
	}
}

func TestRBPTokenizeFlattensSentences(t *testing.T) {
	texts := []string{
		"Is this a test? Yes!",
		"U.S.A. is big.",
		"One line\nanother line\nno terminator",
		"Punctuation, like commas; is (ignored) here.",
		"",
		"? !! leading junk. Real text follows now.",
	}

	for _, text := range texts {
		var flattened []string
		for _, s := range ParseSentences(text) {
			flattened = append(flattened, s.Tokens...)
		}
		got := RBPTokenize(text)
		if !reflect.DeepEqual(got, flattened) {
			t.Errorf("Text: %q\nExpected flattened %v\nGot %v", text, flattened, got)
		}
	}
}

func TestParseSentencesIgnoresOtherPunctuation(t *testing.T) {
	got := ParseSentences("Hello, world; (for real).")
	expected := []Sentence{
		{Tokens: []string{"hello", "world", "for", "real"}, End: EndPeriod},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
