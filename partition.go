package forumfeatures

import "fmt"

// Section names of a thread partition, in scan order.
const (
	SectionInitialPost   = "initialPost"
	SectionFirstResponse = "firstResponse"
	SectionAllResponses  = "allResponses"
	SectionFinalPostInit = "finalPostInit"
)

// A ThreadPartition segments a thread's chronological post sequence into
// four structural zones: the initiator's opening run, the first response,
// all later responses, and the initiator's final post after feedback.
//
// Initiator posts that fall in the feedback phase but are not the last one
// belong to no zone; they are counted by Discarded. This matches the
// published methodology and is deliberate.
type ThreadPartition struct {
	InitialPost   []*Post
	FirstResponse []*Post
	AllResponses  []*Post

	// FinalPostInit holds only the most recent initiator post seen after
	// feedback, or nil when the initiator never returned.
	FinalPostInit *Post

	discarded int
}

// Discarded returns how many interleaved initiator posts were dropped
// during the feedback phase.
func (tp *ThreadPartition) Discarded() int { return tp.discarded }

// A PartSection pairs a section name with its posts, for code that walks
// the partition in order.
type PartSection struct {
	Name  string
	Posts []*Post
}

// Sections returns the four zones in scan order. FinalPostInit appears as
// a zero- or one-element slice.
func (tp *ThreadPartition) Sections() []PartSection {
	var final []*Post
	if tp.FinalPostInit != nil {
		final = []*Post{tp.FinalPostInit}
	}
	return []PartSection{
		{SectionInitialPost, tp.InitialPost},
		{SectionFirstResponse, tp.FirstResponse},
		{SectionAllResponses, tp.AllResponses},
		{SectionFinalPostInit, final},
	}
}

// PartitionThread scans the thread's posts in chronological order. The
// initiator is the author of the chronologically first post, which may
// differ from the recorded thread author; the chronological author always
// wins here.
//
// Until the first non-initiator post arrives, initiator posts accumulate
// in InitialPost; the first other-author post lands in FirstResponse.
// After that, other-author posts accumulate in AllResponses and each
// initiator post replaces FinalPostInit.
//
// A single-post thread partitions into InitialPost only; that is not an
// error.
func PartitionThread(t *Thread) (*ThreadPartition, error) {
	ordered := t.PostsByDate()
	if len(ordered) == 0 {
		return nil, fmt.Errorf("thread %q: %w", t.ID(), ErrEmptyThread)
	}
	initiator := ordered[0].Author()

	tp := &ThreadPartition{}
	feedbackReceived := false
	for _, p := range ordered {
		switch {
		case !feedbackReceived && p.Author() == initiator:
			tp.InitialPost = append(tp.InitialPost, p)
		case !feedbackReceived:
			tp.FirstResponse = append(tp.FirstResponse, p)
			feedbackReceived = true
		case p.Author() == initiator:
			if tp.FinalPostInit != nil {
				tp.discarded++
			}
			tp.FinalPostInit = p
		default:
			tp.AllResponses = append(tp.AllResponses, p)
		}
	}
	return tp, nil
}
