package forumfeatures

import (
	"math"
	"time"
)

// Snapshot types are the interchange surface between the corpus model and
// external (de)serializers. Dates are numeric epoch seconds; decoding
// timestamps and unescaping text-encoding artifacts is the collaborator's
// job, done before a snapshot is constructed.

// A PostSnapshot carries one post's fields.
type PostSnapshot struct {
	ID     string
	Title  string
	Author string
	Date   float64
	Text   string
}

// A ThreadSnapshot carries one thread's fields plus its posts in order.
type ThreadSnapshot struct {
	ID     string
	Title  string
	Author string
	Date   float64
	Posts  []PostSnapshot
}

// A ForumSnapshot carries a whole forum.
type ForumSnapshot struct {
	Title   string
	Threads []ThreadSnapshot
}

func epochToTime(epoch float64) time.Time {
	sec, frac := math.Modf(epoch)
	return time.Unix(int64(sec), int64(frac*1e9))
}

func timeToEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// LoadForum builds a Forum from a snapshot. Thread and post order in the
// snapshot becomes insertion order. Round-tripping a forum through
// Snapshot and back yields an Equal forum.
func LoadForum(snap ForumSnapshot) (*Forum, error) {
	f := NewForum(snap.Title)
	for _, ts := range snap.Threads {
		if _, err := f.AddThread(ts.ID, ts.Title, ts.Author, epochToTime(ts.Date)); err != nil {
			return nil, err
		}
		for _, ps := range ts.Posts {
			if _, err := f.AddPost(ts.ID, ps.ID, ps.Title, ps.Author, epochToTime(ps.Date), ps.Text); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// Snapshot re-emits the forum as a snapshot tree for an external
// serializer.
func (f *Forum) Snapshot() ForumSnapshot {
	snap := ForumSnapshot{Title: f.Title}
	for _, t := range f.threads {
		snap.Threads = append(snap.Threads, t.Snapshot())
	}
	return snap
}

// Snapshot re-emits one thread and its posts.
func (t *Thread) Snapshot() ThreadSnapshot {
	ts := ThreadSnapshot{
		ID:     t.id,
		Title:  t.title,
		Author: t.author,
		Date:   timeToEpoch(t.date),
	}
	for _, p := range t.posts {
		ts.Posts = append(ts.Posts, PostSnapshot{
			ID:     p.id,
			Title:  p.title,
			Author: p.author,
			Date:   timeToEpoch(p.date),
			Text:   p.text,
		})
	}
	return ts
}
