package models

// RevlogType classifies one review event.
type RevlogType int

const (
	RevlogLearn   RevlogType = 0
	RevlogReview  RevlogType = 1
	RevlogRelearn RevlogType = 2
	RevlogCram    RevlogType = 3
)

// MaxReviewTimeMS caps the recorded time spent on one review.
const MaxReviewTimeMS = 60000

// RevlogEntry is one append-only review-log row.
type RevlogEntry struct {
	ID      int64
	CardID  int64
	USN     int
	Ease    int // button pressed: review 1-4, learn/relearn 1-3
	Ivl     int
	LastIvl int
	Factor  int
	TimeMS  int
	Type    RevlogType
}

// GraveType classifies a deleted-item tombstone.
type GraveType int

const (
	GraveCard GraveType = 0
	GraveNote GraveType = 1
	GraveDeck GraveType = 2
)

// Grave is a deleted-item tombstone kept for sync diffing.
type Grave struct {
	USN  int
	OID  int64
	Type GraveType
}
