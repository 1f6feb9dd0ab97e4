package models

import "time"

// CardType is the scheduling state discriminant of a card.
type CardType int

const (
	CardTypeNew      CardType = 0
	CardTypeLearning CardType = 1
	CardTypeDue      CardType = 2
	CardTypeFiltered CardType = 3
)

// CardQueue is the scheduling queue a card sits in.
type CardQueue int

const (
	QueueSchedBuried CardQueue = -3
	QueueUserBuried  CardQueue = -2
	QueueSuspended   CardQueue = -1
	QueueNew         CardQueue = 0
	QueueLearning    CardQueue = 1
	QueueDue         CardQueue = 2
	QueueDayLearning CardQueue = 3
)

// Card is one renderable instance of a note under one template. Ord indexes
// the template in the note's model; exactly one card exists per
// (note, template) pair at creation time.
//
// Due is interpreted by Type: a note-derived key for new cards, a day offset
// from the collection epoch for due cards, and a timestamp for learning cards.
type Card struct {
	ID     int64
	NoteID int64
	DeckID int64
	Ord    int
	Mod    int64
	USN    int
	Type   CardType
	Queue  CardQueue
	Due    int64
	Ivl    int
	Factor int
	Reps   int
	Lapses int
	Left   int
	ODue   int64
	ODid   int64
	Flags  int
	Data   string
}

// NewCard builds a new-state card for one (note, template) pair. New cards
// use the owning note id as their due key.
func NewCard(noteID, deckID int64, ord int) *Card {
	return &Card{
		NoteID: noteID,
		DeckID: deckID,
		Ord:    ord,
		Mod:    time.Now().Unix(),
		USN:    -1,
		Type:   CardTypeNew,
		Queue:  QueueNew,
		Due:    noteID,
	}
}

// NewCardForTemplate resolves a template name against the note's model before
// building the card. Lookup failure is the caller's consistency bug and
// surfaces as NotFound.
func NewCardForTemplate(noteID, deckID int64, model *Model, templateName string) (*Card, error) {
	ord, err := model.TemplateOrdByName(templateName)
	if err != nil {
		return nil, err
	}
	return NewCard(noteID, deckID, ord), nil
}
