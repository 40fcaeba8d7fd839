// Package session drives one practice run over an ordered set of cards.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/tango/internal/model"
)

var (
	// ErrFirstCard is returned when moving back from the first card.
	ErrFirstCard = errors.New("session: already at first card")
	// ErrNotRevealed is returned when answering before the meaning is shown.
	ErrNotRevealed = errors.New("session: card not revealed")
	// ErrFinished is returned for any action after the last card.
	ErrFinished = errors.New("session: finished")
)

// Tracker receives ledger events. Implementations persist them.
type Tracker interface {
	RecordShown(id string) error
	RecordCorrect(id string) error
}

// ReshowPolicy decides whether entering a card again counts as another
// exposure.
type ReshowPolicy string

const (
	// ReshowOnce counts each card at most once per session.
	ReshowOnce ReshowPolicy = "once"
	// ReshowEvery counts every time a card is entered, including going back.
	ReshowEvery ReshowPolicy = "every"
)

// ParseReshowPolicy validates a policy name. Empty input means once.
func ParseReshowPolicy(raw string) (ReshowPolicy, error) {
	switch ReshowPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ReshowOnce:
		return ReshowOnce, nil
	case ReshowEvery:
		return ReshowEvery, nil
	default:
		return "", fmt.Errorf("unknown reshow policy %q (use once or every)", raw)
	}
}

// State is the position of the current card in the reveal cycle.
type State int

const (
	// AwaitingReveal means the front of the card is showing.
	AwaitingReveal State = iota
	// Revealed means the meaning is showing and an answer is expected.
	Revealed
	// Finished means the cursor has passed the last card.
	Finished
)

func (s State) String() string {
	switch s {
	case AwaitingReveal:
		return "awaiting-reveal"
	case Revealed:
		return "revealed"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Summary is reported once a session finishes.
type Summary struct {
	CardsSeen       int
	Correct         int
	AccuracyPercent float64
}

// Session holds the cards, the cursor and the answers given so far.
type Session struct {
	cards   []model.Card
	cursor  int
	state   State
	policy  ReshowPolicy
	tracker Tracker

	shown   map[int]bool
	answers map[int]bool
}

// New builds a session. Call Start to enter the first card.
func New(cards []model.Card, tracker Tracker, policy ReshowPolicy) *Session {
	if policy == "" {
		policy = ReshowOnce
	}
	return &Session{
		cards:   cards,
		tracker: tracker,
		policy:  policy,
		shown:   map[int]bool{},
		answers: map[int]bool{},
	}
}

// Start enters the first card. An empty session finishes immediately.
func (s *Session) Start() error {
	s.cursor = 0
	if len(s.cards) == 0 {
		s.state = Finished
		return nil
	}
	return s.enter()
}

// Len returns the number of cards in the session.
func (s *Session) Len() int {
	return len(s.cards)
}

// Index returns the zero-based cursor.
func (s *Session) Index() int {
	return s.cursor
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Done reports whether the session has finished.
func (s *Session) Done() bool {
	return s.state == Finished
}

// Current returns the card under the cursor.
func (s *Session) Current() (model.Card, bool) {
	if s.state == Finished || s.cursor >= len(s.cards) {
		return model.Card{}, false
	}
	return s.cards[s.cursor], true
}

// Toggle flips between the front and the meaning. It has no ledger effect.
func (s *Session) Toggle() error {
	switch s.state {
	case AwaitingReveal:
		s.state = Revealed
	case Revealed:
		s.state = AwaitingReveal
	default:
		return ErrFinished
	}
	return nil
}

// Answer records the learner's verdict for the current card and advances.
// A tracker error is returned after the cursor has moved on.
func (s *Session) Answer(knew bool) error {
	if s.state == Finished {
		return ErrFinished
	}
	if s.state != Revealed {
		return ErrNotRevealed
	}
	card := s.cards[s.cursor]
	s.answers[s.cursor] = knew
	var trackErr error
	if knew && card.Tracked() && s.tracker != nil {
		trackErr = s.tracker.RecordCorrect(card.ID)
	}
	s.cursor++
	if s.cursor >= len(s.cards) {
		s.state = Finished
		return trackErr
	}
	return errors.Join(trackErr, s.enter())
}

// Prev moves back one card and re-enters it.
func (s *Session) Prev() error {
	if s.state == Finished {
		return ErrFinished
	}
	if s.cursor <= 0 {
		return ErrFirstCard
	}
	s.cursor--
	return s.enter()
}

// Summary reports the cards in the session, the positions whose latest
// answer was "knew it", and the resulting accuracy.
func (s *Session) Summary() Summary {
	correct := 0
	for _, knew := range s.answers {
		if knew {
			correct++
		}
	}
	sum := Summary{CardsSeen: len(s.cards), Correct: correct}
	if sum.CardsSeen > 0 {
		sum.AccuracyPercent = float64(correct) / float64(sum.CardsSeen) * 100
	}
	return sum
}

func (s *Session) enter() error {
	s.state = AwaitingReveal
	card := s.cards[s.cursor]
	if !card.Tracked() || s.tracker == nil {
		return nil
	}
	if s.policy == ReshowOnce && s.shown[s.cursor] {
		return nil
	}
	s.shown[s.cursor] = true
	return s.tracker.RecordShown(card.ID)
}
