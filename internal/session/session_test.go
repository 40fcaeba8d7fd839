package session

import (
	"errors"
	"testing"

	"github.com/verte-zerg/tango/internal/model"
)

type fakeTracker struct {
	shown     map[string]int
	correct   map[string]int
	failShown error
}

func newFakeTracker() *fakeTracker {
	return &fakeTracker{shown: map[string]int{}, correct: map[string]int{}}
}

func (f *fakeTracker) RecordShown(id string) error {
	f.shown[id]++
	return f.failShown
}

func (f *fakeTracker) RecordCorrect(id string) error {
	f.correct[id]++
	return nil
}

func cards(ids ...string) []model.Card {
	out := make([]model.Card, len(ids))
	for i, id := range ids {
		out[i] = model.Card{ID: id}
	}
	return out
}

func mustReveal(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Toggle(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if s.State() != Revealed {
		t.Fatalf("expected revealed, got %s", s.State())
	}
}

func TestSessionFullRun(t *testing.T) {
	tr := newFakeTracker()
	s := New(cards("a", "b", "c"), tr, ReshowOnce)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if tr.shown["a"] != 1 {
		t.Fatalf("expected first card shown once, got %d", tr.shown["a"])
	}

	mustReveal(t, s)
	if err := s.Answer(true); err != nil {
		t.Fatalf("answer: %v", err)
	}
	mustReveal(t, s)
	if err := s.Answer(false); err != nil {
		t.Fatalf("answer: %v", err)
	}
	mustReveal(t, s)
	if err := s.Answer(true); err != nil {
		t.Fatalf("answer: %v", err)
	}

	if !s.Done() {
		t.Fatalf("expected session finished")
	}
	if tr.correct["a"] != 1 || tr.correct["b"] != 0 || tr.correct["c"] != 1 {
		t.Fatalf("unexpected correct counts: %v", tr.correct)
	}
	sum := s.Summary()
	if sum.CardsSeen != 3 || sum.Correct != 2 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.AccuracyPercent < 66.6 || sum.AccuracyPercent > 66.7 {
		t.Fatalf("unexpected accuracy: %f", sum.AccuracyPercent)
	}
}

func TestSessionAnswerRequiresReveal(t *testing.T) {
	s := New(cards("a"), newFakeTracker(), ReshowOnce)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Answer(true); !errors.Is(err, ErrNotRevealed) {
		t.Fatalf("expected ErrNotRevealed, got %v", err)
	}
}

func TestSessionToggleHidesAgain(t *testing.T) {
	tr := newFakeTracker()
	s := New(cards("a"), tr, ReshowOnce)
	_ = s.Start()
	mustReveal(t, s)
	if err := s.Toggle(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if s.State() != AwaitingReveal {
		t.Fatalf("expected awaiting reveal, got %s", s.State())
	}
	if tr.shown["a"] != 1 {
		t.Fatalf("reveal must not record shown, got %d", tr.shown["a"])
	}
}

func TestSessionPrevAtFirstCard(t *testing.T) {
	s := New(cards("a", "b"), newFakeTracker(), ReshowOnce)
	_ = s.Start()
	if err := s.Prev(); !errors.Is(err, ErrFirstCard) {
		t.Fatalf("expected ErrFirstCard, got %v", err)
	}
}

func TestSessionReshowPolicies(t *testing.T) {
	tests := []struct {
		policy ReshowPolicy
		wantA  int
	}{
		{ReshowOnce, 1},
		{ReshowEvery, 2},
	}
	for _, tt := range tests {
		tr := newFakeTracker()
		s := New(cards("a", "b"), tr, tt.policy)
		_ = s.Start()
		mustReveal(t, s)
		_ = s.Answer(false)
		if err := s.Prev(); err != nil {
			t.Fatalf("%s: prev: %v", tt.policy, err)
		}
		if s.Index() != 0 || s.State() != AwaitingReveal {
			t.Fatalf("%s: expected back at first card awaiting reveal", tt.policy)
		}
		if tr.shown["a"] != tt.wantA {
			t.Fatalf("%s: expected a shown %d, got %d", tt.policy, tt.wantA, tr.shown["a"])
		}
		if tr.shown["b"] != 1 {
			t.Fatalf("%s: expected b shown once, got %d", tt.policy, tr.shown["b"])
		}
	}
}

func TestSessionReansweringOverridesSummary(t *testing.T) {
	tr := newFakeTracker()
	s := New(cards("a", "b"), tr, ReshowOnce)
	_ = s.Start()
	mustReveal(t, s)
	_ = s.Answer(true)
	_ = s.Prev()
	mustReveal(t, s)
	_ = s.Answer(false)
	mustReveal(t, s)
	_ = s.Answer(false)

	if sum := s.Summary(); sum.Correct != 0 {
		t.Fatalf("expected latest answer to win, got %+v", sum)
	}
	if tr.correct["a"] != 1 {
		t.Fatalf("ledger keeps the earlier correct event, got %d", tr.correct["a"])
	}
}

func TestSessionUntrackedCards(t *testing.T) {
	tr := newFakeTracker()
	s := New([]model.Card{{Fields: map[string]any{"kanji": "水"}}}, tr, ReshowEvery)
	_ = s.Start()
	mustReveal(t, s)
	if err := s.Answer(true); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if len(tr.shown) != 0 || len(tr.correct) != 0 {
		t.Fatalf("untracked card must not reach the tracker: %v %v", tr.shown, tr.correct)
	}
	if s.Summary().Correct != 1 {
		t.Fatalf("untracked card still counts toward the summary")
	}
}

func TestSessionEmpty(t *testing.T) {
	s := New(nil, newFakeTracker(), ReshowOnce)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !s.Done() {
		t.Fatalf("empty session should finish immediately")
	}
	if sum := s.Summary(); sum.CardsSeen != 0 || sum.AccuracyPercent != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("expected no current card")
	}
}

func TestSessionTrackerErrorStillAdvances(t *testing.T) {
	tr := newFakeTracker()
	s := New(cards("a", "b"), tr, ReshowOnce)
	_ = s.Start()
	tr.failShown = errors.New("disk full")
	mustReveal(t, s)
	err := s.Answer(false)
	if err == nil {
		t.Fatalf("expected tracker error to surface")
	}
	if s.Index() != 1 {
		t.Fatalf("expected cursor to advance despite error, at %d", s.Index())
	}
}

func TestParseReshowPolicy(t *testing.T) {
	if p, err := ParseReshowPolicy(""); err != nil || p != ReshowOnce {
		t.Fatalf("expected once default, got %q %v", p, err)
	}
	if p, err := ParseReshowPolicy("EVERY"); err != nil || p != ReshowEvery {
		t.Fatalf("expected every, got %q %v", p, err)
	}
	if _, err := ParseReshowPolicy("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
}
