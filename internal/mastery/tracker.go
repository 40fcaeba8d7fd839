package mastery

import (
	"maps"

	"github.com/verte-zerg/tango/internal/model"
)

// Tracker binds a store to one in-memory ledger, for front-ends that keep a
// ledger for the life of the process. Every write runs as an Update against
// the persisted document, and the bound ledger is then replaced with the
// merged result, so writers in other processes are never overwritten.
type Tracker struct {
	store  *Store
	ledger model.Ledger
}

// Track returns a Tracker writing through ledger.
func (s *Store) Track(ledger model.Ledger) *Tracker {
	if ledger == nil {
		ledger = model.Ledger{}
	}
	return &Tracker{store: s, ledger: ledger}
}

// RecordShown counts one exposure.
func (t *Tracker) RecordShown(id string) error {
	if id == "" {
		return nil
	}
	return t.update(func(ledger model.Ledger) {
		applyDelta(ledger, id, 1, 0)
	})
}

// RecordCorrect counts one correct answer.
func (t *Tracker) RecordCorrect(id string) error {
	if id == "" {
		return nil
	}
	return t.update(func(ledger model.Ledger) {
		applyDelta(ledger, id, 0, 1)
	})
}

// Reset zeroes every persisted counter.
func (t *Tracker) Reset() error {
	return t.update(func(ledger model.Ledger) {
		for id := range ledger {
			ledger[id] = model.MasteryRecord{}
		}
	})
}

// Refresh replaces the bound ledger with the persisted document.
func (t *Tracker) Refresh() {
	t.replace(t.store.Snapshot())
}

// Ledger returns the bound ledger. Callers must not mutate it directly.
func (t *Tracker) Ledger() model.Ledger {
	return t.ledger
}

func (t *Tracker) update(fn func(model.Ledger)) error {
	var merged model.Ledger
	err := t.store.Update(func(ledger model.Ledger) error {
		fn(ledger)
		merged = ledger
		return nil
	})
	if merged == nil {
		// The lock was never taken; keep the session's view current anyway.
		fn(t.ledger)
		return err
	}
	t.replace(merged)
	return err
}

func (t *Tracker) replace(ledger model.Ledger) {
	clear(t.ledger)
	maps.Copy(t.ledger, ledger)
}
