// Package selector chooses and orders the cards for a practice session.
package selector

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/tango/internal/model"
)

// DefaultCount is used when a requested count is missing, non-numeric or
// not positive.
const DefaultCount = 10

// Selector draws sessions from a corpus. It is safe for concurrent use.
type Selector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Selector seeded with the current time.
func New() *Selector {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Selector with a fixed seed, for reproducible draws.
func NewWithSeed(seed int64) *Selector {
	return &Selector{rnd: rand.New(rand.NewSource(seed))}
}

// ParseCount turns raw user input into a count. Anything that is not a
// positive integer becomes DefaultCount.
func ParseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return DefaultCount
	}
	return n
}

// Select returns the ordered cards for a session. The corpus is never
// modified. For ModeSmart a non-positive n means the whole ranked corpus;
// for ModeNormal it means DefaultCount. ModeAll ignores n.
func (s *Selector) Select(corpus []model.Card, mode model.Mode, n int, ledger model.Ledger) []model.Card {
	if len(corpus) == 0 {
		return []model.Card{}
	}
	switch mode {
	case model.ModeSmart:
		ranked := Rank(corpus, ledger)
		if n <= 0 || n > len(ranked) {
			return ranked
		}
		return ranked[:n]
	case model.ModeAll:
		out := append([]model.Card(nil), corpus...)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.rnd.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
		return out
	default:
		if n <= 0 {
			n = DefaultCount
		}
		if n > len(corpus) {
			n = len(corpus)
		}
		return s.sample(corpus, n)
	}
}

// sample draws n cards without replacement, in draw order.
func (s *Selector) sample(corpus []model.Card, n int) []model.Card {
	pool := append([]model.Card(nil), corpus...)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < n; i++ {
		j := i + s.rnd.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

// Rank orders every card weakest first: ascending accuracy, then ascending
// shown. Cards never shown have accuracy 0 and so sort first. Equal keys
// keep corpus order.
func Rank(corpus []model.Card, ledger model.Ledger) []model.Card {
	out := append([]model.Card(nil), corpus...)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(ledger.Get(out[i].ID), ledger.Get(out[j].ID))
	})
	return out
}

// Less compares two records by (accuracy, shown).
func Less(a, b model.MasteryRecord) bool {
	accA, accB := a.Accuracy(), b.Accuracy()
	if accA != accB {
		return accA < accB
	}
	return a.Shown < b.Shown
}
