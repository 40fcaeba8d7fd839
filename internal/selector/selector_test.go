package selector

import (
	"fmt"
	"testing"

	"github.com/verte-zerg/tango/internal/model"
)

func makeCorpus(n int) []model.Card {
	cards := make([]model.Card, n)
	for i := range cards {
		id := fmt.Sprintf("c%d", i)
		cards[i] = model.Card{ID: id, Fields: map[string]any{"id": id}}
	}
	return cards
}

func ids(cards []model.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestSelectNormalDistinct(t *testing.T) {
	corpus := makeCorpus(30)
	sel := NewWithSeed(1)
	for n := 1; n <= len(corpus); n++ {
		got := sel.Select(corpus, model.ModeNormal, n, nil)
		if len(got) != n {
			t.Fatalf("n=%d: expected %d cards, got %d", n, n, len(got))
		}
		seen := map[string]struct{}{}
		for _, c := range got {
			if _, dup := seen[c.ID]; dup {
				t.Fatalf("n=%d: duplicate card %s", n, c.ID)
			}
			seen[c.ID] = struct{}{}
		}
	}
}

func TestSelectNormalClampsAndDefaults(t *testing.T) {
	sel := NewWithSeed(2)
	if got := sel.Select(makeCorpus(4), model.ModeNormal, 50, nil); len(got) != 4 {
		t.Fatalf("expected clamp to 4, got %d", len(got))
	}
	if got := sel.Select(makeCorpus(40), model.ModeNormal, 0, nil); len(got) != DefaultCount {
		t.Fatalf("expected default %d, got %d", DefaultCount, len(got))
	}
	if got := sel.Select(makeCorpus(40), model.ModeNormal, -3, nil); len(got) != DefaultCount {
		t.Fatalf("expected default %d for negative n, got %d", DefaultCount, len(got))
	}
}

func TestSelectAllIsPermutation(t *testing.T) {
	corpus := makeCorpus(25)
	got := NewWithSeed(3).Select(corpus, model.ModeAll, 3, nil)
	if len(got) != len(corpus) {
		t.Fatalf("expected %d cards, got %d", len(corpus), len(got))
	}
	counts := map[string]int{}
	for _, c := range got {
		counts[c.ID]++
	}
	for _, c := range corpus {
		if counts[c.ID] != 1 {
			t.Fatalf("card %s appears %d times", c.ID, counts[c.ID])
		}
	}
	if corpus[0].ID != "c0" || corpus[24].ID != "c24" {
		t.Fatalf("corpus must not be reordered in place")
	}
}

func TestSelectSmartScenario(t *testing.T) {
	corpus := makeCorpus(0)
	for _, id := range []string{"v1", "v2", "v3"} {
		corpus = append(corpus, model.Card{ID: id})
	}
	ledger := model.Ledger{
		"v1": {Shown: 4, Correct: 1},
		"v2": {Shown: 0, Correct: 0},
		"v3": {Shown: 2, Correct: 2},
	}
	got := ids(New().Select(corpus, model.ModeSmart, 2, ledger))
	if len(got) != 2 || got[0] != "v2" || got[1] != "v1" {
		t.Fatalf("expected [v2 v1], got %v", got)
	}
}

func TestSelectSmartOrderedAndDeterministic(t *testing.T) {
	corpus := makeCorpus(12)
	ledger := model.Ledger{}
	for i, c := range corpus {
		ledger[c.ID] = model.MasteryRecord{Shown: i % 5, Correct: (i * 7) % 3}
	}
	first := New().Select(corpus, model.ModeSmart, 0, ledger)
	second := New().Select(corpus, model.ModeSmart, 0, ledger)
	if len(first) != len(corpus) {
		t.Fatalf("expected whole ranked corpus, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		if Less(ledger.Get(first[i].ID), ledger.Get(first[i-1].ID)) {
			t.Fatalf("order broken at %d: %v", i, ids(first))
		}
		if first[i].ID != second[i].ID {
			t.Fatalf("smart selection not deterministic: %v vs %v", ids(first), ids(second))
		}
	}
}

func TestSelectSmartTieBreakShownThenCorpusOrder(t *testing.T) {
	corpus := []model.Card{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {}}
	ledger := model.Ledger{
		"a": {Shown: 4, Correct: 2},
		"b": {Shown: 2, Correct: 1},
		"c": {Shown: 3, Correct: 0},
	}
	got := ids(New().Select(corpus, model.ModeSmart, 99, ledger))
	want := []string{"d", "", "c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSelectEmptyCorpus(t *testing.T) {
	sel := New()
	for _, mode := range []model.Mode{model.ModeNormal, model.ModeAll, model.ModeSmart} {
		got := sel.Select(nil, mode, 10, nil)
		if got == nil || len(got) != 0 {
			t.Fatalf("%s: expected empty non-nil session, got %v", mode, got)
		}
	}
}

func TestParseCount(t *testing.T) {
	tests := map[string]int{
		"5":    5,
		" 12 ": 12,
		"":     DefaultCount,
		"abc":  DefaultCount,
		"0":    DefaultCount,
		"-4":   DefaultCount,
	}
	for raw, want := range tests {
		if got := ParseCount(raw); got != want {
			t.Fatalf("ParseCount(%q) = %d, want %d", raw, got, want)
		}
	}
}
