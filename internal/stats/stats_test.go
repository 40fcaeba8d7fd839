package stats

import (
	"testing"

	"github.com/verte-zerg/tango/internal/model"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{10, 20, 30, 40}, 2)
	want := []float64{10, 15, 25, 35}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSparklineFlatAndRange(t *testing.T) {
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	got := Sparkline([]float64{0, 100})
	if got != " @" {
		t.Fatalf("expected min/max glyphs, got %q", got)
	}
}

func TestWeakestLabelsSkipsUnseen(t *testing.T) {
	cards := []model.Card{
		{ID: "a", Fields: map[string]any{"kanji": "一"}},
		{ID: "b", Fields: map[string]any{"kanji": "二"}},
		{ID: "c", Fields: map[string]any{"kanji": "三"}},
	}
	ledger := model.Ledger{"b": {Shown: 3, Correct: 1}, "c": {Shown: 2, Correct: 2}}
	got := WeakestLabels(CardRows(cards, ledger), 1)
	if len(got) != 1 || got[0] != "二" {
		t.Fatalf("expected [二], got %v", got)
	}
}

func TestSummarizeCountsUnseen(t *testing.T) {
	rows := []CardRow{{ID: "a"}, {ID: "b", Shown: 1}}
	sum := Summarize(nil, rows)
	if sum.Tracked != 2 || sum.Unseen != 1 || sum.Sessions != 0 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestTail(t *testing.T) {
	if got := Tail([]float64{1, 2, 3}, 2); len(got) != 2 || got[0] != 2 {
		t.Fatalf("unexpected tail: %v", got)
	}
	if got := Tail([]float64{1, 2}, 0); len(got) != 2 {
		t.Fatalf("non-positive width keeps everything, got %v", got)
	}
}
