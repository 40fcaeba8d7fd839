// Package stats contains mastery calculations and reporting.
package stats

import (
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/tango/internal/face"
	"github.com/verte-zerg/tango/internal/model"
	"github.com/verte-zerg/tango/internal/selector"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
)

// CardRow is one line of the per-card mastery table.
type CardRow struct {
	ID       string
	Label    string
	Category model.Category
	Shown    int
	Correct  int
	Accuracy float64
}

// Summary aggregates sessions and ledger coverage.
type Summary struct {
	Sessions     int
	CardsStudied int
	AvgAccuracy  float64
	BestAccuracy float64
	Tracked      int
	Unseen       int
}

// CardRows ranks cards weakest first and attaches their counters. Cards
// without an id are left out.
func CardRows(cards []model.Card, ledger model.Ledger) []CardRow {
	ranked := selector.Rank(cards, ledger)
	rows := make([]CardRow, 0, len(ranked))
	for _, card := range ranked {
		if !card.Tracked() {
			continue
		}
		rec := ledger.Get(card.ID)
		rows = append(rows, CardRow{
			ID:       card.ID,
			Label:    face.Label(card),
			Category: card.Category,
			Shown:    rec.Shown,
			Correct:  rec.Correct,
			Accuracy: rec.Accuracy(),
		})
	}
	return rows
}

// WeakestLabels returns labels of the top weakest cards that have been seen
// at least once.
func WeakestLabels(rows []CardRow, top int) []string {
	out := []string{}
	for _, row := range rows {
		if top > 0 && len(out) >= top {
			break
		}
		if row.Shown == 0 {
			continue
		}
		out = append(out, row.Label)
	}
	return out
}

// Summarize computes overview numbers.
func Summarize(sessions []model.SessionAggregate, rows []CardRow) Summary {
	var sum Summary
	sum.Sessions = len(sessions)
	var totalAcc float64
	for _, s := range sessions {
		acc := SessionAccuracy(s)
		totalAcc += acc
		sum.CardsStudied += s.Cards
		if acc > sum.BestAccuracy {
			sum.BestAccuracy = acc
		}
	}
	if len(sessions) > 0 {
		sum.AvgAccuracy = totalAcc / float64(len(sessions))
	}
	for _, row := range rows {
		sum.Tracked++
		if row.Shown == 0 {
			sum.Unseen++
		}
	}
	return sum
}

// SessionAccuracy returns correct/cards for a stored session.
func SessionAccuracy(s model.SessionAggregate) float64 {
	if s.Cards <= 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Cards)
}

// AccuracySeries returns per-session accuracy in percent, oldest first.
func AccuracySeries(sessions []model.SessionAggregate) []float64 {
	out := make([]float64, len(sessions))
	for i, s := range sessions {
		out[i] = SessionAccuracy(s) * 100
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Tail keeps at most the last width values.
func Tail(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	return values[len(values)-width:]
}

// TerminalWidth returns the stdout width, or a fallback when not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
