// Package stats contains mastery calculations and reporting.
package stats

import (
	"context"

	"github.com/verte-zerg/tango/internal/history"
	"github.com/verte-zerg/tango/internal/model"
)

// SessionLister is the slice of the history store reports need.
type SessionLister interface {
	ListSessions(ctx context.Context, filter history.Filter) ([]model.SessionAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Rows     []CardRow
	Summary  Summary
	Curve    []float64
}

// BuildReport combines session history with a ledger snapshot. cards is the
// corpus the per-card rows are drawn from; it may already be filtered to one
// category.
func BuildReport(ctx context.Context, hist SessionLister, ledger model.Ledger, cards []model.Card, cfg model.StatsConfig) (Report, error) {
	sessions, err := hist.ListSessions(ctx, history.Filter{Category: cfg.Category, Since: cfg.Since})
	if err != nil {
		return Report{}, err
	}
	rows := CardRows(filterCards(cards, cfg.Category), ledger)
	return Report{
		Sessions: sessions,
		Rows:     rows,
		Summary:  Summarize(sessions, rows),
		Curve:    MovingAverage(AccuracySeries(sessions), cfg.CurveWindow),
	}, nil
}

func filterCards(cards []model.Card, category model.Category) []model.Card {
	if category == "" {
		return cards
	}
	out := make([]model.Card, 0, len(cards))
	for _, card := range cards {
		if card.Category == category {
			out = append(out, card)
		}
	}
	return out
}
