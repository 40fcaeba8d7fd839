package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tango/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tango.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	inputs := []model.SessionStats{
		{Category: model.CategoryVerb, Mode: model.ModeSmart, Cards: 10, Correct: 7},
		{Category: model.CategoryJLPT, Mode: model.ModeNormal, Cards: 5, Correct: 5},
		{Category: model.CategoryVerb, Mode: model.ModeAll, Cards: 20, Correct: 11},
	}
	for i, in := range inputs {
		in.StartedAt = base.Add(time.Duration(i) * time.Hour)
		in.EndedAt = in.StartedAt.Add(4 * time.Minute)
		if _, err := st.InsertSession(ctx, in); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}

	all, err := st.ListSessions(ctx, Filter{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(all))
	}
	if all[0].UUID == "" || all[0].UUID == all[1].UUID {
		t.Fatalf("expected generated unique uuids, got %q and %q", all[0].UUID, all[1].UUID)
	}
	if all[2].Mode != model.ModeAll || all[2].Correct != 11 {
		t.Fatalf("unexpected last session: %+v", all[2])
	}

	verbs, err := st.ListSessions(ctx, Filter{Category: model.CategoryVerb})
	if err != nil {
		t.Fatalf("list verbs: %v", err)
	}
	if len(verbs) != 2 {
		t.Fatalf("expected 2 verb sessions, got %d", len(verbs))
	}

	since := base.Add(90 * time.Minute)
	recent, err := st.ListSessions(ctx, Filter{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(recent) != 1 || recent[0].Category != model.CategoryVerb {
		t.Fatalf("unexpected recent sessions: %+v", recent)
	}
}

func TestInsertKeepsProvidedUUID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	in := model.SessionStats{UUID: "fixed-id", StartedAt: now, EndedAt: now, Category: model.CategoryAdverb, Mode: model.ModeNormal, Cards: 1}
	if _, err := st.InsertSession(ctx, in); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertSession(ctx, in); err == nil {
		t.Fatalf("expected duplicate uuid to be rejected")
	}
	got, err := st.ListSessions(ctx, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].UUID != "fixed-id" {
		t.Fatalf("unexpected sessions: %+v", got)
	}
}
