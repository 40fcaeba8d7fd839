// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category tags the corpus a card came from.
type Category string

// Known categories.
const (
	CategoryVerb      Category = "verbo"
	CategoryAdjective Category = "adjetivo"
	CategoryAdverb    Category = "adverbio"
	CategoryJLPT      Category = "jlpt"
)

// Mode selects how a session is drawn from a corpus.
type Mode string

// Selection modes.
const (
	ModeNormal Mode = "normal"
	ModeAll    Mode = "all"
	ModeSmart  Mode = "smart"
)

// ParseMode normalizes a mode name. Empty input means normal.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeNormal:
		return ModeNormal, nil
	case ModeAll:
		return ModeAll, nil
	case ModeSmart:
		return ModeSmart, nil
	default:
		return "", fmt.Errorf("unknown mode %q (use normal, all or smart)", raw)
	}
}

// Card is an opaque corpus record. Only the id and category are interpreted;
// every other field is carried through untouched.
type Card struct {
	ID       string
	Category Category
	Fields   map[string]any
}

// Field returns a display field as a string, or "" when absent.
func (c Card) Field(name string) string {
	v, ok := c.Fields[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Tracked reports whether answers for this card are recorded in the ledger.
func (c Card) Tracked() bool {
	return c.ID != ""
}

// MarshalJSON emits the original card object.
func (c Card) MarshalJSON() ([]byte, error) {
	if c.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Fields)
}

// UnmarshalJSON keeps every field and lifts a string "id" into ID.
func (c *Card) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	c.Fields = fields
	c.ID = ""
	if id, ok := fields["id"].(string); ok {
		c.ID = id
	}
	return nil
}

// MasteryRecord counts exposures and correct answers for one card.
type MasteryRecord struct {
	Shown   int `json:"shown"`
	Correct int `json:"correct"`
}

// Accuracy is correct/shown, or 0 for a card never shown.
func (r MasteryRecord) Accuracy() float64 {
	if r.Shown <= 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Shown)
}

// Ledger maps card ids to their mastery counters.
type Ledger map[string]MasteryRecord

// Get returns the record for id, zeroed when absent.
func (l Ledger) Get(id string) MasteryRecord {
	return l[id]
}

// Clone returns an independent copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for id, rec := range l {
		out[id] = rec
	}
	return out
}

// Config defines practice settings.
type Config struct {
	CorpusDir string
	Category  Category
	Mode      Mode
	Count     int
	Reshow    string
}

// StatsConfig defines filters for stats output.
type StatsConfig struct {
	Category    Category
	Since       *time.Time
	CurveWindow int
	Top         int
}

// SessionStats captures a completed flashcard session.
type SessionStats struct {
	UUID      string
	StartedAt time.Time
	EndedAt   time.Time
	Category  Category
	Mode      Mode
	Cards     int
	Correct   int
}

// Accuracy returns the session accuracy as a fraction.
func (s SessionStats) Accuracy() float64 {
	if s.Cards <= 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Cards)
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID int64
	UUID      string
	EndedAt   time.Time
	Category  Category
	Mode      Mode
	Cards     int
	Correct   int
}
