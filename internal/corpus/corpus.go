// Package corpus loads the read-only vocabulary JSON files.
package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/tango/internal/model"
)

var (
	// ErrUnknownCategory is returned for a category with no mapped corpus file.
	ErrUnknownCategory = errors.New("corpus: unknown category")
	// ErrEmptyCorpus is returned when a corpus file holds no cards.
	ErrEmptyCorpus = errors.New("corpus: no cards")
)

var files = map[model.Category]string{
	model.CategoryVerb:      "verbos.json",
	model.CategoryAdjective: "adjetivos.json",
	model.CategoryAdverb:    "adverbios.json",
	model.CategoryJLPT:      "verbosN5.json",
}

var labels = map[model.Category]string{
	model.CategoryVerb:      "Verbos",
	model.CategoryAdjective: "Adjetivos",
	model.CategoryAdverb:    "Adverbios",
	model.CategoryJLPT:      "JLPT N5",
}

// Categories returns every known category in menu order.
func Categories() []model.Category {
	return []model.Category{
		model.CategoryVerb,
		model.CategoryAdjective,
		model.CategoryAdverb,
		model.CategoryJLPT,
	}
}

// Label returns the menu label for a category.
func Label(category model.Category) string {
	if label, ok := labels[category]; ok {
		return label
	}
	return string(category)
}

// ParseCategory validates a category name.
func ParseCategory(raw string) (model.Category, error) {
	category := model.Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := files[category]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
	return category, nil
}

// Path returns the corpus file for a category inside dir.
func Path(dir string, category model.Category) (string, error) {
	name, ok := files[category]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return filepath.Join(dir, name), nil
}

// Load reads and parses the corpus for a category. Cards come back in file
// order, tagged with the category.
func Load(dir string, category model.Category) ([]model.Card, error) {
	path, err := Path(dir, category)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", path, err)
	}
	var cards []model.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("failed to parse corpus %s: %w", path, err)
	}
	for i := range cards {
		cards[i].Category = category
	}
	return cards, nil
}

// LoadNonEmpty is Load, but an empty corpus is an error.
func LoadNonEmpty(dir string, category model.Category) ([]model.Card, error) {
	cards, err := Load(dir, category)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, category)
	}
	return cards, nil
}

// AllIDs collects the ids of every card across all corpora. Files that are
// missing or unparsable are skipped.
func AllIDs(dir string) map[string]struct{} {
	ids := map[string]struct{}{}
	for _, category := range Categories() {
		cards, err := Load(dir, category)
		if err != nil {
			continue
		}
		for _, card := range cards {
			if card.Tracked() {
				ids[card.ID] = struct{}{}
			}
		}
	}
	return ids
}
