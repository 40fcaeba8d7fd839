// Package face renders the front and back of a card for display.
package face

import (
	"strings"

	"github.com/verte-zerg/tango/internal/model"
)

// Front returns the prompt side: the adverb itself, or kanji and reading.
func Front(card model.Card) (headline, reading string) {
	if card.Category == model.CategoryAdverb || card.Field("adverbio") != "" {
		return card.Field("adverbio"), ""
	}
	return card.Field("kanji"), card.Field("hiragana")
}

// Back returns the meaning side, one entry per line.
func Back(card model.Card) []string {
	category := card.Category
	if category == "" {
		category = guessCategory(card)
	}
	switch category {
	case model.CategoryVerb, model.CategoryJLPT:
		lines := []string{card.Field("español"), "Grupo: " + card.Field("grupo")}
		if card.Field("par_transitivo_intransitivo") == "Sí" {
			lines = append(lines, "Versión: "+card.Field("tipo"))
		}
		return lines
	case model.CategoryAdjective:
		return []string{card.Field("español"), "Tipo: " + card.Field("tipo")}
	default:
		meaning := card.Field("español")
		if meaning == "" {
			meaning = card.Field("significado")
		}
		if meaning == "" {
			return []string{"Categoría: " + card.Field("categoria"), "(Traducción no disponible)"}
		}
		return []string{meaning, "Categoría: " + card.Field("categoria")}
	}
}

// Label is a one-line name for tables and logs.
func Label(card model.Card) string {
	headline, reading := Front(card)
	switch {
	case headline != "" && reading != "" && reading != headline:
		return headline + " (" + reading + ")"
	case headline != "":
		return headline
	case reading != "":
		return reading
	case card.ID != "":
		return card.ID
	default:
		return "?"
	}
}

// guessCategory mirrors how cards are told apart when no tag is present.
func guessCategory(card model.Card) model.Category {
	switch {
	case card.Field("grupo") != "":
		return model.CategoryVerb
	case card.Field("tipo") != "" && card.Field("español") != "" && card.Field("kanji") != "":
		return model.CategoryAdjective
	default:
		return model.CategoryAdverb
	}
}

// Join renders the back as a single block.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}
