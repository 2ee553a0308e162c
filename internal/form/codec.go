package form

import (
	"net/url"
	"strconv"
	"strings"

	"charkeep/internal/model"
)

// Package form converts submitted form fields into a character record.
// All coercions are best-effort defaults; this layer never raises schema
// errors. The only validation enforced downstream is "name is non-empty".

// attrFieldPrefix is the form field prefix for the six ability scores,
// e.g. "attr_strength".
const attrFieldPrefix = "attr_"

// Extract builds a candidate character from submitted fields. Text fields
// are whitespace-trimmed, each attribute parses as an integer defaulting
// to 0, and a blank level becomes "1". The existing record's image
// reference is carried over unchanged: portrait handling is a separate
// step, not part of extraction.
func Extract(values url.Values, existing *model.Character) *model.Character {
	attrs := make(map[string]int, len(model.AttributeFields))
	for _, f := range model.AttributeFields {
		n, err := strconv.Atoi(strings.TrimSpace(values.Get(attrFieldPrefix + f.Key)))
		if err != nil {
			n = 0
		}
		attrs[f.Key] = n
	}

	level := strings.TrimSpace(values.Get("level"))
	if level == "" {
		level = "1"
	}

	ch := &model.Character{
		Name:           strings.TrimSpace(values.Get("name")),
		Race:           strings.TrimSpace(values.Get("race")),
		CharacterClass: strings.TrimSpace(values.Get("character_class")),
		Background:     strings.TrimSpace(values.Get("background")),
		Level:          level,
		HitPoints:      strings.TrimSpace(values.Get("hit_points")),
		ArmorClass:     strings.TrimSpace(values.Get("armor_class")),
		Speed:          strings.TrimSpace(values.Get("speed")),
		Attributes:     attrs,
		Proficiencies:  values.Get("proficiencies"),
		Equipment:      values.Get("equipment"),
		Spells:         values.Get("spells"),
		Notes:          values.Get("notes"),
	}
	if existing != nil {
		ch.Image = existing.Image
	}
	return ch
}
