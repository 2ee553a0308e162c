package model

// Character represents one character sheet record.
// This is a pure domain model with no persistence-specific dependencies.
// The ID is assigned from the record's storage key (filename stem or row
// key) and is deliberately excluded from the serialized document.
type Character struct {
	ID             string         `json:"-"`
	Name           string         `json:"name"`
	Race           string         `json:"race"`
	CharacterClass string         `json:"character_class"`
	Background     string         `json:"background"`
	Level          string         `json:"level"`
	HitPoints      string         `json:"hit_points"`
	ArmorClass     string         `json:"armor_class"`
	Speed          string         `json:"speed"`
	Attributes     map[string]int `json:"attributes"`
	Proficiencies  string         `json:"proficiencies"`
	Equipment      string         `json:"equipment"`
	Spells         string         `json:"spells"`
	Notes          string         `json:"notes"`
	Image          string         `json:"image"`
}

// AttributeField pairs an attribute key with its display label.
type AttributeField struct {
	Key   string
	Label string
}

// AttributeFields is the fixed set of six ability scores, in display order.
// Every persisted character carries all six keys.
var AttributeFields = []AttributeField{
	{Key: "strength", Label: "Strength"},
	{Key: "dexterity", Label: "Dexterity"},
	{Key: "constitution", Label: "Constitution"},
	{Key: "intelligence", Label: "Intelligence"},
	{Key: "wisdom", Label: "Wisdom"},
	{Key: "charisma", Label: "Charisma"},
}

// NewBlankCharacter returns the defaults shown on an empty creation form:
// level "1" and every attribute at 10.
func NewBlankCharacter() *Character {
	attrs := make(map[string]int, len(AttributeFields))
	for _, f := range AttributeFields {
		attrs[f.Key] = 10
	}
	return &Character{
		Level:      "1",
		Attributes: attrs,
	}
}
