package game

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed character.schema.json
var characterSchemaJSON string

var characterSchema = jsonschema.MustCompileString("character.schema.json", characterSchemaJSON)

// characterRecord is the persisted shape. Subsystems added after the first
// release are pointers so their absence can be detected.
type characterRecord struct {
	Character
	Base      *BaseAttributes `json:"base"`
	Abilities *AbilityState   `json:"abilities"`
}

// LoadCharacter validates a persisted character and rebuilds it, defaulting
// the subsystems older saves lack. Nothing is built unless the whole record
// validates.
func (e *Engine) LoadCharacter(raw []byte) (*Character, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCharacter, err)
	}
	if err := characterSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCharacter, err)
	}

	var rec characterRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCharacter, err)
	}
	if err := e.checkRecord(&rec); err != nil {
		return nil, err
	}

	c := rec.Character
	if rec.Base != nil {
		c.Base = *rec.Base
	} else {
		// older saves only stored the final attributes
		c.Base = c.Attributes
	}
	if rec.Abilities != nil {
		c.Abilities = *rec.Abilities
	}
	fillDefaults(&c)
	e.refreshAttributes(&c)
	return &c, nil
}

func (e *Engine) checkRecord(rec *characterRecord) error {
	if _, ok := e.Content.Path(rec.Path); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPath, rec.Path)
	}
	if _, ok := e.Content.Talent(rec.Talent); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTalent, rec.Talent)
	}
	for _, kind := range []LadderKind{LadderQi, LadderBody} {
		lvl := rec.Ladder(kind).Level
		if lvl >= e.Content.Ladder(kind).Len() {
			return fmt.Errorf("%w: %s level %d beyond ladder", ErrInvalidCharacter, kind, lvl)
		}
	}
	for id, p := range rec.SecondaryPaths {
		def, ok := e.Content.SecondaryPath(id)
		if !ok {
			return fmt.Errorf("%w: secondary path %q", ErrInvalidCharacter, id)
		}
		if p != nil && p.Level > def.MaxLevel {
			return fmt.Errorf("%w: secondary path %s above cap", ErrInvalidCharacter, id)
		}
	}
	if rec.Abilities != nil {
		for _, id := range rec.Abilities.Unlocked {
			if _, ok := e.Content.Ability(id); !ok {
				return fmt.Errorf("%w: ability %q", ErrInvalidCharacter, id)
			}
		}
	}
	for _, id := range rec.Inventory.TimeTreasures {
		if _, ok := e.Content.Treasure(id); !ok {
			return fmt.Errorf("%w: treasure %q", ErrInvalidCharacter, id)
		}
	}
	if eq := rec.Equipment.TimeTreasure; eq != "" {
		owned := false
		for _, id := range rec.Inventory.TimeTreasures {
			owned = owned || id == eq
		}
		if !owned {
			return fmt.Errorf("%w: equipped treasure %q not owned", ErrInvalidCharacter, eq)
		}
	}
	seen := map[string]bool{}
	for _, m := range rec.Modifiers {
		if seen[m.ID] {
			return fmt.Errorf("%w: duplicate modifier %q", ErrInvalidModifier, m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}
