package stats

import (
	"fmt"
	"math/rand/v2"
)

// Roller produces uniform random integers in [0, n).
type Roller interface {
	IntN(n int) int
}

type defaultRoller struct{}

func (defaultRoller) IntN(n int) int { return rand.IntN(n) }

// DefaultRoller draws from math/rand/v2.
var DefaultRoller Roller = defaultRoller{}

// Attribute names one of the six ability scores.
type Attribute uint8

const (
	Strength Attribute = iota
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma
)

// AllAttributes lists the attributes in sheet order.
var AllAttributes = []Attribute{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

func (a Attribute) String() string {
	switch a {
	case Strength:
		return "Str"
	case Dexterity:
		return "Dex"
	case Constitution:
		return "Con"
	case Intelligence:
		return "Int"
	case Wisdom:
		return "Wis"
	case Charisma:
		return "Cha"
	default:
		return fmt.Sprintf("Attribute(%d)", uint8(a))
	}
}

// Attributes holds the six ability scores.
type Attributes struct {
	Strength     uint8 `msgpack:"str"`
	Dexterity    uint8 `msgpack:"dex"`
	Constitution uint8 `msgpack:"con"`
	Intelligence uint8 `msgpack:"int"`
	Wisdom       uint8 `msgpack:"wis"`
	Charisma     uint8 `msgpack:"cha"`
}

// Score returns the score for a.
func (a Attributes) Score(attr Attribute) uint8 {
	switch attr {
	case Strength:
		return a.Strength
	case Dexterity:
		return a.Dexterity
	case Constitution:
		return a.Constitution
	case Intelligence:
		return a.Intelligence
	case Wisdom:
		return a.Wisdom
	case Charisma:
		return a.Charisma
	default:
		return 0
	}
}

// Bonus is the modifier granted by an ability score. Low scores floor at 0.
func Bonus(score uint8) int {
	half := int(score / 2)
	if half < 5 {
		return 0
	}
	return half - 5
}

// DamageRoll is NdS: Dice dice with Sides faces each.
type DamageRoll struct {
	Dice  uint8 `msgpack:"n"`
	Sides uint8 `msgpack:"s"`
}

func (d DamageRoll) String() string {
	return fmt.Sprintf("%dk%d", d.Dice, d.Sides)
}

// SavingThrows holds base save bonuses.
type SavingThrows struct {
	Fortitude uint8 `msgpack:"fort"`
	Reflex    uint8 `msgpack:"ref"`
	Will      uint8 `msgpack:"will"`
}

// Save names a saving throw.
type Save uint8

const (
	Fortitude Save = iota
	Reflex
	Will
)

func (s Save) String() string {
	switch s {
	case Fortitude:
		return "fortitude"
	case Reflex:
		return "reflex"
	case Will:
		return "will"
	default:
		return fmt.Sprintf("Save(%d)", uint8(s))
	}
}

// Sheet is a character's statistics block. It produces numbers only; nothing
// on the movement path consults it.
type Sheet struct {
	Attributes   Attributes   `msgpack:"attr"`
	Level        uint8        `msgpack:"lvl"`
	Experience   uint16       `msgpack:"xp"`
	Attack       uint8        `msgpack:"atk"`
	DamageRoll   DamageRoll   `msgpack:"dmg"`
	Size         Size         `msgpack:"size"`
	NaturalArmor uint8        `msgpack:"armor"`
	BaseSaves    SavingThrows `msgpack:"saves"`
}

// DefaultSheet returns the stock starting character.
func DefaultSheet() Sheet {
	return Sheet{
		Attributes: Attributes{
			Strength:     16,
			Dexterity:    12,
			Constitution: 18,
			Intelligence: 14,
			Wisdom:       10,
			Charisma:     21,
		},
		Level:        4,
		Experience:   1000,
		Attack:       4,
		DamageRoll:   DamageRoll{Dice: 2, Sides: 6},
		Size:         SizeMedium,
		NaturalArmor: 2,
		BaseSaves: SavingThrows{
			Fortitude: 4,
			Reflex:    1,
			Will:      4,
		},
	}
}

// DamageBonus is the strength bonus added to damage rolls.
func (s Sheet) DamageBonus() int {
	return Bonus(s.Attributes.Strength)
}

// ArmorClass is 10 + dex + size + natural armor, at least 1.
func (s Sheet) ArmorClass() int {
	return max(10+Bonus(s.Attributes.Dexterity)+s.Size.Modifier()+int(s.NaturalArmor), 1)
}

// FlatFooted is ArmorClass without the dexterity bonus.
func (s Sheet) FlatFooted() int {
	return max(10+s.Size.Modifier()+int(s.NaturalArmor), 1)
}

// Touch is ArmorClass without natural armor.
func (s Sheet) Touch() int {
	return max(10+Bonus(s.Attributes.Dexterity)+s.Size.Modifier(), 1)
}

// Damage rolls the damage dice plus the damage bonus, with a minimum of 1.
func (s Sheet) Damage(r Roller) int {
	total := s.DamageBonus()
	if s.DamageRoll.Sides > 0 {
		for range s.DamageRoll.Dice {
			total += r.IntN(int(s.DamageRoll.Sides)) + 1
		}
	}
	return max(total, 1)
}

// Roll makes a d20 saving throw with an extra situational modifier. The
// result never drops below 0.
func (s Sheet) Roll(save Save, r Roller, other int) int {
	var base int
	var attr Attribute
	switch save {
	case Fortitude:
		base, attr = int(s.BaseSaves.Fortitude), Constitution
	case Reflex:
		base, attr = int(s.BaseSaves.Reflex), Dexterity
	case Will:
		base, attr = int(s.BaseSaves.Will), Wisdom
	}

	return max(base+Bonus(s.Attributes.Score(attr))+r.IntN(20)+1+other, 0)
}
