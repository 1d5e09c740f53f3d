package status

import "fmt"

// Property is a combat value that effects and base stats contribute to.
type Property uint8

const (
	PropSpeedBonus Property = iota
	PropResistanceFix
	PropResistancePerc
	PropBonusDamages
	PropBonusDamagesPerc
	PropTickDamages
	PropTickHeal
	PropBonusTickDamages
	PropBonusTickHeal

	propertyCount
)

var propertyLabels = [propertyCount]string{
	PropSpeedBonus:       "SpeedBonus",
	PropResistanceFix:    "ResistanceFix",
	PropResistancePerc:   "ResistancePerc",
	PropBonusDamages:     "BonusDamages",
	PropBonusDamagesPerc: "BonusDamagesPerc",
	PropTickDamages:      "TickDamages",
	PropTickHeal:         "TickHeal",
	PropBonusTickDamages: "BonusTickDamages",
	PropBonusTickHeal:    "BonusTickHeal",
}

func (p Property) String() string {
	if p < propertyCount {
		return propertyLabels[p]
	}
	return fmt.Sprintf("Property(%d)", uint8(p))
}

// Valid reports whether p is a known property.
func (p Property) Valid() bool { return p < propertyCount }

// ParseProperty resolves a property label.
func ParseProperty(label string) (Property, error) {
	for i := Property(0); i < propertyCount; i++ {
		if propertyLabels[i] == label {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown property %q", label)
}

// ApplicationMode defines how a modifier is folded into a property.
type ApplicationMode int8

const (
	ModeAdditive   ApplicationMode = iota // flat value, folded by Int()
	ModePercentage                        // fraction on a 1.0 baseline, folded by Float()
)

func (m ApplicationMode) String() string {
	switch m {
	case ModeAdditive:
		return "Additive"
	case ModePercentage:
		return "Percentage"
	default:
		return fmt.Sprintf("ApplicationMode(%d)", int8(m))
	}
}

// ParseApplicationMode resolves a mode label ("Additive"/"Percentage").
func ParseApplicationMode(label string) (ApplicationMode, error) {
	switch label {
	case "Additive", "add", "ADD":
		return ModeAdditive, nil
	case "Percentage", "perc", "PERC":
		return ModePercentage, nil
	}
	return 0, fmt.Errorf("unknown application mode %q", label)
}

// Modifier is a single property contribution of one stack of an effect.
type Modifier struct {
	Property Property
	Value    float64
	Mode     ApplicationMode
}
