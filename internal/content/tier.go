package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier is the ordinal rank shared by skill nodes and achievements.
type Tier int

const (
	TierUnknown Tier = iota
	TierBronze
	TierSilver
	TierGold
	TierPlatinum
	TierDiamond
)

// AllTiers returns all tiers in order from lowest to highest.
func AllTiers() []Tier {
	return []Tier{TierBronze, TierSilver, TierGold, TierPlatinum, TierDiamond}
}

// ParseTier parses a tier name, case-insensitively.
func ParseTier(s string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllTiers() {
		if t.String() == name {
			return t, nil
		}
	}
	return TierUnknown, fmt.Errorf("unknown tier %q", s)
}

func (t Tier) String() string {
	switch t {
	case TierBronze:
		return "bronze"
	case TierSilver:
		return "silver"
	case TierGold:
		return "gold"
	case TierPlatinum:
		return "platinum"
	case TierDiamond:
		return "diamond"
	default:
		return "unknown"
	}
}

// Weight returns the ordinal score of the tier: bronze=1 through diamond=5.
// Unknown tiers weigh nothing.
func (t Tier) Weight() int {
	if t < TierBronze || t > TierDiamond {
		return 0
	}
	return int(t)
}

// Valid reports whether t is one of the named tiers.
func (t Tier) Valid() bool {
	return t.Weight() > 0
}

func (t *Tier) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Tier) MarshalYAML() (any, error) {
	return t.String(), nil
}
