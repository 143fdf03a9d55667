// Package catalog holds canonical equipment attributes and the read-only
// lookup surface the resolver and the BV calculators consume.
package catalog

import (
	"fmt"
	"strings"
)

// TechBase is the manufacturing lineage of a piece of equipment.
type TechBase int

const (
	InnerSphere TechBase = iota
	Clan
)

func (t TechBase) String() string {
	if t == Clan {
		return "Clan"
	}
	return "IS"
}

// MarshalText implements encoding.TextMarshaler.
func (t TechBase) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the spellings found in MTF files and the catalog
// YAML ("IS", "Inner Sphere", "Clan", "CL").
func (t *TechBase) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "is", "inner sphere", "innersphere", "inner_sphere":
		*t = InnerSphere
	case "clan", "cl":
		*t = Clan
	default:
		return fmt.Errorf("unknown tech base %q", string(b))
	}
	return nil
}

// Category groups equipment for display and for routing during valuation.
type Category string

const (
	CategoryWeapon      Category = "weapon"
	CategoryAmmo        Category = "ammo"
	CategoryHeatSink    Category = "heat-sink"
	CategoryJumpJet     Category = "jump-jet"
	CategoryElectronics Category = "electronics"
	CategoryProtection  Category = "protection"
	CategoryMisc        Category = "misc"
)

// Explosive classifies how an item is penalized when its location is
// destroyed. The zero value means the item is not explosive.
type Explosive string

const (
	ExplosiveNone     Explosive = ""
	ExplosiveStandard Explosive = "standard"
	ExplosiveGauss    Explosive = "gauss"
	ExplosiveHVAC     Explosive = "hvac"
	ExplosiveReduced  Explosive = "reduced"
)

// Entry is one canonical catalog record.
type Entry struct {
	ID            string    `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name"`
	BattleValue   int       `yaml:"bv" json:"battle_value"`
	Heat          int       `yaml:"heat" json:"heat"`
	Weight        float64   `yaml:"weight" json:"weight"`
	CriticalSlots int       `yaml:"slots" json:"critical_slots"`
	TechBase      TechBase  `yaml:"tech" json:"tech_base"`
	Category      Category  `yaml:"category" json:"category"`
	Explosive     Explosive `yaml:"explosive,omitempty" json:"explosive,omitempty"`
	// AmmoFor names the weapon an ammo bin feeds.
	AmmoFor string `yaml:"ammo_for,omitempty" json:"ammo_for,omitempty"`
	// DirectFire marks weapons a targeting computer improves.
	DirectFire bool `yaml:"direct_fire,omitempty" json:"direct_fire,omitempty"`
	// DefensiveBV is credited to the defensive rating (AMS, ECM, probes)
	// instead of the offensive one.
	DefensiveBV int `yaml:"defensive_bv,omitempty" json:"defensive_bv,omitempty"`
}

// Catalog is the read-only view of canonical equipment.
type Catalog interface {
	IsLoaded() bool
	Lookup(id string) (Entry, bool)
}

// Lister is implemented by catalogs that can enumerate their entries.
type Lister interface {
	Entries() []Entry
}
