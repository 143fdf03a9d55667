package bvcalc

import "github.com/JustinWhittecar/bvcore/internal/catalog"

// Penalty rates per explosive class.
const (
	standardPenaltyPerSlot = 15
	gaussPenaltyPerSlot    = 1
	hvacPenaltyPerItem     = 1
	reducedPenaltyPerSlot  = 1

	// caseIneffectiveEngineSlots is the side-torso engine footprint at
	// which CASE stops protecting standard explosives. IS XL (3) and XXL
	// (4 or 6) reach it; Clan XL and Light engines use 2 slots and keep
	// CASE effective.
	caseIneffectiveEngineSlots = 3
)

// ExplosiveItem is one piece of equipment that can detonate.
type ExplosiveItem struct {
	ID       string            `yaml:"id" json:"id"`
	Location Location          `yaml:"location" json:"location"`
	Slots    int               `yaml:"slots" json:"slots"`
	Category catalog.Explosive `yaml:"category" json:"category"`
}

// penalty is the unprotected BV deduction for the item. Items with no slot
// count are treated as single-slot.
func (it ExplosiveItem) penalty() float64 {
	slots := max(it.Slots, 1)
	switch it.Category {
	case catalog.ExplosiveStandard:
		return float64(slots * standardPenaltyPerSlot)
	case catalog.ExplosiveGauss:
		return float64(slots * gaussPenaltyPerSlot)
	case catalog.ExplosiveHVAC:
		return hvacPenaltyPerItem
	case catalog.ExplosiveReduced:
		return float64(slots * reducedPenaltyPerSlot)
	}
	return 0
}

type ExplosiveConfig struct {
	Items           []ExplosiveItem
	CASELocations   []Location
	CASEIILocations []Location
	Engine          EngineType
	// EngineSideTorsoSlots overrides Engine.SideTorsoSlots when positive.
	EngineSideTorsoSlots int
	Quad                 bool
}

type ExplosiveResult struct {
	TotalPenalty      float64              `json:"total_penalty"`
	LocationPenalties map[Location]float64 `json:"location_penalties"`
}

// CalculateExplosivePenalties sums the BV deduction of every explosive
// item after CASE and CASE-II protection. Penalties are attributed to the
// location the item is mounted in.
func CalculateExplosivePenalties(cfg ExplosiveConfig) ExplosiveResult {
	p := protection{
		caseLocs:    locationSet(cfg.CASELocations),
		caseIILocs:  locationSet(cfg.CASEIILocations),
		engineSlots: cfg.Engine.SideTorsoSlots(),
		quad:        cfg.Quad,
	}
	if cfg.EngineSideTorsoSlots > 0 {
		p.engineSlots = cfg.EngineSideTorsoSlots
	}

	res := ExplosiveResult{LocationPenalties: map[Location]float64{}}
	for _, it := range cfg.Items {
		pen := it.penalty()
		if pen == 0 || p.zeroes(it.Location, it.Category) {
			continue
		}
		res.LocationPenalties[it.Location] += pen
		res.TotalPenalty += pen
	}
	return res
}

type protection struct {
	caseLocs    map[Location]bool
	caseIILocs  map[Location]bool
	engineSlots int
	quad        bool
}

// zeroes reports whether an item of the given class mounted at loc is
// fully protected.
func (p protection) zeroes(loc Location, cat catalog.Explosive) bool {
	if p.caseIILocs[loc] {
		return true
	}
	switch {
	case loc.isSideTorso():
		if !p.caseLocs[loc] {
			return false
		}
		return cat != catalog.ExplosiveStandard || p.engineSlots < caseIneffectiveEngineSlots
	case loc.isArm() && !p.quad:
		if p.caseLocs[loc] {
			return true
		}
		return p.zeroes(loc.pairedTorso(), cat)
	}
	// head, center torso, legs and quad front legs
	return false
}

func locationSet(locs []Location) map[Location]bool {
	m := make(map[Location]bool, len(locs))
	for _, l := range locs {
		m[l] = true
	}
	return m
}
