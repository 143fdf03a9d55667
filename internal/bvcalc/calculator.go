// Package bvcalc computes BattleMech Battle Value (BV 2.0): the defensive
// rating, the heat-tracked offensive rating, explosive-equipment penalties
// and their rounded total.
package bvcalc

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
	"github.com/JustinWhittecar/bvcore/internal/equipment"
)

const smallCockpitFactor = 0.95

// WeaponEntry is a mounted weapon as listed by the caller.
type WeaponEntry struct {
	ID          string   `yaml:"id" json:"id"`
	RearMounted bool     `yaml:"rear,omitempty" json:"rear_mounted,omitempty"`
	Location    Location `yaml:"location,omitempty" json:"location,omitempty"`
	// HeatPenalty halves the weapon when it fires past the heat threshold.
	HeatPenalty bool `yaml:"heat_penalty,omitempty" json:"heat_penalty,omitempty"`
}

// EquipmentEntry is a non-weapon item. Slots and Category override the
// catalog values when set.
type EquipmentEntry struct {
	ID       string            `yaml:"id" json:"id"`
	Location Location          `yaml:"location,omitempty" json:"location,omitempty"`
	Slots    int               `yaml:"slots,omitempty" json:"slots,omitempty"`
	Category catalog.Explosive `yaml:"category,omitempty" json:"category,omitempty"`
}

// Input describes one unit to value. Zero RunMP is derived from WalkMP;
// an empty Structure map uses the standard table for the tonnage.
type Input struct {
	Name                 string           `yaml:"name" json:"name,omitempty"`
	Tonnage              int              `yaml:"tonnage" json:"tonnage"`
	Armor                map[Location]int `yaml:"armor" json:"armor"`
	Structure            map[Location]int `yaml:"structure,omitempty" json:"structure,omitempty"`
	WalkMP               int              `yaml:"walk" json:"walk_mp"`
	RunMP                int              `yaml:"run,omitempty" json:"run_mp,omitempty"`
	JumpMP               int              `yaml:"jump,omitempty" json:"jump_mp,omitempty"`
	HeatDissipation      int              `yaml:"heat_dissipation" json:"heat_dissipation"`
	ArmorType            ArmorType        `yaml:"armor_type,omitempty" json:"armor_type"`
	StructureType        StructureType    `yaml:"structure_type,omitempty" json:"structure_type"`
	GyroType             GyroType         `yaml:"gyro_type,omitempty" json:"gyro_type"`
	EngineType           EngineType       `yaml:"engine_type,omitempty" json:"engine_type"`
	EngineSideTorsoSlots int              `yaml:"engine_side_torso_slots,omitempty" json:"engine_side_torso_slots,omitempty"`
	Weapons              []WeaponEntry    `yaml:"weapons" json:"weapons"`
	Explosive            []EquipmentEntry `yaml:"explosive,omitempty" json:"explosive,omitempty"`
	Ammo                 []EquipmentEntry `yaml:"ammo,omitempty" json:"ammo,omitempty"`
	Equipment            []EquipmentEntry `yaml:"equipment,omitempty" json:"equipment,omitempty"`
	CASE                 []Location       `yaml:"case,omitempty" json:"case,omitempty"`
	CASEII               []Location       `yaml:"case_ii,omitempty" json:"case_ii,omitempty"`
	Quad                 bool             `yaml:"quad,omitempty" json:"quad,omitempty"`
	TargetingComputer    bool             `yaml:"targeting_computer,omitempty" json:"targeting_computer,omitempty"`
	MASC                 bool             `yaml:"masc,omitempty" json:"masc,omitempty"`
	TSM                  bool             `yaml:"tsm,omitempty" json:"tsm,omitempty"`
	SmallCockpit         bool             `yaml:"small_cockpit,omitempty" json:"small_cockpit,omitempty"`
}

// Breakdown is the full valuation of one unit.
type Breakdown struct {
	DefensiveBV float64         `json:"defensive_bv"`
	OffensiveBV float64         `json:"offensive_bv"`
	SpeedFactor float64         `json:"speed_factor"`
	TotalBV     int             `json:"total_bv"`
	Defensive   DefensiveResult `json:"defensive"`
	Offensive   OffensiveResult `json:"offensive"`
	Explosive   ExplosiveResult `json:"explosive"`
	Ammo        []AmmoValue     `json:"ammo,omitempty"`
	Unresolved  []string        `json:"unresolved,omitempty"`
}

// Resolver turns raw equipment ids into catalog entries.
type Resolver interface {
	Resolve(raw string) equipment.Resolution
}

type Calculator struct {
	resolver Resolver
	logger   *zap.Logger
}

type Option func(*Calculator)

func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCalculator(r Resolver, opts ...Option) *Calculator {
	c := &Calculator{resolver: r, logger: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CalculateTotalBV returns the rounded Battle Value of in.
func (c *Calculator) CalculateTotalBV(in Input) int {
	return c.GetBVBreakdown(in).TotalBV
}

// GetBVBreakdown values in. Unknown equipment counts as zero and is listed
// in Unresolved.
func (c *Calculator) GetBVBreakdown(in Input) Breakdown {
	v := valuation{c: c, weaponBV: map[string]float64{}, defensiveWeaponBV: map[string]float64{}}

	run := in.RunMP
	if run == 0 {
		run = RunMP(in.WalkMP)
	}
	if in.MASC {
		run = max(run, in.WalkMP*2)
	}
	if in.TSM {
		run = max(run, RunMP(in.WalkMP+1))
	}

	structure := in.Structure
	if len(structure) == 0 {
		structure = StandardStructure(in.Tonnage, in.Quad)
	}

	weapons := v.weapons(in.Weapons)
	tc := in.TargetingComputer || v.equipment(in.Equipment)
	offAmmo, defAmmo := v.ammo(in.Ammo)

	offAmmoBV, ammoValues := CapAmmoBV(offAmmo, v.weaponBV)
	defAmmoBV, defAmmoValues := CapAmmoBV(defAmmo, v.defensiveWeaponBV)

	var b Breakdown
	b.Ammo = append(ammoValues, defAmmoValues...)
	b.Explosive = CalculateExplosivePenalties(ExplosiveConfig{
		Items:                v.explosive(in.Explosive),
		CASELocations:        in.CASE,
		CASEIILocations:      in.CASEII,
		Engine:               in.EngineType,
		EngineSideTorsoSlots: in.EngineSideTorsoSlots,
		Quad:                 in.Quad,
	})
	b.Defensive = CalculateDefensiveBV(DefensiveConfig{
		TotalArmorPoints:     sumPoints(in.Armor),
		TotalStructurePoints: sumPoints(structure),
		Tonnage:              in.Tonnage,
		RunMP:                run,
		JumpMP:               in.JumpMP,
		Armor:                in.ArmorType,
		Structure:            in.StructureType,
		Gyro:                 in.GyroType,
		Engine:               in.EngineType,
		DefensiveEquipmentBV: v.defensiveBV + defAmmoBV,
		ExplosivePenalties:   b.Explosive.TotalPenalty,
	})
	b.Offensive = CalculateOffensiveBVWithHeatTracking(OffensiveConfig{
		Weapons:           weapons,
		Tonnage:           in.Tonnage,
		WalkMP:            in.WalkMP,
		RunMP:             run,
		JumpMP:            in.JumpMP,
		HeatDissipation:   in.HeatDissipation,
		AmmoBV:            offAmmoBV,
		TargetingComputer: tc,
		TSM:               in.TSM,
	})

	b.DefensiveBV = b.Defensive.TotalDefensiveBV
	b.OffensiveBV = b.Offensive.TotalOffensiveBV
	b.SpeedFactor = b.Offensive.SpeedFactor
	total := b.DefensiveBV + b.OffensiveBV
	if in.SmallCockpit {
		total *= smallCockpitFactor
	}
	b.TotalBV = int(math.Round(total))
	b.Unresolved = v.unresolved

	if len(b.Unresolved) > 0 {
		c.logger.Debug("unresolved equipment counted as zero",
			zap.String("unit", in.Name), zap.Strings("ids", b.Unresolved))
	}
	return b
}

// valuation collects per-call resolution state.
type valuation struct {
	c                 *Calculator
	weaponBV          map[string]float64
	defensiveWeaponBV map[string]float64
	defensiveBV       float64
	unresolved        []string
	seen              map[string]bool
}

func (v *valuation) resolve(raw string) (catalog.Entry, bool) {
	res := v.c.resolver.Resolve(raw)
	if !res.Resolved {
		if v.seen == nil {
			v.seen = map[string]bool{}
		}
		if !v.seen[raw] {
			v.seen[raw] = true
			v.unresolved = append(v.unresolved, raw)
		}
		return catalog.Entry{ID: res.ID}, false
	}
	return res.Entry, true
}

// weapons resolves the weapon list. AMS and similar count toward the
// defensive rating instead.
func (v *valuation) weapons(entries []WeaponEntry) []OffensiveWeapon {
	out := make([]OffensiveWeapon, 0, len(entries))
	for _, w := range entries {
		e, _ := v.resolve(w.ID)
		if e.DefensiveBV > 0 {
			v.defensiveBV += float64(e.DefensiveBV)
			v.defensiveWeaponBV[e.ID] += float64(e.DefensiveBV)
			continue
		}
		v.weaponBV[e.ID] += float64(e.BattleValue)
		out = append(out, OffensiveWeapon{
			ID:          e.ID,
			BattleValue: float64(e.BattleValue),
			Heat:        e.Heat,
			RearMounted: w.RearMounted,
			DirectFire:  e.DirectFire,
			Location:    w.Location,
			HeatPenalty: w.HeatPenalty,
		})
	}
	return out
}

// equipment credits defensive gear and reports whether a targeting
// computer is mounted.
func (v *valuation) equipment(entries []EquipmentEntry) bool {
	tc := false
	for _, it := range entries {
		e, ok := v.resolve(it.ID)
		if !ok {
			continue
		}
		if strings.HasSuffix(e.ID, "targeting-computer") {
			tc = true
		}
		if e.DefensiveBV > 0 {
			v.defensiveBV += float64(e.DefensiveBV)
			v.defensiveWeaponBV[e.ID] += float64(e.DefensiveBV)
		}
	}
	return tc
}

// ammo splits bins into offensive ammo and ammo for defensive systems.
func (v *valuation) ammo(entries []EquipmentEntry) (offensive, defensive []AmmoBin) {
	for _, it := range entries {
		e, ok := v.resolve(it.ID)
		if !ok {
			continue
		}
		bin := AmmoBin{ID: e.ID, Feeds: e.AmmoFor, BattleValue: float64(e.BattleValue)}
		if _, def := v.defensiveWeaponBV[e.AmmoFor]; def {
			defensive = append(defensive, bin)
		} else {
			offensive = append(offensive, bin)
		}
	}
	return offensive, defensive
}

func (v *valuation) explosive(entries []EquipmentEntry) []ExplosiveItem {
	out := make([]ExplosiveItem, 0, len(entries))
	for _, it := range entries {
		item := ExplosiveItem{ID: it.ID, Location: it.Location, Slots: it.Slots, Category: it.Category}
		if item.Category == catalog.ExplosiveNone || item.Slots == 0 {
			e, ok := v.resolve(it.ID)
			if !ok && item.Category == catalog.ExplosiveNone {
				continue
			}
			item.ID = e.ID
			if item.Category == catalog.ExplosiveNone {
				item.Category = e.Explosive
			}
			if item.Slots == 0 {
				item.Slots = e.CriticalSlots
			}
		}
		out = append(out, item)
	}
	return out
}
